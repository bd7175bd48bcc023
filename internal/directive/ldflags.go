package directive

import (
	"fmt"
	"strings"

	"github.com/flarebyte/buildstamp/internal/version"
)

// ldflagsVar maps a propagated key to the variable it sets in the cli package.
var ldflagsVar = map[string]string{
	version.KeyGitSHA:        "GitSHA",
	version.KeyGitDatetime:   "GitDatetime",
	version.KeyGitDirty:      "GitDirty",
	version.KeyCargoFeatures: "CargoFeatures",
	version.KeyCargoProfile:  "CargoProfile",
	version.KeyRustcSemver:   "RustcSemver",
	version.KeyRustcLLVM:     "RustcLLVM",
	version.KeyRustcSHA:      "RustcSHA",
}

func renderLdflags(opts Options, pairs []version.KV) ([]string, error) {
	flags := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		name, ok := ldflagsVar[kv.Key]
		if !ok {
			return nil, fmt.Errorf("%w: no ldflags variable for %s", ErrMalformedDirective, kv.Key)
		}
		if strings.Contains(kv.Value, "'") {
			return nil, fmt.Errorf("%w: value for %s contains a single quote", ErrMalformedDirective, kv.Key)
		}
		flags = append(flags, fmt.Sprintf("-X '%s.%s=%s'", opts.LdflagsPackage, name, kv.Value))
	}
	return []string{strings.Join(flags, " ")}, nil
}
