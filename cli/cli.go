package cli

import "github.com/flarebyte/buildstamp/internal/version"

// These variables are set at build time with the output of
// `buildstamp emit --format ldflags`, e.g.:
//
//	go build -ldflags "$(buildstamp emit --format ldflags) -X 'github.com/flarebyte/buildstamp/cli.Semver=0.1.0'"
var (
	Name          string
	Semver        string
	GitSHA        string
	GitDatetime   string
	GitDirty      string
	CargoFeatures string
	CargoProfile  string
	RustcSemver   string
	RustcLLVM     string
	RustcSHA      string
)

// Injected returns the values set through -X, keyed by propagated key.
// Variables left empty are omitted.
func Injected() map[string]string {
	all := map[string]string{
		version.KeyGitSHA:        GitSHA,
		version.KeyGitDatetime:   GitDatetime,
		version.KeyGitDirty:      GitDirty,
		version.KeyCargoFeatures: CargoFeatures,
		version.KeyCargoProfile:  CargoProfile,
		version.KeyRustcSemver:   RustcSemver,
		version.KeyRustcLLVM:     RustcLLVM,
		version.KeyRustcSHA:      RustcSHA,
	}
	out := make(map[string]string, len(all))
	for k, v := range all {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
