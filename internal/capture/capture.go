// Package capture gathers a version.Version from git, the compiler and the
// build environment.
package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/flarebyte/buildstamp/internal/procexec"
	"github.com/flarebyte/buildstamp/internal/version"
)

const (
	DefaultFeaturePrefix = "CARGO_FEATURE_"
	DefaultProfileKey    = "PROFILE"
	defaultFeatures      = "default"
)

// DefaultCompiler is the self-introspection command of the compiler.
var DefaultCompiler = []string{"rustc", "-vV"}

// Options configures one capture.
type Options struct {
	Runner procexec.Runner
	// Dir is the working directory for every command.
	Dir string
	// Environ is the build environment in os.Environ form and order.
	Environ       []string
	Package       version.Package
	FeaturePrefix string
	ProfileKey    string
	Compiler      []string
}

func (o Options) withDefaults() Options {
	if o.Runner == nil {
		o.Runner = procexec.Exec{}
	}
	if o.FeaturePrefix == "" {
		o.FeaturePrefix = DefaultFeaturePrefix
	}
	if o.ProfileKey == "" {
		o.ProfileKey = DefaultProfileKey
	}
	if len(o.Compiler) == 0 {
		o.Compiler = DefaultCompiler
	}
	return o
}

// Capture runs every command and returns a fully populated record, or the
// first failure.
func Capture(ctx context.Context, opts Options) (version.Version, error) {
	opts = opts.withDefaults()
	if opts.Package.Name == "" {
		return version.Version{}, fmt.Errorf("%w: package name", version.ErrMissingField)
	}
	if opts.Package.Semver == "" {
		return version.Version{}, fmt.Errorf("%w: package semver", version.ErrMissingField)
	}

	sha, err := gitSHA(ctx, opts.Runner, opts.Dir)
	if err != nil {
		return version.Version{}, err
	}
	datetime, err := gitDatetime(ctx, opts.Runner, opts.Dir)
	if err != nil {
		return version.Version{}, err
	}
	dirty, err := gitDirty(ctx, opts.Runner, opts.Dir)
	if err != nil {
		return version.Version{}, err
	}
	profile, ok := lookupEnviron(opts.Environ, opts.ProfileKey)
	if !ok {
		return version.Version{}, fmt.Errorf("%w: %s is not set", version.ErrMissingField, opts.ProfileKey)
	}
	rc, err := compilerInfo(ctx, opts.Runner, opts.Dir, opts.Compiler)
	if err != nil {
		return version.Version{}, err
	}

	return version.Version{
		Name:          opts.Package.Name,
		Semver:        opts.Package.Semver,
		GitSHA:        sha,
		GitDatetime:   datetime,
		GitDirty:      dirty,
		CargoFeatures: Features(opts.Environ, opts.FeaturePrefix),
		CargoProfile:  profile,
		RustcSemver:   rc.semver,
		RustcLLVM:     rc.llvm,
		RustcSHA:      rc.sha,
	}, nil
}

// Features returns the lower-cased names of keys carrying prefix, in environ
// order, joined with commas; "default" when none match.
func Features(environ []string, prefix string) string {
	var names []string
	for _, kv := range environ {
		k, _, _ := strings.Cut(kv, "=")
		if k == "" || !strings.HasPrefix(k, prefix) {
			continue
		}
		names = append(names, strings.ToLower(strings.TrimPrefix(k, prefix)))
	}
	if len(names) == 0 {
		return defaultFeatures
	}
	return strings.Join(names, ",")
}

func lookupEnviron(environ []string, key string) (string, bool) {
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == key {
			return v, true
		}
	}
	return "", false
}
