package version

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingField reports a value that must be present but is not.
var ErrMissingField = errors.New("missing field")

// Propagated keys. Name and semver are exposed by the build driver itself.
const (
	KeyGitSHA        = "NEARAPPS_GIT_SHA"
	KeyGitDatetime   = "NEARAPPS_GIT_DATETIME"
	KeyGitDirty      = "NEARAPPS_GIT_DIRTY"
	KeyCargoFeatures = "NEARAPPS_CARGO_FEATURES"
	KeyCargoProfile  = "NEARAPPS_CARGO_PROFILE"
	KeyRustcSemver   = "NEARAPPS_RUSTC_SEMVER"
	KeyRustcLLVM     = "NEARAPPS_RUSTC_LLVM"
	KeyRustcSHA      = "NEARAPPS_RUSTC_SHA"
)

// Keys lists the propagated keys in emission order.
var Keys = []string{
	KeyGitSHA,
	KeyGitDatetime,
	KeyGitDirty,
	KeyCargoFeatures,
	KeyCargoProfile,
	KeyRustcSemver,
	KeyRustcLLVM,
	KeyRustcSHA,
}

// KV is one propagated key/value pair.
type KV struct {
	Key   string
	Value string
}

// Env returns the propagated pairs in Keys order.
func (v Version) Env() []KV {
	return []KV{
		{KeyGitSHA, v.GitSHA},
		{KeyGitDatetime, v.GitDatetime},
		{KeyGitDirty, strconv.FormatBool(v.GitDirty)},
		{KeyCargoFeatures, v.CargoFeatures},
		{KeyCargoProfile, v.CargoProfile},
		{KeyRustcSemver, v.RustcSemver},
		{KeyRustcLLVM, v.RustcLLVM},
		{KeyRustcSHA, v.RustcSHA},
	}
}

// EnvMap returns Env as a map.
func (v Version) EnvMap() map[string]string {
	m := make(map[string]string, len(Keys))
	for _, kv := range v.Env() {
		m[kv.Key] = kv.Value
	}
	return m
}

// LookupFunc resolves a key, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv reassembles a Version from previously propagated values plus the
// package constants. Every key must be present.
func FromEnv(lookup LookupFunc, pkg Package) (Version, error) {
	vals := make(map[string]string, len(Keys))
	for _, k := range Keys {
		s, ok := lookup(k)
		if !ok {
			return Version{}, fmt.Errorf("%w: %s", ErrMissingField, k)
		}
		vals[k] = s
	}
	dirty, err := parseDirty(vals[KeyGitDirty])
	if err != nil {
		return Version{}, err
	}
	return Version{
		Name:          pkg.Name,
		Semver:        pkg.Semver,
		GitSHA:        vals[KeyGitSHA],
		GitDatetime:   vals[KeyGitDatetime],
		GitDirty:      dirty,
		CargoFeatures: vals[KeyCargoFeatures],
		CargoProfile:  vals[KeyCargoProfile],
		RustcSemver:   vals[KeyRustcSemver],
		RustcLLVM:     vals[KeyRustcLLVM],
		RustcSHA:      vals[KeyRustcSHA],
	}, nil
}

// FromMap is FromEnv over a plain map.
func FromMap(m map[string]string, pkg Package) (Version, error) {
	return FromEnv(func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}, pkg)
}

// parseDirty accepts only the two spellings Env produces.
func parseDirty(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid value for %s: %q (expected true or false)", KeyGitDirty, s)
}
