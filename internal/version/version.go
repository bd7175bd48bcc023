// Package version defines the build provenance record and its mapping to
// environment variables.
package version

import (
	"strings"
)

// Version is gathered right before compilation and embedded in the artifact.
type Version struct {
	// Name is the package name, eg. `example-counter`.
	Name string `json:"name" yaml:"name"`
	// Semver is the package version, eg. `0.1.0`.
	Semver string `json:"semver" yaml:"semver"`
	// GitSHA is the 40-char commit sha.
	GitSHA string `json:"git_sha" yaml:"git_sha"`
	// GitDatetime is the commit datetime, eg. `2022-02-11 14:26:08 -0300`.
	GitDatetime string `json:"git_datetime" yaml:"git_datetime"`
	// GitDirty reports modified or untracked files. A build that is meant to
	// be reproducible must show false.
	GitDirty bool `json:"git_dirty" yaml:"git_dirty"`
	// CargoFeatures lists active features comma-separated, or `default`.
	CargoFeatures string `json:"cargo_features" yaml:"cargo_features"`
	// CargoProfile is the build profile, eg. `release`.
	CargoProfile string `json:"cargo_profile" yaml:"cargo_profile"`
	RustcSemver  string `json:"rustc_semver" yaml:"rustc_semver"`
	RustcLLVM    string `json:"rustc_llvm" yaml:"rustc_llvm"`
	RustcSHA     string `json:"rustc_sha" yaml:"rustc_sha"`
}

// Package holds the metadata the build driver exposes natively.
type Package struct {
	Name   string
	Semver string
}

// Versioned is implemented by anything that can report its build version.
type Versioned interface {
	Version() Version
}

// Reproducible reports whether the working tree was clean at capture time.
func (v Version) Reproducible() bool { return !v.GitDirty }

// Summary returns a concise single-line version string.
func (v Version) Summary() string {
	s := v.Name
	if v.Semver != "" {
		if s != "" {
			s += " "
		}
		s += v.Semver
	}
	if s == "" {
		s = "dev"
	}
	parts := make([]string, 0, 2)
	if v.GitSHA != "" {
		c := v.GitSHA
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if v.GitDirty {
		parts = append(parts, "dirty")
	}
	if len(parts) > 0 {
		s += " (" + strings.Join(parts, ", ") + ")"
	}
	return s
}
