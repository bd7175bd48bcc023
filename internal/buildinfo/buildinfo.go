// Package buildinfo exposes the version record of the running binary. Values
// come from the cli package variables, which are set at build time via
// -ldflags.
package buildinfo

import (
	"runtime/debug"

	"github.com/flarebyte/buildstamp/cli"
	"github.com/flarebyte/buildstamp/internal/version"
)

const devSemver = "dev"

// Current reconstructs the injected record. It fails when only part of
// the record was injected; a build with nothing injected yields Dev().
func Current() (version.Version, error) {
	injected := cli.Injected()
	if len(injected) == 0 {
		return Dev(), nil
	}
	return version.FromMap(injected, pkg())
}

// Dev returns the record of an unstamped build. Commit details are taken from
// the Go toolchain's VCS stamping when available.
func Dev() version.Version {
	v := version.Version{Name: pkg().Name, Semver: pkg().Semver}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			v.GitSHA = s.Value
		case "vcs.time":
			v.GitDatetime = s.Value
		case "vcs.modified":
			v.GitDirty = s.Value == "true"
		}
	}
	return v
}

// Summary returns a concise single-line version string.
func Summary() string {
	v, err := Current()
	if err != nil {
		return Dev().Summary()
	}
	return v.Summary()
}

func pkg() version.Package {
	p := version.Package{Name: cli.Name, Semver: cli.Semver}
	if p.Name == "" {
		p.Name = "buildstamp"
	}
	if p.Semver == "" {
		p.Semver = devSemver
	}
	return p
}
