package config

import (
	"fmt"

	"cuelang.org/go/cue"
)

// File is the optional buildstamp.cue configuration. Has* flags record which
// optional fields were present so callers can layer flags on top.
type File struct {
	ConfigVersion string
	Package       Package
	Script        string
	Format        string
	Features      Features
	ProfileVar    string
	Compiler      Compiler
	Directives    Directives
	Rerun         Rerun
}

// Package holds the package constants (the pkg section) when the driver does not export them.
type Package struct {
	Name   string
	Semver string
}

// Features holds feature flag detection settings.
type Features struct {
	Prefix string
}

// Compiler holds the compiler self-introspection command.
type Compiler struct {
	Program string
	Args    []string
}

// Argv returns the full command, or nil when no program is configured.
func (c Compiler) Argv() []string {
	if c.Program == "" {
		return nil
	}
	return append([]string{c.Program}, c.Args...)
}

// Directives holds the driver directive prefixes.
type Directives struct {
	Env   string
	Rerun string
}

// Rerun holds re-run hint settings.
type Rerun struct {
	Enabled    bool
	HasEnabled bool
}

// Parse loads and validates a CUE config file.
// Required fields:
//   - configVersion: string, one of SupportedConfigVersions
func Parse(path string) (File, error) {
	v, err := compileCUE(path)
	if err != nil {
		return File{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return File{}, err
	}
	var f File
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&f.ConfigVersion); err != nil {
		return File{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if err := checkConfigVersion(f.ConfigVersion); err != nil {
		return File{}, err
	}

	strs := []struct {
		path string
		dst  *string
	}{
		{"pkg.name", &f.Package.Name},
		{"pkg.semver", &f.Package.Semver},
		{"script", &f.Script},
		{"format", &f.Format},
		{"features.prefix", &f.Features.Prefix},
		{"profileVar", &f.ProfileVar},
		{"compiler.program", &f.Compiler.Program},
		{"directives.env", &f.Directives.Env},
		{"directives.rerun", &f.Directives.Rerun},
	}
	for _, s := range strs {
		if err := optionalString(v, s.path, s.dst); err != nil {
			return File{}, err
		}
	}

	av := v.LookupPath(cue.ParsePath("compiler.args"))
	if av.Exists() {
		if av.Kind() != cue.ListKind {
			return File{}, fmt.Errorf("invalid type for field: compiler.args (expected list of strings)")
		}
		if err := av.Decode(&f.Compiler.Args); err != nil {
			return File{}, fmt.Errorf("invalid value for compiler.args: %v", err)
		}
	}
	ev := v.LookupPath(cue.ParsePath("rerun.enabled"))
	if ev.Exists() {
		if ev.Kind() != cue.BoolKind {
			return File{}, fmt.Errorf("invalid type for field: rerun.enabled (expected bool)")
		}
		if err := ev.Decode(&f.Rerun.Enabled); err != nil {
			return File{}, fmt.Errorf("invalid value for rerun.enabled: %v", err)
		}
		f.Rerun.HasEnabled = true
	}
	return f, nil
}

func optionalString(v cue.Value, path string, dst *string) error {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", path)
	}
	if err := f.Decode(dst); err != nil {
		return fmt.Errorf("invalid value for %s: %v", path, err)
	}
	return nil
}
