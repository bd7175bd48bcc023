package settings

import "github.com/flarebyte/buildstamp/internal/version"

// ExitCodeDirty is returned when --require-clean finds a dirty tree.
const ExitCodeDirty = 3

type exitError struct {
	code int
	msg  string
}

func (e exitError) Error() string { return e.msg }
func (e exitError) ExitCode() int { return e.code }

// CheckClean enforces the reproducibility precondition when required.
func CheckClean(v *version.Version, required bool) error {
	if !required || v == nil || v.Reproducible() {
		return nil
	}
	return exitError{code: ExitCodeDirty, msg: "working tree is dirty: build is not reproducible"}
}
