package procexec

import "errors"

var (
	// ErrCommandFailed reports a missing executable or a non-zero exit.
	ErrCommandFailed = errors.New("command failed")
	// ErrUnexpectedOutput reports output that does not have the expected shape.
	ErrUnexpectedOutput = errors.New("unexpected command output")
)
