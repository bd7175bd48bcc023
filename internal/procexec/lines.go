package procexec

import (
	"context"
	"fmt"
	"strings"
)

// SingleLine returns the only line of out with its line terminator removed.
// Empty output and output with more than one line are rejected.
func SingleLine(out string) (string, error) {
	if out == "" {
		return "", fmt.Errorf("%w: expected one line, got none", ErrUnexpectedOutput)
	}
	s := strings.TrimSuffix(out, "\n")
	s = strings.TrimSuffix(s, "\r")
	if n := strings.Count(s, "\n"); n > 0 {
		return "", fmt.Errorf("%w: expected one line, got %d", ErrUnexpectedOutput, n+1)
	}
	return s, nil
}

// RunLine runs argv and returns its single output line.
func RunLine(ctx context.Context, r Runner, dir string, argv ...string) (string, error) {
	out, err := r.Run(ctx, dir, argv...)
	if err != nil {
		return "", err
	}
	line, err := SingleLine(out)
	if err != nil {
		return "", fmt.Errorf("%s: %w", Quote(argv), err)
	}
	return line, nil
}
