package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner runs one external command and returns its stdout.
// Implementations must return an error wrapping ErrCommandFailed when the
// program cannot be started or exits non-zero.
type Runner interface {
	Run(ctx context.Context, dir string, argv ...string) (string, error)
}

const stderrCaptureMax = 4096

type limitedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.max <= 0 {
		return n, nil
	}
	remain := b.max - b.buf.Len()
	if remain > 0 {
		if remain > len(p) {
			remain = len(p)
		}
		_, _ = b.buf.Write(p[:remain])
	}
	if len(p) > remain {
		b.truncated = true
	}
	return n, nil
}

func (b *limitedBuffer) String() string { return b.buf.String() }

// Exec runs commands with os/exec. The zero value is ready to use and
// inherits the parent environment.
type Exec struct {
	// Env replaces the child environment when non-nil.
	Env    []string
	Logger *slog.Logger
}

// Run executes argv[0] with the remaining arguments in dir.
func (e Exec) Run(ctx context.Context, dir string, argv ...string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("%w: empty argv", ErrCommandFailed)
	}
	program := argv[0]
	cmd := exec.CommandContext(ctx, program, argv[1:]...)
	cmd.Dir = dir
	if e.Env != nil {
		cmd.Env = e.Env
	}
	var stdout bytes.Buffer
	stderr := &limitedBuffer{max: stderrCaptureMax}
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	if e.Logger != nil {
		e.Logger.Debug("exec", "argv", argv, "dir", dir, "duration", time.Since(start), "err", err)
	}
	if err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return "", fmt.Errorf("%w: program %s not found", ErrCommandFailed, program)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.Join(strings.Fields(stderr.String()), " ")
			if msg == "" {
				return "", fmt.Errorf("%w: %s exited with code %d", ErrCommandFailed, Quote(argv), exitErr.ExitCode())
			}
			return "", fmt.Errorf("%w: %s exited with code %d: %s", ErrCommandFailed, Quote(argv), exitErr.ExitCode(), msg)
		}
		return "", fmt.Errorf("%w: program %s execution failed: %v", ErrCommandFailed, program, err)
	}
	return stdout.String(), nil
}

// Quote renders argv for diagnostics.
func Quote(argv []string) string {
	return strings.Join(argv, " ")
}
