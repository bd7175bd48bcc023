package capture

import (
	"context"
	"fmt"

	"github.com/flarebyte/buildstamp/internal/procexec"
)

// describeArgs excludes every tag so the output is always the bare commit.
var (
	describeArgs = []string{"git", "describe", "--abbrev=40", "--always", "--exclude=*"}
	showArgs     = []string{"git", "--no-pager", "show", "-s", "--format=%ci"}
	statusArgs   = []string{"git", "status", "--porcelain", "-u", "--no-column"}
)

func gitSHA(ctx context.Context, r procexec.Runner, dir string) (string, error) {
	line, err := procexec.RunLine(ctx, r, dir, describeArgs...)
	if err != nil {
		return "", err
	}
	if !isHex(line) {
		return "", fmt.Errorf("%w: git describe returned %q, expected a commit hash", procexec.ErrUnexpectedOutput, line)
	}
	return line, nil
}

func gitDatetime(ctx context.Context, r procexec.Runner, dir string) (string, error) {
	return procexec.RunLine(ctx, r, dir, showArgs...)
}

func gitDirty(ctx context.Context, r procexec.Runner, dir string) (bool, error) {
	out, err := r.Run(ctx, dir, statusArgs...)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
