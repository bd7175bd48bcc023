// Package rerun computes the paths whose change must re-trigger capture.
package rerun

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/flarebyte/buildstamp/internal/procexec"
)

// DefaultScript is the build script the driver runs.
const DefaultScript = "build.rs"

var (
	toplevelArgs = []string{"git", "rev-parse", "--show-toplevel"}
	gitDirArgs   = []string{"git", "rev-parse", "--git-dir"}
)

// Options configures Setup.
type Options struct {
	Runner procexec.Runner
	// Dir is the package directory holding Script.
	Dir    string
	Script string
}

// Setup touches the build script and returns the re-run hints: the script as
// given, its canonical path, and the HEAD reference file of the repository.
func Setup(ctx context.Context, opts Options) ([]string, error) {
	if opts.Runner == nil {
		opts.Runner = procexec.Exec{}
	}
	if opts.Script == "" {
		opts.Script = DefaultScript
	}

	script, err := Canonicalize(filepath.Join(opts.Dir, opts.Script))
	if err != nil {
		return nil, err
	}
	if err := touch(ctx, opts.Runner, opts.Dir, script); err != nil {
		return nil, err
	}
	head, err := HeadPath(ctx, opts.Runner, opts.Dir)
	if err != nil {
		return nil, err
	}
	return []string{opts.Script, script, head}, nil
}

// Canonicalize returns the absolute path of p with symlinks resolved.
func Canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("canonicalize %s: %w", p, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("canonicalize %s: %w", p, err)
	}
	return resolved, nil
}

// touch bumps the script mtime so the driver sees it stale on the next build.
func touch(ctx context.Context, r procexec.Runner, dir, path string) error {
	out, err := r.Run(ctx, dir, "touch", path)
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("%w: touch printed %q", procexec.ErrUnexpectedOutput, out)
	}
	return nil
}

// HeadPath locates the HEAD file of the repository containing dir.
func HeadPath(ctx context.Context, r procexec.Runner, dir string) (string, error) {
	toplevel, err := procexec.RunLine(ctx, r, dir, toplevelArgs...)
	if err != nil {
		return "", err
	}
	gitDir, err := procexec.RunLine(ctx, r, dir, gitDirArgs...)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(gitDir) {
		return filepath.Join(gitDir, "HEAD"), nil
	}
	return filepath.Join(toplevel, gitDir, "HEAD"), nil
}
