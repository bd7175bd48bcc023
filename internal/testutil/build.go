package testutil

import (
	"path/filepath"
	"testing"
)

// Canned command output for a clean debug build.
const (
	SHA            = "2beb5ec70ee2c0490cd0f4964544c998e6badbcc"
	Datetime       = "2022-02-11 14:26:08 -0300"
	CompilerReport = "release: 1.56.1\ncommit-hash: 59eed8a2aac0230a8b53e89d4e99d55912ba6b35\nLLVM version: 13.0.0\n"
)

// BuildEnviron is the driver environment matching the canned replies.
var BuildEnviron = []string{"PROFILE=debug", "CARGO_FEATURE_FOO=1", "CARGO_FEATURE_BAR=1"}

// BuildPackage creates a package directory holding build.rs and a .git/HEAD
// file, and a runner answering every command a build invocation runs.
func BuildPackage(t *testing.T) (string, *FakeRunner) {
	t.Helper()
	dir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	WriteFile(t, dir, "build.rs", "fn main() {}\n")
	WriteFile(t, dir, filepath.Join(".git", "HEAD"), "ref: refs/heads/main\n")
	r := NewFakeRunner().
		On("", "touch", filepath.Join(dir, "build.rs")).
		On(dir+"\n", "git", "rev-parse", "--show-toplevel").
		On(".git\n", "git", "rev-parse", "--git-dir").
		On(SHA+"\n", "git", "describe", "--abbrev=40", "--always", "--exclude=*").
		On(Datetime+"\n", "git", "--no-pager", "show", "-s", "--format=%ci").
		On("", "git", "status", "--porcelain", "-u", "--no-column").
		On(CompilerReport, "rustc", "-vV")
	return dir, r
}
