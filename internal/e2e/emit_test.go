package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flarebyte/buildstamp/internal/testutil"
	"github.com/flarebyte/buildstamp/internal/version"
)

func TestEmit_StableAcrossRuns(t *testing.T) {
	repo, hash := writePackage(t)
	var first []byte
	for i := 0; i < 3; i++ {
		r := runCmd(t, binPath, repo, buildEnv(), "emit")
		mustSucceed(t, r)
		if i == 0 {
			first = r.stdout
			continue
		}
		if !bytes.Equal(r.stdout, first) {
			t.Fatalf("stdout drift at run %d", i)
		}
	}
	out := string(first)
	for _, want := range []string{
		"cargo:rerun-if-changed=build.rs\n",
		"cargo:rustc-env=NEARAPPS_GIT_SHA=" + hash + "\n",
		"cargo:rustc-env=NEARAPPS_GIT_DIRTY=false\n",
		"cargo:rustc-env=NEARAPPS_CARGO_FEATURES=foo\n",
		"cargo:rustc-env=NEARAPPS_CARGO_PROFILE=release\n",
		"cargo:rustc-env=NEARAPPS_RUSTC_LLVM=13.0\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestEmit_DotenvReconstructsShow(t *testing.T) {
	repo, _ := writePackage(t)
	env := buildEnv()

	shown := runCmd(t, binPath, repo, env, "show")
	mustSucceed(t, shown)
	var want version.Version
	if err := json.Unmarshal(shown.stdout, &want); err != nil {
		t.Fatalf("decode show: %v", err)
	}

	dotenv := runCmd(t, binPath, repo, env, "emit", "--format", "dotenv", "--no-rerun")
	mustSucceed(t, dotenv)
	path := filepath.Join(t.TempDir(), "build.env")
	if err := os.WriteFile(path, dotenv.stdout, 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	rebuilt := runCmd(t, binPath, repo, env, "reconstruct", "--env-file", path)
	mustSucceed(t, rebuilt)
	var got version.Version
	if err := json.Unmarshal(rebuilt.stdout, &got); err != nil {
		t.Fatalf("decode reconstruct: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch\nwant: %+v\n got: %+v", want, got)
	}
}

func TestEmit_DirtyRequireClean(t *testing.T) {
	repo, _ := writePackage(t)
	if err := os.WriteFile(filepath.Join(repo, "untracked.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := runCmd(t, binPath, repo, buildEnv(), "emit")
	mustSucceed(t, r)
	if !strings.Contains(string(r.stdout), "NEARAPPS_GIT_DIRTY=true\n") {
		t.Fatalf("expected dirty tree:\n%s", r.stdout)
	}

	r = runCmd(t, binPath, repo, buildEnv(), "emit", "--require-clean")
	if r.code != 3 {
		t.Fatalf("expected exit 3, got %d (stderr %s)", r.code, r.stderr)
	}
	if len(r.stdout) != 0 {
		t.Fatalf("expected empty stdout, got:\n%s", r.stdout)
	}
	if got := string(r.stderr); !strings.HasPrefix(got, "buildstamp: ") || strings.Count(got, "\n") != 1 {
		t.Fatalf("expected a single error line, got %q", got)
	}
}

func TestEmit_OutsideRepositoryFails(t *testing.T) {
	testutil.RequireGit(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "build.rs"), []byte("fn main() {}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := runCmd(t, binPath, dir, append(buildEnv(), "GIT_CEILING_DIRECTORIES="+filepath.Dir(dir)), "emit")
	if r.code != 1 || len(r.stdout) != 0 {
		t.Fatalf("expected failure with empty stdout, got code %d stdout %q", r.code, r.stdout)
	}
}
