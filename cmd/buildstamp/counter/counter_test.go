package counter

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flarebyte/buildstamp/internal/testutil"
	"github.com/flarebyte/buildstamp/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCounter_ThreeIncrements(t *testing.T) {
	out, err := execute(t)
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	if out != "1\n2\n3\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCounter_ShowVersion(t *testing.T) {
	out, err := execute(t, "--calls", "1", "--show-version")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	lines := strings.SplitN(out, "\n", 2)
	if lines[0] != "1" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	var v version.Version
	if err := json.Unmarshal([]byte(lines[1]), &v); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if v.Name == "" || v.Semver == "" {
		t.Fatalf("embedded version should carry the package: %+v", v)
	}
}

func TestCounter_Script(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "scenario.lua", `
for i = 1, 2 do call("counter", "increment") end
log("value", view("counter", "get"))
`)
	out, err := execute(t, "--script", filepath.Join(dir, "scenario.lua"))
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	if out != "value 2\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCounter_ScriptIncrementInView(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "bad.lua", `view("counter", "increment")`)
	if _, err := execute(t, "--script", filepath.Join(dir, "bad.lua")); err == nil {
		t.Fatalf("expected write in view to fail")
	}
}
