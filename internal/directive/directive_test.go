package directive

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/joho/godotenv"

	"github.com/flarebyte/buildstamp/internal/version"
)

func sample() version.Version {
	return version.Version{
		Name:          "example-counter",
		Semver:        "0.1.0",
		GitSHA:        "2beb5ec70ee2c0490cd0f4964544c998e6badbcc",
		GitDatetime:   "2022-02-11 14:26:08 -0300",
		CargoFeatures: "default",
		CargoProfile:  "release",
		RustcSemver:   "1.56.1",
		RustcLLVM:     "13.0",
		RustcSHA:      "59eed8a2aac0230a8b53e89d4e99d55912ba6b35",
	}
}

func TestRenderCargo(t *testing.T) {
	lines, err := Render(Options{}, sample().Env(), []string{"build.rs", "/repo/.git/HEAD"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := strings.Join([]string{
		"cargo:rerun-if-changed=build.rs",
		"cargo:rerun-if-changed=/repo/.git/HEAD",
		"cargo:rustc-env=NEARAPPS_GIT_SHA=2beb5ec70ee2c0490cd0f4964544c998e6badbcc",
		"cargo:rustc-env=NEARAPPS_GIT_DATETIME=2022-02-11 14:26:08 -0300",
		"cargo:rustc-env=NEARAPPS_GIT_DIRTY=false",
		"cargo:rustc-env=NEARAPPS_CARGO_FEATURES=default",
		"cargo:rustc-env=NEARAPPS_CARGO_PROFILE=release",
		"cargo:rustc-env=NEARAPPS_RUSTC_SEMVER=1.56.1",
		"cargo:rustc-env=NEARAPPS_RUSTC_LLVM=13.0",
		"cargo:rustc-env=NEARAPPS_RUSTC_SHA=59eed8a2aac0230a8b53e89d4e99d55912ba6b35",
	}, "\n")
	if got := strings.Join(lines, "\n"); got != want {
		t.Fatalf("unexpected lines\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestRender_RejectsDelimiterInKey(t *testing.T) {
	pairs := append(sample().Env(), version.KV{Key: "BAD=KEY", Value: "x"})
	for _, f := range []Format{FormatCargo, FormatLdflags, FormatDotenv} {
		lines, err := Render(Options{Format: f}, pairs, nil)
		if !errors.Is(err, ErrMalformedDirective) {
			t.Fatalf("%s: expected ErrMalformedDirective, got %v", f, err)
		}
		if lines != nil {
			t.Fatalf("%s: no lines may be produced on error", f)
		}
	}
}

func TestRenderLdflags(t *testing.T) {
	lines, err := Render(Options{Format: FormatLdflags, LdflagsPackage: "example.com/app/cli"}, sample().Env(), []string{"ignored"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	for _, want := range []string{
		"-X 'example.com/app/cli.GitSHA=2beb5ec70ee2c0490cd0f4964544c998e6badbcc'",
		"-X 'example.com/app/cli.GitDatetime=2022-02-11 14:26:08 -0300'",
		"-X 'example.com/app/cli.GitDirty=false'",
	} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("missing %q in %q", want, lines[0])
		}
	}
}

func TestRenderDotenv(t *testing.T) {
	lines, err := Render(Options{Format: FormatDotenv}, sample().Env(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(lines) != len(version.Keys) {
		t.Fatalf("expected %d lines, got %d: %q", len(version.Keys), len(lines), lines)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, `NEARAPPS_GIT_DATETIME="2022-02-11 14:26:08 -0300"`) {
		t.Fatalf("unexpected dotenv output:\n%s", joined)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatCargo {
		t.Fatalf("empty format should default to cargo, got %q %v", f, err)
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []string{"a", "b"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "a\nb\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestRenderDotenv_RoundTrip(t *testing.T) {
	v := sample()
	v.CargoFeatures = "007"
	v.CargoProfile = "-01"
	v.GitDatetime = `say "hi" $HOME \ !`
	lines, err := Render(Options{Format: FormatDotenv}, v.Env(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	m, err := godotenv.Unmarshal(strings.Join(lines, "\n"))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := version.FromMap(m, version.Package{Name: v.Name, Semver: v.Semver})
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if got != v {
		t.Fatalf("round trip mismatch\nwant: %+v\n got: %+v", v, got)
	}
}

func TestRender_RejectsLineBreakInValue(t *testing.T) {
	for _, value := range []string{"release\ncargo:rustc-env=NEARAPPS_GIT_DIRTY=false", "release\r"} {
		v := sample()
		v.CargoProfile = value
		for _, f := range []Format{FormatCargo, FormatLdflags, FormatDotenv} {
			lines, err := Render(Options{Format: f}, v.Env(), nil)
			if !errors.Is(err, ErrMalformedDirective) {
				t.Fatalf("%s %q: expected ErrMalformedDirective, got %v", f, value, err)
			}
			if lines != nil {
				t.Fatalf("%s: no lines may be produced on error", f)
			}
		}
	}
	if _, err := Render(Options{}, sample().Env(), []string{"build.rs\nHEAD"}); !errors.Is(err, ErrMalformedDirective) {
		t.Fatalf("expected hint with a line break to be rejected, got %v", err)
	}
}

func TestCheckKey(t *testing.T) {
	for _, bad := range []string{"", "A=B", "A B", "A\tB", "A\n"} {
		if err := CheckKey(bad); !errors.Is(err, ErrMalformedDirective) {
			t.Fatalf("%q: expected ErrMalformedDirective, got %v", bad, err)
		}
	}
	for _, k := range version.Keys {
		if err := CheckKey(k); err != nil {
			t.Fatalf("%s: %v", k, err)
		}
	}
}

func TestLdflagsVarCoversEveryKey(t *testing.T) {
	for _, k := range version.Keys {
		if _, ok := ldflagsVar[k]; !ok {
			t.Fatalf("no ldflags variable for %s", k)
		}
	}
}
