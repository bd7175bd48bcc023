package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/flarebyte/buildstamp/internal/procexec"
	"github.com/flarebyte/buildstamp/internal/testutil"
	"github.com/flarebyte/buildstamp/internal/version"
)

const (
	testSHA      = "2beb5ec70ee2c0490cd0f4964544c998e6badbcc"
	rustcReport  = "rustc 1.56.1 (59eed8a2a 2021-11-01)\nbinary: rustc\ncommit-hash: 59eed8a2aac0230a8b53e89d4e99d55912ba6b35\ncommit-date: 2021-11-01\nhost: x86_64-unknown-linux-gnu\nrelease: 1.56.1\nLLVM version: 13.0.0\n"
	testDatetime = "2022-02-11 14:26:08 -0300"
)

func happyRunner() *testutil.FakeRunner {
	return testutil.NewFakeRunner().
		On(testSHA+"\n", describeArgs...).
		On(testDatetime+"\n", showArgs...).
		On("", statusArgs...).
		On(rustcReport, DefaultCompiler...)
}

func testOptions(r procexec.Runner) Options {
	return Options{
		Runner:  r,
		Environ: []string{"HOME=/root", "PROFILE=release"},
		Package: version.Package{Name: "example-counter", Semver: "0.1.0"},
	}
}

func TestCapture_Clean(t *testing.T) {
	v, err := Capture(context.Background(), testOptions(happyRunner()))
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	want := version.Version{
		Name:          "example-counter",
		Semver:        "0.1.0",
		GitSHA:        testSHA,
		GitDatetime:   testDatetime,
		GitDirty:      false,
		CargoFeatures: "default",
		CargoProfile:  "release",
		RustcSemver:   "1.56.1",
		RustcLLVM:     "13.0",
		RustcSHA:      "59eed8a2aac0230a8b53e89d4e99d55912ba6b35",
	}
	if v != want {
		t.Fatalf("unexpected version\nwant: %+v\n got: %+v", want, v)
	}
}

func TestCapture_DirtyWhenStatusHasOutput(t *testing.T) {
	r := happyRunner().On("?? new.txt\n", statusArgs...)
	v, err := Capture(context.Background(), testOptions(r))
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !v.GitDirty {
		t.Fatalf("expected dirty")
	}
}

func TestCapture_CommandFailureIsFatal(t *testing.T) {
	for _, argv := range [][]string{describeArgs, showArgs, statusArgs, DefaultCompiler} {
		r := happyRunner().Fail(argv...)
		_, err := Capture(context.Background(), testOptions(r))
		if !errors.Is(err, procexec.ErrCommandFailed) {
			t.Fatalf("%v: expected ErrCommandFailed, got %v", argv, err)
		}
	}
}

func TestCapture_MultiLineOutputIsFatal(t *testing.T) {
	r := happyRunner().On(testSHA+"\nextra\n", describeArgs...)
	_, err := Capture(context.Background(), testOptions(r))
	if !errors.Is(err, procexec.ErrUnexpectedOutput) {
		t.Fatalf("expected ErrUnexpectedOutput, got %v", err)
	}
}

func TestCapture_NonHexSHA(t *testing.T) {
	r := happyRunner().On("v1.0-3-g2beb5ec\n", describeArgs...)
	_, err := Capture(context.Background(), testOptions(r))
	if !errors.Is(err, procexec.ErrUnexpectedOutput) {
		t.Fatalf("expected ErrUnexpectedOutput, got %v", err)
	}
}

func TestCapture_MissingProfile(t *testing.T) {
	opts := testOptions(happyRunner())
	opts.Environ = []string{"HOME=/root"}
	_, err := Capture(context.Background(), opts)
	if !errors.Is(err, version.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestCapture_MissingPackage(t *testing.T) {
	opts := testOptions(happyRunner())
	opts.Package.Semver = ""
	_, err := Capture(context.Background(), opts)
	if !errors.Is(err, version.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestFeatures(t *testing.T) {
	cases := []struct {
		name    string
		environ []string
		want    string
	}{
		{name: "none", environ: []string{"PATH=/bin"}, want: "default"},
		{name: "enumeration order", environ: []string{"CARGO_FEATURE_FOO=1", "PATH=/bin", "CARGO_FEATURE_BAR=1"}, want: "foo,bar"},
		{name: "lower-cased", environ: []string{"CARGO_FEATURE_WITH_LOGS=1"}, want: "with_logs"},
		{name: "prefix only at start", environ: []string{"X_CARGO_FEATURE_FOO=1"}, want: "default"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Features(tc.environ, DefaultFeaturePrefix); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestParseCompilerMeta(t *testing.T) {
	cases := []struct {
		name    string
		report  string
		want    compilerMeta
		wantErr error
	}{
		{
			name:   "stable",
			report: rustcReport,
			want:   compilerMeta{semver: "1.56.1", llvm: "13.0", sha: "59eed8a2aac0230a8b53e89d4e99d55912ba6b35"},
		},
		{
			name:   "nightly",
			report: "release: 1.58.0-nightly\ncommit-hash: abc123\nLLVM version: 13.0.0\n",
			want:   compilerMeta{semver: "1.58.0-nightly", llvm: "13.0", sha: "abc123"},
		},
		{
			name:    "unknown commit hash",
			report:  "release: 1.56.1\ncommit-hash: unknown\nLLVM version: 13.0.0\n",
			wantErr: version.ErrMissingField,
		},
		{
			name:    "missing llvm",
			report:  "release: 1.56.1\ncommit-hash: abc\n",
			wantErr: version.ErrMissingField,
		},
		{
			name:    "bad release",
			report:  "release: not-a-version\ncommit-hash: abc\nLLVM version: 13.0.0\n",
			wantErr: procexec.ErrUnexpectedOutput,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseCompilerMeta(tc.report)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}
