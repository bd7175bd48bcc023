package capture

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/flarebyte/buildstamp/internal/procexec"
	"github.com/flarebyte/buildstamp/internal/version"
)

type compilerMeta struct {
	semver string
	llvm   string
	sha    string
}

func compilerInfo(ctx context.Context, r procexec.Runner, dir string, argv []string) (compilerMeta, error) {
	out, err := r.Run(ctx, dir, argv...)
	if err != nil {
		return compilerMeta{}, err
	}
	return parseCompilerMeta(out)
}

// parseCompilerMeta reads the `key: value` report printed by `rustc -vV`.
func parseCompilerMeta(out string) (compilerMeta, error) {
	fields := map[string]string{}
	s := bufio.NewScanner(strings.NewReader(out))
	for s.Scan() {
		k, v, ok := strings.Cut(s.Text(), ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := s.Err(); err != nil {
		return compilerMeta{}, fmt.Errorf("%w: compiler report: %v", procexec.ErrUnexpectedOutput, err)
	}

	release, ok := fields["release"]
	if !ok || release == "" {
		return compilerMeta{}, fmt.Errorf("%w: compiler release", version.ErrMissingField)
	}
	sv, err := goversion.NewSemver(release)
	if err != nil {
		return compilerMeta{}, fmt.Errorf("%w: compiler release %q: %v", procexec.ErrUnexpectedOutput, release, err)
	}

	llvmRaw, ok := fields["LLVM version"]
	if !ok || llvmRaw == "" {
		return compilerMeta{}, fmt.Errorf("%w: compiler LLVM version", version.ErrMissingField)
	}
	llvm, err := goversion.NewVersion(llvmRaw)
	if err != nil {
		return compilerMeta{}, fmt.Errorf("%w: LLVM version %q: %v", procexec.ErrUnexpectedOutput, llvmRaw, err)
	}
	seg := llvm.Segments()

	sha := fields["commit-hash"]
	if sha == "" || sha == "unknown" {
		return compilerMeta{}, fmt.Errorf("%w: compiler commit-hash", version.ErrMissingField)
	}

	return compilerMeta{
		semver: sv.Original(),
		llvm:   fmt.Sprintf("%d.%d", seg[0], seg[1]),
		sha:    sha,
	}, nil
}
