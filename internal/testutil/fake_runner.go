package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/flarebyte/buildstamp/internal/procexec"
)

// Reply is a canned result for one argv.
type Reply struct {
	Out string
	Err error
}

// FakeRunner answers commands from a table keyed by the space-joined argv.
// Unknown commands fail like a missing program.
type FakeRunner struct {
	mu      sync.Mutex
	Replies map[string]Reply
	Calls   []string
}

// NewFakeRunner returns a runner with an empty table.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Replies: map[string]Reply{}}
}

// On registers stdout for argv.
func (f *FakeRunner) On(out string, argv ...string) *FakeRunner {
	f.Replies[strings.Join(argv, " ")] = Reply{Out: out}
	return f
}

// Fail registers a non-zero exit for argv.
func (f *FakeRunner) Fail(argv ...string) *FakeRunner {
	key := strings.Join(argv, " ")
	f.Replies[key] = Reply{Err: fmt.Errorf("%w: %s exited with code 1", procexec.ErrCommandFailed, key)}
	return f
}

// Run implements procexec.Runner.
func (f *FakeRunner) Run(_ context.Context, _ string, argv ...string) (string, error) {
	key := strings.Join(argv, " ")
	f.mu.Lock()
	f.Calls = append(f.Calls, key)
	r, ok := f.Replies[key]
	f.mu.Unlock()
	if !ok {
		prog := ""
		if len(argv) > 0 {
			prog = argv[0]
		}
		return "", fmt.Errorf("%w: program %s not found", procexec.ErrCommandFailed, prog)
	}
	return r.Out, r.Err
}

// Called reports whether argv was run.
func (f *FakeRunner) Called(argv ...string) bool {
	key := strings.Join(argv, " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c == key {
			return true
		}
	}
	return false
}
