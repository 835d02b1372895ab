package probe

import (
	"context"
	"errors"
	"sync"

	"github.com/oleksiiilienko/hostprobe/internal/runner"
)

type fakeHost struct {
	platform string
	cores    int
	model    string
	hint     string
	loads    LoadAverages
	loadErr  error
}

func (h *fakeHost) Platform() string                    { return h.platform }
func (h *fakeHost) Cores(context.Context) int           { return h.cores }
func (h *fakeHost) Model(context.Context) string        { return h.model }
func (h *fakeHost) PlatformHint(context.Context) string { return h.hint }
func (h *fakeHost) LoadAverages(context.Context) (LoadAverages, error) {
	return h.loads, h.loadErr
}

type fakeResult struct {
	out string
	err error
}

// fakeRunner answers by command line; unknown commands behave as if the
// binary were missing.
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]fakeResult
	calls   []string
	onRun   func()
}

func (r *fakeRunner) Run(ctx context.Context, c runner.Command) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c.String())
	res, ok := r.results[c.String()]
	hook := r.onRun
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New(c.Name + ": executable file not found in $PATH")
	}
	return res.out, res.err
}

func (r *fakeRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type recorder struct {
	mu       sync.Mutex
	attempts []Attempt
}

func (r *recorder) Observe(a Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.attempts))
	for i, a := range r.attempts {
		out[i] = a.Strategy
	}
	return out
}

func cmdOf(name string) runner.Command {
	return runner.Command{Name: name}
}
