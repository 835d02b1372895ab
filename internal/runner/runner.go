// Package runner executes the short-lived measurement commands that
// host probes shell out to (top, vmstat, mpstat, df, wmic).
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single command invocation.
	DefaultTimeout = 5 * time.Second
	// MaxOutputSize caps captured stdout/stderr (256KB).
	MaxOutputSize = 256 * 1024

	waitDelay = 500 * time.Millisecond
)

// ErrTimeout is returned when a command outlives its timeout.
var ErrTimeout = errors.New("command timed out")

// Command describes one external invocation.
type Command struct {
	Name string
	Args []string
	// TTY runs the command attached to a pseudo-terminal. Some tools
	// (interactive top builds) refuse to render when stdout is a pipe.
	TTY bool
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner runs a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, c Command) (string, error)
}

// Exec runs commands on the local host.
type Exec struct {
	// Timeout is applied to every command; DefaultTimeout when zero.
	Timeout time.Duration
}

// New returns an Exec runner with the given per-command timeout.
func New(timeout time.Duration) *Exec {
	return &Exec{Timeout: timeout}
}

func (r *Exec) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// Run executes c and returns stdout. A nonzero exit, a timeout or a
// cancelled context is reported as an error; partial output is dropped.
func (r *Exec) Run(ctx context.Context, c Command) (string, error) {
	timeout := r.timeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	// Force the C locale so decimal separators are always '.'.
	cmd.Env = append(cmd.Environ(), "LC_ALL=C", "LANG=C")
	cmd.WaitDelay = waitDelay

	var (
		stdout string
		stderr bytes.Buffer
		err    error
	)
	if c.TTY {
		stdout, err = runTTY(ctx, cmd)
	} else {
		var out bytes.Buffer
		cmd.Stdout = &limitedWriter{w: &out, limit: MaxOutputSize}
		cmd.Stderr = &limitedWriter{w: &stderr, limit: MaxOutputSize}
		err = cmd.Run()
		stdout = out.String()
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%s: %w after %s", c, ErrTimeout, timeout)
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("%s: %w", c, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				return "", fmt.Errorf("%s: exit status %d", c, exitErr.ExitCode())
			}
			return "", fmt.Errorf("%s: exit status %d: %s", c, exitErr.ExitCode(), msg)
		}
		return "", fmt.Errorf("%s: %w", c, err)
	}
	return stdout, nil
}

// CommandExists reports whether name resolves in PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// limitedWriter stops buffering after limit bytes but keeps draining.
type limitedWriter struct {
	w       *bytes.Buffer
	limit   int
	written int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.written >= lw.limit {
		return len(p), nil
	}
	chunk := p
	if remaining := lw.limit - lw.written; len(chunk) > remaining {
		chunk = chunk[:remaining]
	}
	n, err := lw.w.Write(chunk)
	lw.written += n
	return len(p), err
}
