package probe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/oleksiiilienko/hostprobe/internal/runner"
)

var (
	// ErrCommandFailed means the measurement command exited nonzero,
	// timed out, or printed nothing.
	ErrCommandFailed = errors.New("command failed")
	// ErrParse means the output had no usable number where expected.
	ErrParse = errors.New("unparseable output")
	// ErrOutOfRange means the parsed value fell outside [0, 100].
	ErrOutOfRange = errors.New("value out of range")
	// ErrLoadUnavailable means the host could not report load averages.
	ErrLoadUnavailable = errors.New("load average unavailable")
)

// Reading is the raw outcome of a single strategy.
type Reading struct {
	Value float64
	Kind  Kind
	Load  *LoadAverages
}

// Strategy is one named way of measuring CPU utilization.
type Strategy interface {
	Name() string
	Measure(ctx context.Context) (Reading, error)
}

// ParseFunc turns command output into a utilization percentage.
type ParseFunc func(out string) (float64, error)

// CommandStrategy runs one external command and parses its output.
type CommandStrategy struct {
	Label   string
	Command runner.Command
	Parse   ParseFunc
	Runner  runner.Runner
}

func (s *CommandStrategy) Name() string { return s.Label }

func (s *CommandStrategy) Measure(ctx context.Context) (Reading, error) {
	out, err := s.Runner.Run(ctx, s.Command)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}
	if strings.TrimSpace(out) == "" {
		return Reading{}, fmt.Errorf("%w: %s: no output", ErrCommandFailed, s.Command)
	}
	v, err := s.Parse(out)
	if err != nil {
		return Reading{}, err
	}
	return Reading{Value: v, Kind: KindPercentage}, nil
}

// LoadStrategy estimates utilization as load1 / cores * 100, capped at 100.
// Load counts queued work too, so this is an approximation.
type LoadStrategy struct {
	Host Host
}

func (s *LoadStrategy) Name() string { return "load-average" }

func (s *LoadStrategy) Measure(ctx context.Context) (Reading, error) {
	loads, err := s.Host.LoadAverages(ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %w", ErrLoadUnavailable, err)
	}
	if _, err := loads.sanitized(); err != nil {
		return Reading{}, err
	}
	return Reading{
		Value: loadPercent(loads.OneMin, s.Host.Cores(ctx)),
		Kind:  KindLoadAverage,
		Load:  &loads,
	}, nil
}

// sanitized zeroes every component that is negative or not finite. The
// error names the first bad component.
func (l LoadAverages) sanitized() (LoadAverages, error) {
	var err error
	clean := func(name string, v *float64) {
		if finite(*v) && *v >= 0 {
			return
		}
		if err == nil {
			err = fmt.Errorf("%w: %s load %v", ErrLoadUnavailable, name, *v)
		}
		*v = 0
	}
	clean("one-minute", &l.OneMin)
	clean("five-minute", &l.FiveMin)
	clean("fifteen-minute", &l.FifteenMin)
	return l, err
}

func loadPercent(load1 float64, cores int) float64 {
	if cores < 1 {
		cores = 1
	}
	pct := load1 / float64(cores) * 100
	if !finite(pct) || pct < 0 {
		return 0
	}
	return math.Min(pct, 100)
}

// validate applies the acceptance policy to a strategy's value.
func validate(v float64) error {
	if !finite(v) {
		return fmt.Errorf("%w: non-finite value %v", ErrParse, v)
	}
	if v < 0 || v > 100 {
		return fmt.Errorf("%w: %v", ErrOutOfRange, v)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
