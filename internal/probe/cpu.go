// Package probe samples host CPU, memory and disk utilization.
//
// CPU usage is measured through an ordered chain of strategies, from
// platform tools that report real busy time down to an estimate derived
// from the load average. The chain always ends with the load estimate,
// so a CPU sample never fails.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/oleksiiilienko/hostprobe/internal/runner"
)

// TerminalMethod names the unconditional load-average step.
const TerminalMethod = "load-average-terminal"

// CPUProbe produces a best-effort CPU utilization sample.
type CPUProbe struct {
	Host     Host
	Runner   runner.Runner
	Observer Observer
	// Strategies overrides Plan(Host.Platform(), ...) when non-nil.
	Strategies []Strategy
}

func NewCPUProbe(h Host, r runner.Runner, obs Observer) *CPUProbe {
	return &CPUProbe{Host: h, Runner: r, Observer: obs}
}

func (p *CPUProbe) strategies() []Strategy {
	if p.Strategies != nil {
		return p.Strategies
	}
	return Plan(p.Host.Platform(), p.Runner, p.Host)
}

func (p *CPUProbe) observe(a Attempt) {
	if p.Observer != nil {
		p.Observer.Observe(a)
	}
}

// Sample walks the strategy chain and returns the first validated value.
// Once ctx is done no further strategy is started and the terminal load
// estimate is returned instead.
func (p *CPUProbe) Sample(ctx context.Context) CPUSample {
	sample := CPUSample{
		Success:  true,
		Cores:    p.Host.Cores(ctx),
		Model:    p.Host.Model(ctx),
		Platform: p.Host.PlatformHint(ctx),
	}
	if sample.Cores < 1 {
		sample.Cores = 1
	}

	for _, s := range p.strategies() {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		reading, err := s.Measure(ctx)
		if err == nil {
			err = validate(reading.Value)
		}
		p.observe(Attempt{Strategy: s.Name(), Value: reading.Value, Err: err, Elapsed: time.Since(start)})
		if err != nil {
			continue
		}
		return shape(sample, s.Name(), reading)
	}

	return shape(sample, TerminalMethod, p.terminal(ctx, sample.Cores))
}

// terminal recomputes the load estimate and cannot fail: unreadable or
// invalid load averages count as zero. The Observer still sees the error.
func (p *CPUProbe) terminal(ctx context.Context, cores int) Reading {
	start := time.Now()
	loads, err := p.Host.LoadAverages(context.WithoutCancel(ctx))
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLoadUnavailable, err)
		loads = LoadAverages{}
	} else {
		loads, err = loads.sanitized()
	}
	value := loadPercent(loads.OneMin, cores)
	p.observe(Attempt{Strategy: TerminalMethod, Value: value, Err: err, Elapsed: time.Since(start)})
	return Reading{Value: value, Kind: KindLoadAverage, Load: &loads}
}

func shape(sample CPUSample, method string, r Reading) CPUSample {
	sample.Value = Percent(round(r.Value, 1))
	sample.Kind = r.Kind
	sample.Method = method
	if r.Load != nil {
		rounded := r.Load.rounded()
		sample.LoadAverage = &rounded
	}
	return sample
}
