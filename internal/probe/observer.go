package probe

import (
	"log/slog"
	"time"
)

// Attempt records one strategy run for diagnostics.
type Attempt struct {
	Strategy string
	Value    float64
	Err      error
	Elapsed  time.Duration
}

// Observer is told about every strategy attempt, successful or not.
type Observer interface {
	Observe(Attempt)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Attempt)

func (f ObserverFunc) Observe(a Attempt) { f(a) }

// SlogObserver logs attempts at debug level. Failures are routine on
// hosts missing a tool, so they are not warnings.
type SlogObserver struct {
	Logger *slog.Logger
}

func NewSlogObserver(logger *slog.Logger) SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return SlogObserver{Logger: logger}
}

func (o SlogObserver) Observe(a Attempt) {
	if a.Err != nil {
		o.Logger.Debug("cpu strategy failed", "strategy", a.Strategy, "elapsed", a.Elapsed, "error", a.Err)
		return
	}
	o.Logger.Debug("cpu strategy succeeded", "strategy", a.Strategy, "value", a.Value, "elapsed", a.Elapsed)
}
