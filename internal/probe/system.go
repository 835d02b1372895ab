package probe

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oleksiiilienko/hostprobe/internal/runner"
)

type CPUSampler interface {
	Sample(ctx context.Context) CPUSample
}

type MemorySampler interface {
	Sample(ctx context.Context) MemorySample
}

type DiskSampler interface {
	Sample(ctx context.Context) DiskSample
}

// System combines the three probes into one Snapshot.
type System struct {
	CPU    CPUSampler
	Memory MemorySampler
	Disk   DiskSampler
	Now    func() time.Time
}

// NewSystem wires the production probes around a shared runner.
func NewSystem(r runner.Runner, h Host, diskPath string, obs Observer) *System {
	return &System{
		CPU:    NewCPUProbe(h, r, obs),
		Memory: NewMemoryProbe(),
		Disk:   NewDiskProbe(r, diskPath),
		Now:    time.Now,
	}
}

// Snapshot samples all probes concurrently. Probe failures are carried in
// the individual samples; Snapshot itself always succeeds.
func (s *System) Snapshot(ctx context.Context) Snapshot {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	snap := Snapshot{Success: true, Timestamp: now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.RAM = s.Memory.Sample(gctx)
		return nil
	})
	g.Go(func() error {
		snap.Disk = s.Disk.Sample(gctx)
		return nil
	})
	g.Go(func() error {
		snap.CPU = s.CPU.Sample(gctx)
		return nil
	})
	_ = g.Wait()
	return snap
}
