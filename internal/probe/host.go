package probe

import (
	"context"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
)

// Host supplies the facts every CPU sample carries regardless of which
// strategy produced the value.
type Host interface {
	// Platform is the kernel family used for strategy lookup.
	Platform() string
	// Cores is the logical core count, never below 1.
	Cores(ctx context.Context) int
	Model(ctx context.Context) string
	// PlatformHint is a human-readable OS description, or "".
	PlatformHint(ctx context.Context) string
	LoadAverages(ctx context.Context) (LoadAverages, error)
}

const unknownModel = "Unknown"

// SystemHost reads host facts through gopsutil.
type SystemHost struct{}

func (SystemHost) Platform() string { return runtime.GOOS }

func (SystemHost) Cores(ctx context.Context) int {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil || n < 1 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		return 1
	}
	return n
}

func (SystemHost) Model(ctx context.Context) string {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return unknownModel
	}
	for _, info := range infos {
		if name := strings.TrimSpace(info.ModelName); name != "" {
			return name
		}
	}
	return unknownModel
}

func (SystemHost) PlatformHint(ctx context.Context) string {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return ""
	}
	if info.Platform == "" {
		return info.OS
	}
	return strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
}

func (SystemHost) LoadAverages(ctx context.Context) (LoadAverages, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAverages{}, err
	}
	return LoadAverages{OneMin: avg.Load1, FiveMin: avg.Load5, FifteenMin: avg.Load15}, nil
}
