package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

// MemoryReader returns physical memory totals. mem.VirtualMemoryWithContext
// satisfies it.
type MemoryReader func(ctx context.Context) (*mem.VirtualMemoryStat, error)

// MemoryProbe reports used memory as total minus free. Free is the host's
// unused memory (MemFree on Linux), not gopsutil's Available estimate, so
// page cache counts as used and AvailableBytes is that free figure.
type MemoryProbe struct {
	Read MemoryReader
}

func NewMemoryProbe() *MemoryProbe {
	return &MemoryProbe{Read: mem.VirtualMemoryWithContext}
}

func (p *MemoryProbe) Sample(ctx context.Context) MemorySample {
	vm, err := p.Read(ctx)
	if err == nil && (vm == nil || vm.Total == 0) {
		err = errors.New("total memory reported as zero")
	}
	if err != nil {
		return MemorySample{Error: fmt.Sprintf("read memory: %v", err)}
	}

	free := min(vm.Free, vm.Total)
	used := vm.Total - free
	return MemorySample{
		Success:        true,
		TotalBytes:     vm.Total,
		UsedBytes:      used,
		AvailableBytes: free,
		PercentageUsed: Percent(round(float64(used)/float64(vm.Total)*100, 1)),
	}
}
