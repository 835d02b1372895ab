package probe

import (
	"context"
	"errors"
	"strings"

	"github.com/oleksiiilienko/hostprobe/internal/runner"
)

// ErrDiskUsage means the df report could not be interpreted.
var ErrDiskUsage = errors.New("could not parse disk usage")

// diskUsageMessage is what clients see for ErrDiskUsage.
const diskUsageMessage = "Could not parse disk usage"

// DiskProbe reports usage of the filesystem holding Path via `df -P -h`.
// POSIX output has the same six columns on Linux, macOS and the BSDs and
// keeps each filesystem on one line.
type DiskProbe struct {
	Runner runner.Runner
	// Path defaults to the working directory.
	Path string
}

func NewDiskProbe(r runner.Runner, path string) *DiskProbe {
	return &DiskProbe{Runner: r, Path: path}
}

func (p *DiskProbe) Sample(ctx context.Context) DiskSample {
	path := p.Path
	if path == "" {
		path = "."
	}
	out, err := p.Runner.Run(ctx, runner.Command{Name: "df", Args: []string{"-P", "-h", path}})
	if err != nil {
		return DiskSample{Error: err.Error()}
	}
	sample, err := ParseDF(out)
	if errors.Is(err, ErrDiskUsage) {
		return DiskSample{Error: diskUsageMessage}
	}
	return sample
}

// ParseDF reads a header plus one data row of POSIX df output:
//
//	Filesystem      Size  Used Avail Capacity Mounted on
//	/dev/sda1       100G   40G   55G      42% /
//
// Everything after the capacity column is the mount point, which may
// contain spaces.
func ParseDF(out string) (DiskSample, error) {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return DiskSample{}, ErrDiskUsage
	}

	fields := strings.Fields(lines[1])
	if len(fields) < 5 {
		return DiskSample{}, ErrDiskUsage
	}

	return DiskSample{
		Success:      true,
		Total:        fields[1],
		Used:         fields[2],
		Available:    fields[3],
		UsagePercent: strings.TrimSuffix(fields[4], "%"),
		Mount:        strings.Join(fields[5:], " "),
	}, nil
}
