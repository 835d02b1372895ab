package probe

import (
	"math"
	"strconv"
	"time"
)

// Kind tags how a CPU value was obtained.
type Kind string

const (
	// KindPercentage is a direct busy-time measurement.
	KindPercentage Kind = "percentage"
	// KindLoadAverage is derived from the one-minute load average.
	KindLoadAverage Kind = "load_average"
)

// Percent is a utilization figure presented with one decimal place.
// It marshals as a JSON string ("23.4") to keep the trailing zero.
type Percent float64

func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', 1, 64)
}

func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*p = Percent(v)
	return nil
}

// LoadAverages are the kernel's 1/5/15-minute run-queue averages.
type LoadAverages struct {
	OneMin     float64 `json:"oneMin"`
	FiveMin    float64 `json:"fiveMin"`
	FifteenMin float64 `json:"fifteenMin"`
}

func (l LoadAverages) rounded() LoadAverages {
	return LoadAverages{
		OneMin:     round(l.OneMin, 2),
		FiveMin:    round(l.FiveMin, 2),
		FifteenMin: round(l.FifteenMin, 2),
	}
}

// CPUSample is the result of one CPUProbe.Sample call.
type CPUSample struct {
	Success     bool          `json:"success"`
	Value       Percent       `json:"value"`
	Kind        Kind          `json:"kind"`
	Cores       int           `json:"cores"`
	Model       string        `json:"model"`
	Platform    string        `json:"platform,omitempty"`
	Method      string        `json:"method"`
	LoadAverage *LoadAverages `json:"loadAverage,omitempty"`
}

// MemorySample reports physical memory usage.
type MemorySample struct {
	Success        bool    `json:"success"`
	TotalBytes     uint64  `json:"totalBytes"`
	UsedBytes      uint64  `json:"usedBytes"`
	AvailableBytes uint64  `json:"availableBytes"`
	PercentageUsed Percent `json:"percentageUsed"`
	Error          string  `json:"error,omitempty"`
}

// DiskSample reports usage of the filesystem holding the probed path.
// Sizes are passed through in df's human-readable form.
type DiskSample struct {
	Success      bool   `json:"success"`
	Total        string `json:"total,omitempty"`
	Used         string `json:"used,omitempty"`
	Available    string `json:"available,omitempty"`
	UsagePercent string `json:"usagePercent,omitempty"`
	Mount        string `json:"mount,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Snapshot is the combined host report served on /system.
type Snapshot struct {
	Success   bool         `json:"success"`
	Timestamp time.Time    `json:"timestamp"`
	RAM       MemorySample `json:"ram"`
	Disk      DiskSample   `json:"disk"`
	CPU       CPUSample    `json:"cpu"`
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
