package probe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// percentToken matches "91.2 id", "96.8%id" or "84.21% idle".
var percentToken = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%?\s*([A-Za-z]+)`)

var summaryMarkers = []string{"cpu(s)", "cpu usage:", "cpu states:", "cpu:"}

var (
	idleLabels = map[string]bool{"id": true, "idle": true}
	busyLabels = map[string]bool{
		"us": true, "usr": true, "user": true,
		"sy": true, "sys": true, "system": true, "kernel": true,
		"ni": true, "nic": true, "nice": true,
	}
)

// ParseNumber accepts output that is a single number, optionally
// followed by '%'.
func ParseNumber(out string) (float64, error) {
	s := strings.TrimSuffix(strings.TrimSpace(out), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrParse, truncate(out))
	}
	return v, nil
}

// ParseTopSummary reads the aggregate CPU line printed by top
// implementations and returns busy percent (100 - idle). Handled forms:
//
//	%Cpu(s):  5.9 us,  2.0 sy,  0.0 ni, 91.2 id,  0.7 wa   (procps)
//	Cpu(s):  2.3%us,  0.7%sy,  0.0%ni, 96.8%id             (old procps)
//	CPU:   0% usr   0% sys   0% nic 100% idle              (busybox)
//	CPU usage: 5.26% user, 10.52% sys, 84.21% idle         (darwin)
//	CPU:  0.4% user,  0.0% nice,  0.2% system, 99.4% idle  (bsd)
//
// When no idle field is present the busy fields are summed.
func ParseTopSummary(out string) (float64, error) {
	for _, line := range strings.Split(ansi.Strip(out), "\n") {
		lower := strings.ToLower(line)
		rest := ""
		for _, marker := range summaryMarkers {
			if i := strings.Index(lower, marker); i >= 0 {
				rest = line[i+len(marker):]
				break
			}
		}
		if rest == "" {
			continue
		}

		var busy float64
		var sawBusy bool
		for _, m := range percentToken.FindAllStringSubmatch(rest, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			label := strings.ToLower(m[2])
			if idleLabels[label] {
				return 100 - v, nil
			}
			if busyLabels[label] {
				busy += v
				sawBusy = true
			}
		}
		if sawBusy {
			return busy, nil
		}
	}
	return 0, fmt.Errorf("%w: no cpu summary line in %q", ErrParse, truncate(out))
}

// ParseVmstat returns 100 - the "id" column of vmstat's last row.
// The first row averages since boot, so callers ask for two samples.
func ParseVmstat(out string) (float64, error) {
	idle, err := columnFromLastRow(out, "id", nil)
	if err != nil {
		return 0, err
	}
	return 100 - idle, nil
}

// ParseMpstat returns 100 - %idle, preferring the "Average:" row.
func ParseMpstat(out string) (float64, error) {
	idle, err := columnFromLastRow(out, "%idle", func(fields []string) bool {
		return fields[0] == "Average:"
	})
	if err != nil {
		return 0, err
	}
	return 100 - idle, nil
}

// columnFromLastRow locates column in the last header line containing it
// and reads the same column from the last numeric row below it, or from
// the first row matching prefer. Columns are counted from the right so
// timestamp prefixes ("12:00:01 AM") do not shift them.
func columnFromLastRow(out, column string, prefer func([]string) bool) (float64, error) {
	lines := strings.Split(out, "\n")
	headerAt, fromEnd := -1, 0
	for i, line := range lines {
		fields := strings.Fields(line)
		for j, f := range fields {
			if f == column {
				headerAt, fromEnd = i, len(fields)-1-j
			}
		}
	}
	if headerAt < 0 {
		return 0, fmt.Errorf("%w: no %q column in %q", ErrParse, column, truncate(out))
	}

	var row []string
	for _, line := range lines[headerAt+1:] {
		fields := strings.Fields(line)
		if len(fields) <= fromEnd {
			continue
		}
		if _, err := strconv.ParseFloat(fields[len(fields)-1-fromEnd], 64); err != nil {
			continue
		}
		if prefer != nil && prefer(fields) {
			row = fields
			break
		}
		row = fields
	}
	if row == nil {
		return 0, fmt.Errorf("%w: no data row under %q", ErrParse, column)
	}
	return strconv.ParseFloat(row[len(row)-1-fromEnd], 64)
}

// ParseWmic averages the LoadPercentage rows printed by
// `wmic cpu get loadpercentage` (one per socket).
func ParseWmic(out string) (float64, error) {
	var sum float64
	var n int
	for _, line := range strings.Split(out, "\n") {
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: no LoadPercentage rows in %q", ErrParse, truncate(out))
	}
	return sum / float64(n), nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
