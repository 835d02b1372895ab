package probe

import (
	"errors"
	"math"
	"testing"
)

const linuxTop = `top - 10:12:01 up 3 days,  2:03,  1 user,  load average: 0.52, 0.58, 0.59
Tasks: 241 total,   1 running, 240 sleeping,   0 stopped,   0 zombie
%Cpu(s):  5.9 us,  2.0 sy,  0.0 ni, 91.2 id,  0.7 wa,  0.0 hi,  0.2 si,  0.0 st
MiB Mem :  15928.3 total,   2120.4 free,   6213.9 used,   7594.0 buff/cache
MiB Swap:   2048.0 total,   2048.0 free,      0.0 used.   9014.1 avail Mem

    PID USER      PR  NI    VIRT    RES    SHR S  %CPU  %MEM     TIME+ COMMAND
      1 root      20   0  167404  12876   8360 S   0.0   0.1   0:04.12 systemd
`

const darwinTop = `Processes: 512 total, 2 running, 510 sleeping, 2301 threads
2026/10/18 10:12:01
Load Avg: 1.93, 1.94, 1.90
CPU usage: 5.26% user, 10.52% sys, 84.21% idle
SharedLibs: 420M resident, 80M data, 40M linkedit.
PhysMem: 15G used (2100M wired), 900M unused.
`

const freebsdTop = `last pid: 12345;  load averages:  0.10,  0.12,  0.09  up 10+01:02:03
35 processes:  1 running, 34 sleeping
CPU:  0.4% user,  0.0% nice,  0.2% system,  0.0% interrupt, 99.4% idle
Mem: 20M Active, 500M Inact, 1G Wired, 6G Free
`

const linuxVmstat = `procs -----------memory---------- ---swap-- -----io---- -system-- ------cpu-----
 r  b   swpd   free   buff  cache   si   so    bi    bo   in   cs us sy id wa st
 1  0      0 2171372 301232 7473040    0    0     5    23  110  212  4  1 95  0  0
 0  0      0 2170000 301232 7473100    0    0     0     0  912 1630 12  6 82  0  0
`

const linuxMpstat = `Linux 6.1.0 (build01) 	10/18/26 	_x86_64_	(8 CPU)

10:12:01 AM  CPU    %usr   %nice    %sys %iowait    %irq   %soft  %steal  %guest  %gnice   %idle
10:12:02 AM  all    2.01    0.00    1.00    0.00    0.00    0.25    0.00    0.00    0.00   96.74
Average:     all    2.51    0.00    1.00    0.00    0.00    0.25    0.00    0.00    0.00   96.24
`

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseTopSummary(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want float64
	}{
		{"procps", linuxTop, 8.8},
		{"old procps", "Cpu(s):  2.3%us,  0.7%sy,  0.0%ni, 96.8%id,  0.2%wa\n", 3.2},
		{"busybox", "Mem: 1000K used\nCPU:   0% usr   0% sys   0% nic 100% idle   0% io\n", 0},
		{"darwin", darwinTop, 15.79},
		{"freebsd", freebsdTop, 0.6},
		{"solaris", "CPU states: 98.2% idle,  0.9% user,  0.9% kernel\n", 1.8},
		{"busy fields only", "CPU usage: 12.5% user, 7.5% sys\n", 20},
		{"ansi escapes", "\x1b[H\x1b[2J%Cpu(s):\x1b[1m 10.0 \x1b[0mus, 90.0 id\n", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTopSummary(tt.out)
			if err != nil {
				t.Fatalf("ParseTopSummary: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ParseTopSummary = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTopSummaryRejectsGarbage(t *testing.T) {
	for _, out := range []string{"", "n/a", "PID USER %CPU %MEM\n1 root 0.0 0.1\n", "CPU: unavailable\n"} {
		if _, err := ParseTopSummary(out); !errors.Is(err, ErrParse) {
			t.Errorf("ParseTopSummary(%q) err = %v, want ErrParse", out, err)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		out     string
		want    float64
		wantErr bool
	}{
		{"23.4", 23.4, false},
		{"  23.4\r\n", 23.4, false},
		{"17%", 17, false},
		{"n/a", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.out)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNumber(%q) err = %v, wantErr %t", tt.out, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrParse) {
			t.Errorf("ParseNumber(%q) err = %v, want ErrParse", tt.out, err)
		}
		if !near(got, tt.want) {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.out, got, tt.want)
		}
	}
}

func TestParseVmstat(t *testing.T) {
	got, err := ParseVmstat(linuxVmstat)
	if err != nil {
		t.Fatalf("ParseVmstat: %v", err)
	}
	if !near(got, 18) {
		t.Errorf("ParseVmstat = %v, want 18", got)
	}
}

func TestParseVmstatExtraColumn(t *testing.T) {
	out := ` r  b   swpd   free   buff  cache   si   so    bi    bo   in   cs us sy id wa st gu
 0  0      0 2170000 301232 7473100    0    0     0     0  912 1630 12  6 70  0  0  0
`
	got, err := ParseVmstat(out)
	if err != nil {
		t.Fatalf("ParseVmstat: %v", err)
	}
	if !near(got, 30) {
		t.Errorf("ParseVmstat = %v, want 30", got)
	}
}

func TestParseMpstat(t *testing.T) {
	got, err := ParseMpstat(linuxMpstat)
	if err != nil {
		t.Fatalf("ParseMpstat: %v", err)
	}
	if math.Abs(got-3.76) > 1e-9 {
		t.Errorf("ParseMpstat = %v, want 3.76", got)
	}
}

func TestParseColumnErrors(t *testing.T) {
	tests := []struct {
		name  string
		parse ParseFunc
		out   string
	}{
		{"vmstat without header", ParseVmstat, "1 2 3\n"},
		{"vmstat header only", ParseVmstat, " r  b us sy id wa\n"},
		{"mpstat without idle", ParseMpstat, "Linux 6.1.0\n\n10:12:01 CPU %usr\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.parse(tt.out); !errors.Is(err, ErrParse) {
				t.Errorf("err = %v, want ErrParse", err)
			}
		})
	}
}

func TestParseWmic(t *testing.T) {
	got, err := ParseWmic("LoadPercentage  \r\n12  \r\n18  \r\n\r\n")
	if err != nil {
		t.Fatalf("ParseWmic: %v", err)
	}
	if !near(got, 15) {
		t.Errorf("ParseWmic = %v, want 15", got)
	}

	if _, err := ParseWmic("LoadPercentage\r\n\r\n"); !errors.Is(err, ErrParse) {
		t.Errorf("ParseWmic(header only) err = %v, want ErrParse", err)
	}
}

func TestParseDF(t *testing.T) {
	got, err := ParseDF("Filesystem      Size  Used Avail Use% Mounted on\n/dev/sda1 100G 40G 55G 42% /")
	if err != nil {
		t.Fatalf("ParseDF: %v", err)
	}
	want := DiskSample{Success: true, Total: "100G", Used: "40G", Available: "55G", UsagePercent: "42", Mount: "/"}
	if got != want {
		t.Errorf("ParseDF = %+v, want %+v", got, want)
	}
}

func TestParseDFPlatforms(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want DiskSample
	}{
		{
			name: "darwin",
			out: "Filesystem     Size   Used  Avail Capacity Mounted on\n" +
				"/dev/disk3s5  460Gi   10Gi  200Gi     5%    /System/Volumes/Data\n",
			want: DiskSample{Success: true, Total: "460Gi", Used: "10Gi", Available: "200Gi", UsagePercent: "5", Mount: "/System/Volumes/Data"},
		},
		{
			name: "freebsd",
			out: "Filesystem         Size    Used   Avail Capacity  Mounted on\n" +
				"zroot/ROOT/default  410G     12G    398G     3%    /\n",
			want: DiskSample{Success: true, Total: "410G", Used: "12G", Available: "398G", UsagePercent: "3", Mount: "/"},
		},
		{
			name: "long device and mount with spaces",
			out: "Filesystem                                   Size  Used Avail Capacity Mounted on\n" +
				"/dev/mapper/vg0-very--long--logical--volume   20G  5.0G   14G      27% /srv/data dir\n",
			want: DiskSample{Success: true, Total: "20G", Used: "5.0G", Available: "14G", UsagePercent: "27", Mount: "/srv/data dir"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDF(tt.out)
			if err != nil {
				t.Fatalf("ParseDF: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDF = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDFErrors(t *testing.T) {
	for _, out := range []string{
		"",
		"Filesystem      Size  Used Avail Use% Mounted on\n",
		"Filesystem      Size  Used Avail Use% Mounted on\n/dev/sda1 100G 40G\n",
	} {
		if _, err := ParseDF(out); !errors.Is(err, ErrDiskUsage) {
			t.Errorf("ParseDF(%q) err = %v, want ErrDiskUsage", out, err)
		}
	}
}
