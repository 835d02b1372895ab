package probe

import "github.com/oleksiiilienko/hostprobe/internal/runner"

type commandSpec struct {
	name  string
	cmd   runner.Command
	parse ParseFunc
}

func (c commandSpec) strategy(r runner.Runner) Strategy {
	return &CommandStrategy{Label: c.name, Command: c.cmd, Parse: c.parse, Runner: r}
}

var bsdTop = []commandSpec{
	{name: "bsd-top", cmd: runner.Command{Name: "top", Args: []string{"-b", "-d", "1"}}, parse: ParseTopSummary},
}

// platformCommands maps a kernel family (runtime.GOOS) to the
// instantaneous queries that measure real busy time on it.
var platformCommands = map[string][]commandSpec{
	"linux": {
		{name: "linux-top", cmd: runner.Command{Name: "top", Args: []string{"-bn1"}}, parse: ParseTopSummary},
	},
	"darwin": {
		{name: "darwin-top", cmd: runner.Command{Name: "top", Args: []string{"-l", "1", "-n", "0"}}, parse: ParseTopSummary},
	},
	"freebsd":   bsdTop,
	"openbsd":   bsdTop,
	"netbsd":    bsdTop,
	"dragonfly": bsdTop,
	"windows": {
		{name: "windows-wmic", cmd: runner.Command{Name: "wmic", Args: []string{"cpu", "get", "loadpercentage"}}, parse: ParseWmic},
		{
			name: "windows-cim",
			cmd: runner.Command{Name: "powershell", Args: []string{
				"-NoProfile", "-NonInteractive", "-Command",
				"(Get-CimInstance Win32_Processor | Measure-Object -Property LoadPercentage -Average).Average",
			}},
			parse: ParseNumber,
		},
	},
}

// genericCommands are tried on every platform after the load estimate.
var genericCommands = []commandSpec{
	{name: "vmstat", cmd: runner.Command{Name: "vmstat", Args: []string{"1", "2"}}, parse: ParseVmstat},
	{name: "generic-top", cmd: runner.Command{Name: "top", Args: []string{"-n", "1"}, TTY: true}, parse: ParseTopSummary},
	{name: "mpstat", cmd: runner.Command{Name: "mpstat", Args: []string{"1", "1"}}, parse: ParseMpstat},
}

// Plan returns the ordered strategy chain for platform: its specific
// queries first, then the load-average estimate, then the generic
// utilities. Unknown platforms get only the platform-agnostic part.
func Plan(platform string, r runner.Runner, h Host) []Strategy {
	specific := platformCommands[platform]
	plan := make([]Strategy, 0, len(specific)+1+len(genericCommands))
	for _, c := range specific {
		plan = append(plan, c.strategy(r))
	}
	plan = append(plan, &LoadStrategy{Host: h})
	for _, c := range genericCommands {
		plan = append(plan, c.strategy(r))
	}
	return plan
}
