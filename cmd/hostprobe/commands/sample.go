package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/oleksiiilienko/hostprobe/internal/probe"
	"github.com/oleksiiilienko/hostprobe/internal/runner"
)

func newSampleCmd(opts *options) *cobra.Command {
	var (
		timeout time.Duration
		cpuOnly bool
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print one utilization snapshot as JSON and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := buildLogger(cfg, cmd.ErrOrStderr())

			sys := probe.NewSystem(
				runner.New(cfg.CommandTimeout),
				probe.SystemHost{},
				cfg.DiskPath,
				probe.NewSlogObserver(logger),
			)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if cpuOnly {
				return printJSON(cmd.OutOrStdout(), sys.CPU.Sample(ctx))
			}
			return printJSON(cmd.OutOrStdout(), sys.Snapshot(ctx))
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up on outstanding strategies after this long")
	cmd.Flags().BoolVar(&cpuOnly, "cpu", false, "Print only the CPU sample")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
