package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/oleksiiilienko/hostprobe/internal/config"
	"github.com/oleksiiilienko/hostprobe/internal/probe"
	"github.com/oleksiiilienko/hostprobe/internal/runner"
	"github.com/oleksiiilienko/hostprobe/internal/server"
)

func newServeCmd(opts *options, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve /system, /system/stream and /health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, version)
		},
	}
}

func runServe(cmd *cobra.Command, opts *options, version string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := buildLogger(cfg, os.Stderr)

	sys := probe.NewSystem(
		runner.New(cfg.CommandTimeout),
		probe.SystemHost{},
		cfg.DiskPath,
		probe.NewSlogObserver(logger),
	)
	return serve(cmd.Context(), cfg, server.New(sys, logger, cfg.StreamInterval), logger, version)
}

// serve runs the HTTP server and, when configured, the gRPC health
// service until ctx is cancelled or either fails.
func serve(ctx context.Context, cfg *config.Config, srv *server.Server, logger *slog.Logger, version string) error {
	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr(), err)
	}
	logger.Info("hostprobe listening", "version", version, "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln, cfg.ShutdownTimeout)
	})

	if addr := cfg.GRPCListenAddr(); addr != "" {
		gln, err := net.Listen("tcp", addr)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		logger.Info("grpc health listening", "addr", gln.Addr().String())
		g.Go(func() error {
			return server.NewHealthServer().Serve(gctx, gln)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("hostprobe stopped")
	return nil
}
