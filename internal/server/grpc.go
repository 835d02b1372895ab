package server

import (
	"context"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is reported alongside the overall ("") status.
const HealthServiceName = "hostprobe"

const stopGrace = 3 * time.Second

// HealthServer serves grpc.health.v1.Health for orchestrators that probe
// over gRPC instead of HTTP.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
}

func NewHealthServer() *HealthServer {
	srv := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	return &HealthServer{srv: srv, health: h}
}

// Serve reports SERVING and blocks until ctx is cancelled, at which point
// every service flips to NOT_SERVING before the server stops.
func (h *HealthServer) Serve(ctx context.Context, ln net.Listener) error {
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.health.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	h.health.Shutdown()

	// Watch streams never end on their own; cut them off after a grace period.
	stopped := make(chan struct{})
	go func() {
		h.srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(stopGrace):
		h.srv.Stop()
	}
	return nil
}
