// Package server exposes host snapshots over HTTP, a websocket stream and
// an optional gRPC health service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oleksiiilienko/hostprobe/internal/probe"
)

// Snapshotter produces a full host report. *probe.System implements it.
type Snapshotter interface {
	Snapshot(ctx context.Context) probe.Snapshot
}

type Server struct {
	sys            Snapshotter
	logger         *slog.Logger
	streamInterval time.Duration
	upgrader       websocket.Upgrader
	now            func() time.Time
}

func New(sys Snapshotter, logger *slog.Logger, streamInterval time.Duration) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if streamInterval <= 0 {
		streamInterval = 5 * time.Second
	}
	return &Server{
		sys:            sys,
		logger:         logger,
		streamInterval: streamInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now: time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /system", s.handleSystem)
	mux.HandleFunc("GET /system/stream", s.handleStream)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.middleware(mux)
}

// Serve runs the HTTP server on ln until ctx is cancelled, then drains
// in-flight requests for up to shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown incomplete", "error", err)
		_ = srv.Close()
	}
	return nil
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	snap := s.sys.Snapshot(r.Context())
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC(),
	})
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeJSON encodes v before touching the response so an encoding
// failure still yields a clean 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorBody{Error: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
