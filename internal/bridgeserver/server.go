// Package bridgeserver exposes a bridge.Host to other processes over a
// WebSocket, so a TUI or script on another machine can drive the same
// storage. It can also serve the TUI itself over a PTY.
package bridgeserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"webide-cli/internal/bridge"
	"webide-cli/internal/logging"
	"webide-cli/internal/metrics"

	"go.uber.org/zap"
)

type ServerConfig struct {
	Addr string
	Host bridge.Host
	// TTY enables GET /tty, which runs the TUI in a PTY per connection.
	TTY bool
	// TTYCommand is the program run per /tty connection. Empty means this
	// executable, which starts the TUI.
	TTYCommand string
	// TTYArgs are passed to the subprocess (e.g. --storage).
	TTYArgs []string
}

type Server struct {
	cfg ServerConfig
	log *zap.Logger
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("bridgeserver: missing addr")
	}
	if cfg.Host == nil {
		return nil, bridge.ErrHostMissing
	}
	return &Server{cfg: cfg, log: logging.Named("bridgeserver")}, nil
}

func (s *Server) Addr() string {
	return strings.TrimSpace(s.cfg.Addr)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.Handle("GET /metrics", metrics.Handler())
	if s.cfg.TTY {
		mux.HandleFunc("GET /tty", s.handleTTY)
	}
	return mux
}

// Serve accepts connections on ln until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("shutdown", zap.Error(err))
		}
		return nil
	}
}
