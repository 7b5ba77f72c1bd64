package metrics

import (
	"cmp"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ibs-source/rc-bridge/internal/config"
	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultShutdownTimeout   = 5 * time.Second
	defaultReadHeaderTimeout = 3 * time.Second
)

// Server serves the collectors of a registry over HTTP.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	log             *log.Logger
}

// NewServer creates the endpoint for gatherer at cfg.Address and cfg.Path.
func NewServer(cfg *config.MetricsConfig, gatherer prometheus.Gatherer, logger *log.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle(cmp.Or(cfg.Path, "/metrics"), promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &Server{
		server: &http.Server{
			Addr:              cfg.Address,
			Handler:           mux,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
		},
		shutdownTimeout: defaultShutdownTimeout,
		log:             logger,
	}
}

// Run listens and serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("Starting Prometheus metrics server on %s", ln.Addr())
		serveErr <- s.server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("Error shutting down metrics server: %v", err)
	}
	<-serveErr
	s.log.Info("Metrics server shutdown complete")
	return ctx.Err()
}
