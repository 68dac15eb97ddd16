// internal/server/server.go
//
// HTTP server construction and lifecycle.
//
// Notes
// -----
// Defaults guard against slow clients: a 5 s header deadline, 10 s to
// read the body, 15 s to write a response, and 60 s keep-alive idle.
// Non-zero values from the http config section override them.  net/http's
// own error log is routed through zap so TLS and hijack noise lands in
// the JSON log.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/widgets/internal/config"
)

const (
	defaultReadHeader = 5 * time.Second
	defaultRead       = 10 * time.Second
	defaultWrite      = 15 * time.Second
	defaultIdle       = 60 * time.Second
	defaultShutdown   = 10 * time.Second
)

// Server wraps http.Server with config-driven timeouts.
type Server struct {
	*http.Server
	shutdown time.Duration
	log      *zap.Logger
}

// New builds a Server for cfg.  A nil log discards output.
func New(cfg config.HTTP, handler http.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	errLog, _ := zap.NewStdLogAt(log.Named("http"), zap.WarnLevel)

	return &Server{
		Server: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: defaultReadHeader,
			ReadTimeout:       pick(cfg.ReadTimeout, defaultRead),
			WriteTimeout:      pick(cfg.WriteTimeout, defaultWrite),
			IdleTimeout:       pick(cfg.IdleTimeout, defaultIdle),
			ErrorLog:          errLog,
		},
		shutdown: pick(cfg.ShutdownTimeout, defaultShutdown),
		log:      log,
	}
}

// Run listens on Addr and serves until ctx is done, then shuts down
// gracefully.  It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.Stringer("addr", ln.Addr()))
		errc <- s.Server.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", zap.Duration("grace", s.shutdown))
	shutCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := s.Shutdown(shutCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func pick(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
