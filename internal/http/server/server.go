package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
)

// Server runs the admin HTTP surface. Serve blocks until Shutdown is
// called or the listener fails.
type Server interface {
	Serve() error
	Shutdown(ctx context.Context) error
}

type adminServer struct {
	httpSrv *http.Server
	log     *zap.Logger
}

func newServer(log *zap.Logger, conf Config, handler http.Handler) Server {
	return &adminServer{
		httpSrv: &http.Server{
			Addr:    fmt.Sprintf(":%d", conf.Port),
			Handler: handler,
		},
		log: log.With(zap.String("component", "admin-http")),
	}
}

func (s *adminServer) Serve() error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpSrv.Addr, err)
	}
	s.log.Info("admin http server listening", zap.String("addr", s.httpSrv.Addr))

	if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin http server stopped: %w", err)
	}
	return nil
}

func (s *adminServer) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down admin http server")
	return s.httpSrv.Shutdown(ctx)
}
