package server

import (
	"context"
	"net/http"

	"github.com/Sokol111/ecommerce-store-sync/internal/http/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewHTTPServerModule provides HTTP server components for dependency injection.
func NewHTTPServerModule() fx.Option {
	return fx.Options(
		fx.Provide(newConfig),
		fx.Provide(newServeMux),
		fx.Invoke(startHTTPServer),
	)
}

func newServeMux() (*http.ServeMux, http.Handler) {
	mux := http.NewServeMux()
	return mux, middleware.Correlation(mux)
}

func startHTTPServer(lc fx.Lifecycle, log *zap.Logger, conf Config, handler http.Handler, shutdowner fx.Shutdowner) {
	var srv Server
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Create server in OnStart - all routes are registered by now
			srv = newServer(log, conf, handler)

			go func() {
				if err := srv.Serve(); err != nil {
					log.Error("HTTP server failed, shutting down application", zap.Error(err))
					_ = shutdowner.Shutdown() //nolint:errcheck // shutdown is best-effort
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if srv != nil {
				return srv.Shutdown(ctx)
			}
			return nil
		},
	})
}
