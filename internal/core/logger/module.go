package logger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewZapLoggingModule provides the configured *zap.Logger and routes fx's
// own events through it.
func NewZapLoggingModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newConfig,
			provideLogger,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

func provideLogger(lc fx.Lifecycle, conf Config) (*zap.Logger, error) {
	logger, err := newLogger(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stderr fails with EINVAL on Linux; nothing to flush there.
			var pathErr *os.PathError
			if err := logger.Sync(); err != nil && !errors.As(err, &pathErr) {
				return err
			}
			return nil
		},
	})

	return logger, nil
}
