package mongo

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewMongoModule provides MongoDB components for dependency injection.
func NewMongoModule() fx.Option {
	return fx.Provide(
		newConfig,
		provideMongo,
		newTxManager,
	)
}

func provideMongo(lc fx.Lifecycle, log *zap.Logger, conf Config) (Mongo, Admin, error) {
	m, err := newMongo(log, conf)
	if err != nil {
		return nil, nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return m.connect(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return m.disconnect(ctx)
		},
	})

	return m, m, nil
}
