package outbox

import (
	"context"

	"github.com/Sokol111/ecommerce-store-sync/internal/persistence/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewOutboxModule provides the outbox store, writer, publisher and the
// background relay for dependency injection.
func NewOutboxModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newConfig,
			NewStore,
			NewWriter,
			NewPublisherMetrics,
			NewPublisher,
			newRelayWorker,
		),
		fx.Invoke(ensureIndexes),
		fx.Invoke(registerRelayWorker),
	)
}

func ensureIndexes(lc fx.Lifecycle, log *zap.Logger, m mongo.Mongo) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := EnsureIndexes(ctx, m); err != nil {
				return err
			}
			log.Info("outbox indexes ensured")
			return nil
		},
	})
}

func registerRelayWorker(lc fx.Lifecycle, w *relayWorker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			w.Stop()
			return nil
		},
	})
}
