package outbox

import (
	"context"

	"github.com/Muscledia/gamification-outbox/pkg/core/worker"
	"github.com/Muscledia/gamification-outbox/pkg/persistence/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewOutboxModule wires the full delivery pipeline: writer, store, publisher,
// both processor cycles, the retention sweeper, the dead-letter manager and
// the statistics reporter.
func NewOutboxModule() fx.Option {
	return fx.Module("outbox",
		fx.Provide(
			newConfig,
			newStore,
			newSerializer,
			newTracePropagator,
			newWriter,
			newTransactionalWriter,
			newKafkaPublisher,
			newProcessor,
			newFastCycle,
			newSlowCycle,
			newSweeper,
			newDeadLetterManager,
			newReporter,
			worker.Register[*fastCycle]("outbox-fast-cycle", worker.WithReady()),
			worker.Register[*slowCycle]("outbox-slow-cycle", worker.WithReady()),
			worker.Register[*sweeper]("outbox-retention-sweeper", worker.WithReady()),
		),
		fx.Invoke(ensureIndexes),
		fx.Invoke(registerMetrics),
	)
}

func ensureIndexes(lc fx.Lifecycle, log *zap.Logger, m mongo.Mongo, conf *Config) {
	if !conf.IsEnabled() {
		return
	}
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
