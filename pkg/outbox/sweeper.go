package outbox

import (
	"context"
	"time"

	"github.com/Muscledia/gamification-outbox/pkg/core/logger"
	"go.uber.org/zap"
)

// sweeper deletes PUBLISHED records older than the retention window. It only
// ever touches confirmed records; pending, failed and dead-lettered records
// are kept indefinitely.
type sweeper struct {
	store Store
	conf  *Config
}

func newSweeper(store Store, conf *Config) *sweeper {
	return &sweeper{store: store, conf: conf}
}

func (s *sweeper) Run(ctx context.Context) error {
	if !s.conf.IsEnabled() {
		return nil
	}
	return runEvery(ctx, s.conf.SweepInterval, s.sweep)
}

func (s *sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.conf.Retention)

	deleted, err := s.store.PurgePublishedBefore(ctx, cutoff)
	if err != nil {
		logger.Get(ctx).Error("retention sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Get(ctx).Info("swept published outbox records",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
}
