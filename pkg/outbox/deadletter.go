package outbox

import (
	"context"
	"fmt"

	"github.com/Muscledia/gamification-outbox/pkg/core/logger"
	"go.uber.org/zap"
)

const defaultDeadLetterLimit = 100

// DeadLetterManager is the operator surface over DEAD_LETTER records:
// inspection and manual re-drive after the underlying cause is fixed.
type DeadLetterManager interface {
	// ListDeadLetters returns up to limit dead-lettered records, newest
	// first. A non-positive limit applies the default of 100.
	ListDeadLetters(ctx context.Context, limit int64) ([]OutboxRecord, error)

	// Retry resets a dead-lettered record to PENDING with a fresh attempt
	// budget so the fast cycle picks it up again. Returns ErrRecordNotFound
	// when the id does not exist or the record is not dead-lettered.
	Retry(ctx context.Context, id string) error
}

type deadLetterManager struct {
	store Store
}

func newDeadLetterManager(store Store) DeadLetterManager {
	return &deadLetterManager{store: store}
}

func (m *deadLetterManager) ListDeadLetters(ctx context.Context, limit int64) ([]OutboxRecord, error) {
	if limit <= 0 {
		limit = defaultDeadLetterLimit
	}

	records, err := m.store.ListDeadLetters(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list dead-lettered records: %w", err)
	}
	return records, nil
}

func (m *deadLetterManager) Retry(ctx context.Context, id string) error {
	if err := m.store.ResetForRetry(ctx, id); err != nil {
		return err
	}
	logger.Get(ctx).Info("dead-lettered record reset for retry", zap.String("recordId", id))
	return nil
}
