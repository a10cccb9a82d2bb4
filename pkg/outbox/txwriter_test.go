package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passthroughTxManager runs the callback without a real session. An error
// from the callback aborts, matching transaction semantics.
type passthroughTxManager struct {
	calls int
}

func (m *passthroughTxManager) WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (any, error)) (any, error) {
	m.calls++
	return fn(ctx)
}

func TestTransactionalWriter(t *testing.T) {
	t.Run("should store events yielded by the callback", func(t *testing.T) {
		store := newMockStore()
		txManager := &passthroughTxManager{}
		writer := newTransactionalWriter(txManager, newTestWriter(store, testConfig()))

		err := writer.PublishWithin(context.Background(), func(ctx context.Context) ([]Event, error) {
			return []Event{
				{Type: EventTypeBadgeEarned, Subject: "user-1"},
				{Type: EventTypeLevelUp, Subject: "user-1"},
			}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, txManager.calls)
		counts, countErr := store.CountByStatus(context.Background())
		require.NoError(t, countErr)
		assert.Equal(t, int64(2), counts[StatusPending])
	})

	t.Run("should abort without storing when the callback fails", func(t *testing.T) {
		store := newMockStore()
		writer := newTransactionalWriter(&passthroughTxManager{}, newTestWriter(store, testConfig()))

		businessErr := errors.New("mutation failed")
		err := writer.PublishWithin(context.Background(), func(ctx context.Context) ([]Event, error) {
			return []Event{{Type: EventTypeBadgeEarned}}, businessErr
		})

		require.ErrorIs(t, err, businessErr)
		counts, countErr := store.CountByStatus(context.Background())
		require.NoError(t, countErr)
		assert.Empty(t, counts)
	})

	t.Run("should surface serialization failure to abort the transaction", func(t *testing.T) {
		store := newMockStore()
		writer := newTransactionalWriter(&passthroughTxManager{}, newTestWriter(store, testConfig()))

		err := writer.PublishWithin(context.Background(), func(ctx context.Context) ([]Event, error) {
			return []Event{{Type: EventTypeBadgeEarned, Body: make(chan int)}}, nil
		})

		var serializationErr *SerializationError
		require.ErrorAs(t, err, &serializationErr)
	})
}
