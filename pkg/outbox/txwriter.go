package outbox

import (
	"context"

	"github.com/Muscledia/gamification-outbox/pkg/persistence"
)

// TransactionalWriter co-commits outbox records with the business mutation
// that raised them. This is the entry point services should use: either the
// mutation and its events are all durable, or none of them are.
type TransactionalWriter interface {
	// PublishWithin runs fn inside a storage transaction and stores every
	// event it returns in that same transaction. The callback must perform
	// its own writes through the context it receives.
	PublishWithin(ctx context.Context, fn func(ctx context.Context) ([]Event, error)) error
}

type transactionalWriter struct {
	txManager persistence.TxManager
	writer    Writer
}

func newTransactionalWriter(txManager persistence.TxManager, writer Writer) TransactionalWriter {
	return &transactionalWriter{
		txManager: txManager,
		writer:    writer,
	}
}

func (w *transactionalWriter) PublishWithin(ctx context.Context, fn func(ctx context.Context) ([]Event, error)) error {
	_, err := w.txManager.WithTransaction(ctx, func(sessCtx context.Context) (any, error) {
		events, err := fn(sessCtx)
		if err != nil {
			return nil, err
		}

		for _, event := range events {
			if _, err := w.writer.StoreForPublishing(sessCtx, event); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}
