package persistence

import "context"

// TxManager runs a function within a storage transaction. The callback's
// context must be used for every operation that should join the transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (any, error)) (any, error)
}
