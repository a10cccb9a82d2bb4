package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Muscledia/gamification-outbox/pkg/persistence"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

type mongoTxManager struct {
	mongo Admin
	log   *zap.Logger
}

func newTxManager(mongo Admin, log *zap.Logger) persistence.TxManager {
	return &mongoTxManager{
		mongo: mongo,
		log:   log,
	}
}

// isTransientError checks if the error is a transient MongoDB error that can be retried
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongodriver.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return cmdErr.HasErrorLabel("TransientTransactionError")
}

func (t *mongoTxManager) WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (any, error)) (any, error) {
	const maxRetries = 3
	var result any
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			t.log.Warn("retrying transaction", zap.Int("attempt", attempt))
		}

		var session *mongodriver.Session
		session, err = t.mongo.StartSession(ctx)
		if err != nil {
			if isTransientError(err) && attempt < maxRetries {
				continue
			}
			return nil, fmt.Errorf("failed to start session: %w", err)
		}

		result, err = session.WithTransaction(ctx, fn)
		session.EndSession(ctx)

		if err == nil {
			t.log.Debug("transaction committed", zap.Int("attempts", attempt))
			return result, nil
		}

		if isTransientError(err) && attempt < maxRetries {
			t.log.Warn("transient transaction error, will retry",
				zap.Error(err),
				zap.Int("attempt", attempt))
			continue
		}

		break
	}

	return result, fmt.Errorf("transaction failed: %w", err)
}
