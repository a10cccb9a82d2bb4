package outbox

import (
	"context"
	"time"

	"github.com/Muscledia/gamification-outbox/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Index names.
const (
	idxStatusNextRetryUpdated = "outbox_status_nextRetryAt_updatedAt"
	idxPublishedAt            = "outbox_publishedAt"
	idxEventID                = "outbox_eventId"
)

// EnsureIndexes creates required indexes for the outbox collection.
// Idempotent - safe to call multiple times.
func EnsureIndexes(ctx context.Context, m mongo.Mongo) error {
	coll := m.GetCollection(collectionName)

	indexes := []mongodriver.IndexModel{
		{
			// Serves both claim filters.
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "nextRetryAt", Value: 1},
				{Key: "updatedAt", Value: 1},
			},
			Options: options.Index().SetName(idxStatusNextRetryUpdated),
		},
		{
			// Serves the retention sweeper.
			Keys:    bson.D{{Key: "publishedAt", Value: 1}},
			Options: options.Index().SetName(idxPublishedAt),
		},
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}},
			Options: options.Index().SetName(idxEventID),
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
