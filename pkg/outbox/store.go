package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Muscledia/gamification-outbox/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "outbox"

// Store is the durable outbox collection. Claim operations are atomic
// conditional updates: they are the only cross-instance coordination
// mechanism in the pipeline, so a record can never be claimed twice.
type Store interface {
	Insert(ctx context.Context, record *OutboxRecord) error

	// ClaimPending atomically claims one PENDING record, or one PROCESSING
	// record abandoned longer than the staleness threshold.
	// Returns ErrNoEligibleRecords when nothing matched.
	ClaimPending(ctx context.Context) (*OutboxRecord, error)

	// ClaimRetryable atomically claims one FAILED record whose retry window
	// has opened and whose attempt budget is not exhausted.
	// Returns ErrNoEligibleRecords when nothing matched.
	ClaimRetryable(ctx context.Context) (*OutboxRecord, error)

	MarkPublished(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string, nextRetryAt time.Time) error
	MarkDeadLetter(ctx context.Context, id string, errMsg string) error

	ListDeadLetters(ctx context.Context, limit int64) ([]OutboxRecord, error)

	// ResetForRetry moves a DEAD_LETTER record back to PENDING with a clean
	// attempt history. Returns ErrRecordNotFound unless the record exists
	// and is currently dead-lettered.
	ResetForRetry(ctx context.Context, id string) error

	// PurgePublishedBefore deletes PUBLISHED records confirmed before the
	// cutoff and reports how many were removed. The status filter is part
	// of the query, so no unconfirmed record can ever be deleted.
	PurgePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

type mongoStore struct {
	coll       mongo.Collection
	staleAfter time.Duration
}

func newStore(m mongo.Mongo, cfg *Config) Store {
	return &mongoStore{
		coll:       m.GetCollection(collectionName),
		staleAfter: cfg.StaleAfter,
	}
}

func (s *mongoStore) Insert(ctx context.Context, record *OutboxRecord) error {
	if _, err := s.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert outbox record: %w", err)
	}
	return nil
}

func (s *mongoStore) ClaimPending(ctx context.Context) (*OutboxRecord, error) {
	now := time.Now().UTC()

	filter := bson.M{"$or": []bson.M{
		{"status": StatusPending},
		// Stale PROCESSING records belong to crashed instances and are
		// claimable again.
		{"status": StatusProcessing, "updatedAt": bson.M{"$lt": now.Add(-s.staleAfter)}},
	}}

	return s.claim(ctx, filter, now)
}

func (s *mongoStore) ClaimRetryable(ctx context.Context) (*OutboxRecord, error) {
	now := time.Now().UTC()

	filter := bson.M{
		"status":      StatusFailed,
		"nextRetryAt": bson.M{"$lte": now},
		"$expr":       bson.M{"$lt": bson.A{"$attemptCount", "$maxAttempts"}},
	}

	return s.claim(ctx, filter, now)
}

// claim performs the atomic PENDING/FAILED -> PROCESSING transition. Losing
// the race to another instance simply means no document matches.
func (s *mongoStore) claim(ctx context.Context, filter bson.M, now time.Time) (*OutboxRecord, error) {
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.After)

	update := bson.M{"$set": bson.M{
		"status":    StatusProcessing,
		"updatedAt": now,
	}}

	var record OutboxRecord
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrNoEligibleRecords
		}
		return nil, fmt.Errorf("failed to claim outbox record: %w", err)
	}

	return &record, nil
}

func (s *mongoStore) MarkPublished(ctx context.Context, id string) error {
	now := time.Now().UTC()

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusProcessing},
		bson.M{
			"$set": bson.M{
				"status":      StatusPublished,
				"publishedAt": now,
				"updatedAt":   now,
			},
			"$unset": bson.M{
				"errorMessage": "",
				"nextRetryAt":  "",
			},
		})
	if err != nil {
		return fmt.Errorf("failed to mark outbox record %s published: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *mongoStore) MarkFailed(ctx context.Context, id string, errMsg string, nextRetryAt time.Time) error {
	now := time.Now().UTC()

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusProcessing},
		bson.M{
			"$set": bson.M{
				"status":       StatusFailed,
				"errorMessage": errMsg,
				"nextRetryAt":  nextRetryAt,
				"updatedAt":    now,
			},
			"$inc": bson.M{"attemptCount": 1},
		})
	if err != nil {
		return fmt.Errorf("failed to mark outbox record %s failed: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *mongoStore) MarkDeadLetter(ctx context.Context, id string, errMsg string) error {
	now := time.Now().UTC()

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusProcessing},
		bson.M{
			"$set": bson.M{
				"status":       StatusDeadLetter,
				"errorMessage": errMsg,
				"updatedAt":    now,
			},
			"$unset": bson.M{"nextRetryAt": ""},
			"$inc":   bson.M{"attemptCount": 1},
		})
	if err != nil {
		return fmt.Errorf("failed to dead-letter outbox record %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *mongoStore) ListDeadLetters(ctx context.Context, limit int64) ([]OutboxRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, bson.M{"status": StatusDeadLetter}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list dead letters: %w", err)
	}

	var records []OutboxRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode dead letters: %w", err)
	}
	return records, nil
}

func (s *mongoStore) ResetForRetry(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusDeadLetter},
		bson.M{
			"$set": bson.M{
				"status":       StatusPending,
				"attemptCount": 0,
				"updatedAt":    time.Now().UTC(),
			},
			"$unset": bson.M{
				"errorMessage": "",
				"nextRetryAt":  "",
			},
		})
	if err != nil {
		return fmt.Errorf("failed to reset outbox record %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *mongoStore) PurgePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{
		"status":      StatusPublished,
		"publishedAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge published records: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *mongoStore) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	pipeline := mongodriver.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate outbox counts: %w", err)
	}

	var rows []struct {
		Status Status `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode outbox counts: %w", err)
	}

	counts := make(map[Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
