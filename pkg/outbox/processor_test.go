package outbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func testConfig() *Config {
	return &Config{
		FastInterval:       5 * time.Second,
		SlowInterval:       2 * time.Minute,
		BatchSize:          50,
		MaxAttempts:        3,
		PublishTimeout:     10 * time.Second,
		PublishConcurrency: 4,
		Retention:          7 * 24 * time.Hour,
		SweepInterval:      time.Hour,
		StaleAfter:         10 * time.Minute,
	}
}

func newTestProcessor(store Store, publisher Publisher, conf *Config) *Processor {
	return newProcessor(store, publisher, newTracePropagator(noop.NewTracerProvider()), conf)
}

func pendingRecord(id string, createdAt time.Time) OutboxRecord {
	return OutboxRecord{
		ID:           id,
		EventID:      "event-" + id,
		EventType:    EventTypeBadgeEarned,
		Topic:        "badge-events",
		MessageKey:   "user-1",
		Payload:      []byte(`{"eventId":"event-` + id + `"}`),
		Status:       StatusPending,
		MaxAttempts:  3,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestProcessorFastCycle(t *testing.T) {
	t.Run("should publish pending record and mark it published", func(t *testing.T) {
		store := newMockStore()
		store.add(pendingRecord("r1", time.Now().UTC()))
		publisher := newMockPublisher()
		processor := newTestProcessor(store, publisher, testConfig())

		processor.RunFastCycle(context.Background())

		record := store.get("r1")
		assert.Equal(t, StatusPublished, record.Status)
		require.NotNil(t, record.PublishedAt)
		assert.Equal(t, 1, publisher.callCount())
		assert.Equal(t, []string{"badge-events"}, publisher.topics)
		assert.Equal(t, []string{"user-1"}, publisher.keys)
	})

	t.Run("should drain multiple records oldest first", func(t *testing.T) {
		store := newMockStore()
		base := time.Now().UTC()
		store.add(pendingRecord("r2", base.Add(time.Second)))
		store.add(pendingRecord("r1", base))
		store.add(pendingRecord("r3", base.Add(2*time.Second)))
		publisher := newMockPublisher()

		conf := testConfig()
		conf.PublishConcurrency = 1
		processor := newTestProcessor(store, publisher, conf)

		processor.RunFastCycle(context.Background())

		assert.Equal(t, 3, publisher.callCount())
		for _, id := range []string{"r1", "r2", "r3"} {
			assert.Equal(t, StatusPublished, store.get(id).Status)
		}
	})

	t.Run("should respect batch size", func(t *testing.T) {
		store := newMockStore()
		base := time.Now().UTC()
		for _, id := range []string{"r1", "r2", "r3"} {
			store.add(pendingRecord(id, base))
			base = base.Add(time.Second)
		}
		publisher := newMockPublisher()

		conf := testConfig()
		conf.BatchSize = 2
		processor := newTestProcessor(store, publisher, conf)

		processor.RunFastCycle(context.Background())

		assert.Equal(t, 2, publisher.callCount())
	})

	t.Run("should do nothing when no records are eligible", func(t *testing.T) {
		store := newMockStore()
		publisher := newMockPublisher()
		processor := newTestProcessor(store, publisher, testConfig())

		processor.RunFastCycle(context.Background())

		assert.Equal(t, 0, publisher.callCount())
	})

	t.Run("should schedule retry on transient failure", func(t *testing.T) {
		store := newMockStore()
		store.add(pendingRecord("r1", time.Now().UTC()))
		publisher := newMockPublisher(&TransientPublishError{Topic: "badge-events", Err: errors.New("broker down")})
		processor := newTestProcessor(store, publisher, testConfig())

		before := time.Now().UTC()
		processor.RunFastCycle(context.Background())

		record := store.get("r1")
		assert.Equal(t, StatusFailed, record.Status)
		assert.Equal(t, 1, record.AttemptCount)
		assert.Contains(t, record.ErrorMessage, "broker down")
		require.NotNil(t, record.NextRetryAt)
		// First retry is one backoff unit out.
		assert.WithinDuration(t, before.Add(time.Minute), *record.NextRetryAt, 5*time.Second)
	})

	t.Run("should dead-letter on non-retryable failure regardless of budget", func(t *testing.T) {
		store := newMockStore()
		store.add(pendingRecord("r1", time.Now().UTC()))
		publisher := newMockPublisher(&ValidationError{Reason: "message too large", Err: errors.New("rejected")})
		processor := newTestProcessor(store, publisher, testConfig())

		processor.RunFastCycle(context.Background())

		record := store.get("r1")
		assert.Equal(t, StatusDeadLetter, record.Status)
		assert.Nil(t, record.NextRetryAt)
	})

	t.Run("should dead-letter when retry budget is exhausted", func(t *testing.T) {
		store := newMockStore()
		record := pendingRecord("r1", time.Now().UTC())
		record.AttemptCount = 2
		store.add(record)
		publisher := newMockPublisher(&TransientPublishError{Topic: "badge-events", Err: errors.New("still down")})
		processor := newTestProcessor(store, publisher, testConfig())

		processor.RunFastCycle(context.Background())

		got := store.get("r1")
		assert.Equal(t, StatusDeadLetter, got.Status)
		assert.Equal(t, 3, got.AttemptCount)
	})
}

func TestClaimSingleWinner(t *testing.T) {
	t.Run("should yield exactly one winner for concurrent claims", func(t *testing.T) {
		store := newMockStore()
		store.add(pendingRecord("r1", time.Now().UTC()))

		const claimants = 16
		var wins atomic.Int32
		var losses atomic.Int32
		var wg sync.WaitGroup
		for range claimants {
			wg.Add(1)
			go func() {
				defer wg.Done()
				record, err := store.ClaimPending(context.Background())
				if err == nil {
					assert.Equal(t, "r1", record.ID)
					assert.Equal(t, StatusProcessing, record.Status)
					wins.Add(1)
					return
				}
				assert.ErrorIs(t, err, ErrNoEligibleRecords)
				losses.Add(1)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
		assert.Equal(t, int32(claimants-1), losses.Load())
	})

	t.Run("should not surface a claimed record to the retry claim either", func(t *testing.T) {
		store := newMockStore()
		store.add(pendingRecord("r1", time.Now().UTC()))

		_, err := store.ClaimPending(context.Background())
		require.NoError(t, err)

		_, err = store.ClaimPending(context.Background())
		assert.ErrorIs(t, err, ErrNoEligibleRecords)
		_, err = store.ClaimRetryable(context.Background())
		assert.ErrorIs(t, err, ErrNoEligibleRecords)
	})
}

func TestProcessorSlowCycle(t *testing.T) {
	failedRecord := func(id string, nextRetryAt time.Time, attempts int) OutboxRecord {
		record := pendingRecord(id, time.Now().UTC().Add(-time.Hour))
		record.Status = StatusFailed
		record.AttemptCount = attempts
		record.NextRetryAt = &nextRetryAt
		return record
	}

	t.Run("should republish failed record whose retry window opened", func(t *testing.T) {
		store := newMockStore()
		store.add(failedRecord("r1", time.Now().UTC().Add(-time.Minute), 1))
		publisher := newMockPublisher()
		processor := newTestProcessor(store, publisher, testConfig())

		processor.RunSlowCycle(context.Background())

		assert.Equal(t, StatusPublished, store.get("r1").Status)
	})

	t.Run("should skip failed record whose retry window has not opened", func(t *testing.T) {
		store := newMockStore()
		store.add(failedRecord("r1", time.Now().UTC().Add(time.Hour), 1))
		publisher := newMockPublisher()
		processor := newTestProcessor(store, publisher, testConfig())

		processor.RunSlowCycle(context.Background())

		assert.Equal(t, 0, publisher.callCount())
		assert.Equal(t, StatusFailed, store.get("r1").Status)
	})

	t.Run("should increase backoff with attempt count", func(t *testing.T) {
		store := newMockStore()
		store.add(failedRecord("r1", time.Now().UTC().Add(-time.Minute), 1))
		publisher := newMockPublisher(&TransientPublishError{Topic: "badge-events", Err: errors.New("down")})
		processor := newTestProcessor(store, publisher, testConfig())

		before := time.Now().UTC()
		processor.RunSlowCycle(context.Background())

		record := store.get("r1")
		assert.Equal(t, StatusFailed, record.Status)
		assert.Equal(t, 2, record.AttemptCount)
		require.NotNil(t, record.NextRetryAt)
		// Second retry backs off to base * unit.
		assert.WithinDuration(t, before.Add(5*time.Minute), *record.NextRetryAt, 5*time.Second)
	})
}

func TestProcessorHealthy(t *testing.T) {
	t.Run("should be healthy before first cycle", func(t *testing.T) {
		processor := newTestProcessor(newMockStore(), newMockPublisher(), testConfig())
		assert.True(t, processor.Healthy(time.Now()))
	})

	t.Run("should be healthy right after cycles run", func(t *testing.T) {
		processor := newTestProcessor(newMockStore(), newMockPublisher(), testConfig())
		processor.RunFastCycle(context.Background())
		processor.RunSlowCycle(context.Background())
		assert.True(t, processor.Healthy(time.Now()))
	})

	t.Run("should be unhealthy when fast cycle stalls", func(t *testing.T) {
		processor := newTestProcessor(newMockStore(), newMockPublisher(), testConfig())
		processor.RunFastCycle(context.Background())
		assert.False(t, processor.Healthy(time.Now().Add(time.Minute)))
	})
}
