package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper(t *testing.T) {
	publishedRecord := func(id string, publishedAt time.Time) OutboxRecord {
		record := pendingRecord(id, publishedAt.Add(-time.Minute))
		record.Status = StatusPublished
		record.PublishedAt = &publishedAt
		return record
	}

	t.Run("should purge only published records past retention", func(t *testing.T) {
		store := newMockStore()
		now := time.Now().UTC()
		store.add(publishedRecord("old", now.Add(-8*24*time.Hour)))
		store.add(publishedRecord("fresh", now.Add(-time.Hour)))
		store.add(pendingRecord("pending", now.Add(-30*24*time.Hour)))

		sweeper := newSweeper(store, testConfig())
		sweeper.sweep(context.Background())

		assert.Equal(t, int64(1), store.purged)
		counts, err := store.CountByStatus(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[StatusPublished])
		assert.Equal(t, int64(1), counts[StatusPending])
	})

	t.Run("should derive cutoff from retention window", func(t *testing.T) {
		store := newMockStore()
		conf := testConfig()
		conf.Retention = 24 * time.Hour

		sweeper := newSweeper(store, conf)
		before := time.Now().UTC()
		sweeper.sweep(context.Background())

		require.Len(t, store.purgeCutoffs, 1)
		assert.WithinDuration(t, before.Add(-24*time.Hour), store.purgeCutoffs[0], 5*time.Second)
	})
}
