package outbox

import (
	"context"
	"sync"
	"time"
)

// mockStore is an in-memory Store keyed by record id. Claim semantics match
// the real store closely enough for processor tests: one record per call,
// oldest first, status flipped to PROCESSING.
type mockStore struct {
	mu      sync.Mutex
	records map[string]*OutboxRecord

	insertErr error
	claimErr  error
	markErr   error

	purged       int64
	purgeCutoffs []time.Time
}

func newMockStore() *mockStore {
	return &mockStore{records: make(map[string]*OutboxRecord)}
}

func (s *mockStore) add(record OutboxRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := record
	s.records[record.ID] = &clone
}

func (s *mockStore) get(id string) OutboxRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.records[id]
}

func (s *mockStore) Insert(ctx context.Context, record *OutboxRecord) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *mockStore) ClaimPending(ctx context.Context) (*OutboxRecord, error) {
	return s.claimWhere(func(r *OutboxRecord) bool {
		return r.Status == StatusPending
	})
}

func (s *mockStore) ClaimRetryable(ctx context.Context) (*OutboxRecord, error) {
	now := time.Now().UTC()
	return s.claimWhere(func(r *OutboxRecord) bool {
		return r.Status == StatusFailed &&
			r.NextRetryAt != nil && !r.NextRetryAt.After(now) &&
			r.AttemptCount < r.MaxAttempts
	})
}

func (s *mockStore) claimWhere(eligible func(*OutboxRecord) bool) (*OutboxRecord, error) {
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest *OutboxRecord
	for _, r := range s.records {
		if !eligible(r) {
			continue
		}
		if oldest == nil || r.CreatedAt.Before(oldest.CreatedAt) {
			oldest = r
		}
	}
	if oldest == nil {
		return nil, ErrNoEligibleRecords
	}

	oldest.Status = StatusProcessing
	oldest.UpdatedAt = time.Now().UTC()
	clone := *oldest
	return &clone, nil
}

func (s *mockStore) MarkPublished(ctx context.Context, id string) error {
	return s.transition(id, func(r *OutboxRecord) {
		now := time.Now().UTC()
		r.Status = StatusPublished
		r.PublishedAt = &now
		r.NextRetryAt = nil
		r.ErrorMessage = ""
	})
}

func (s *mockStore) MarkFailed(ctx context.Context, id string, errMsg string, nextRetryAt time.Time) error {
	return s.transition(id, func(r *OutboxRecord) {
		r.Status = StatusFailed
		r.ErrorMessage = errMsg
		r.NextRetryAt = &nextRetryAt
		r.AttemptCount++
	})
}

func (s *mockStore) MarkDeadLetter(ctx context.Context, id string, errMsg string) error {
	return s.transition(id, func(r *OutboxRecord) {
		r.Status = StatusDeadLetter
		r.ErrorMessage = errMsg
		r.NextRetryAt = nil
		r.AttemptCount++
	})
}

func (s *mockStore) transition(id string, apply func(*OutboxRecord)) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok || record.Status != StatusProcessing {
		return ErrRecordNotFound
	}
	apply(record)
	record.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *mockStore) ListDeadLetters(ctx context.Context, limit int64) ([]OutboxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []OutboxRecord
	for _, r := range s.records {
		if r.Status == StatusDeadLetter && int64(len(records)) < limit {
			records = append(records, *r)
		}
	}
	return records, nil
}

func (s *mockStore) ResetForRetry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok || record.Status != StatusDeadLetter {
		return ErrRecordNotFound
	}
	record.Status = StatusPending
	record.AttemptCount = 0
	record.ErrorMessage = ""
	record.NextRetryAt = nil
	record.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *mockStore) PurgePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeCutoffs = append(s.purgeCutoffs, cutoff)

	var deleted int64
	for id, r := range s.records {
		if r.Status == StatusPublished && r.PublishedAt != nil && r.PublishedAt.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}
	s.purged += deleted
	return deleted, nil
}

func (s *mockStore) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[Status]int64)
	for _, r := range s.records {
		counts[r.Status]++
	}
	return counts, nil
}

// mockPublisher records publish calls and returns a scripted sequence of
// results, one per call, repeating the last entry once exhausted.
type mockPublisher struct {
	mu      sync.Mutex
	results []error
	calls   int
	topics  []string
	keys    []string
	healthy bool
}

func newMockPublisher(results ...error) *mockPublisher {
	return &mockPublisher{results: results, healthy: true}
}

func (p *mockPublisher) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.calls
	p.calls++
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)

	if len(p.results) == 0 {
		return nil
	}
	if idx >= len(p.results) {
		idx = len(p.results) - 1
	}
	return p.results[idx]
}

func (p *mockPublisher) Healthy(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.healthy
}

func (p *mockPublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
