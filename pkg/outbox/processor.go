package outbox

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/Muscledia/gamification-outbox/pkg/core/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Processor drains the outbox. The fast cycle claims fresh PENDING records
// (and stale PROCESSING ones), the slow cycle re-drives FAILED records whose
// retry window has opened. Both cycles funnel into the same delivery path.
type Processor struct {
	store      Store
	publisher  Publisher
	propagator tracePropagator
	policy     RetryPolicy
	conf       *Config

	lastFastCycle atomic.Int64
	lastSlowCycle atomic.Int64
}

func newProcessor(store Store, publisher Publisher, propagator tracePropagator, conf *Config) *Processor {
	return &Processor{
		store:      store,
		publisher:  publisher,
		propagator: propagator,
		policy:     DefaultRetryPolicy,
		conf:       conf,
	}
}

// RunFastCycle drains one batch of PENDING and stale PROCESSING records.
func (p *Processor) RunFastCycle(ctx context.Context) {
	p.lastFastCycle.Store(time.Now().UnixNano())
	p.drain(ctx, p.store.ClaimPending)
}

// RunSlowCycle drains one batch of FAILED records due for retry.
func (p *Processor) RunSlowCycle(ctx context.Context) {
	p.lastSlowCycle.Store(time.Now().UnixNano())
	p.drain(ctx, p.store.ClaimRetryable)
}

// drain claims records one at a time until the claim source is empty or the
// batch budget is spent. Claims are serial, publishes run concurrently up to
// the configured limit.
func (p *Processor) drain(ctx context.Context, claim func(context.Context) (*OutboxRecord, error)) {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.conf.PublishConcurrency)

	claimed := 0
	for claimed < p.conf.BatchSize {
		record, err := claim(ctx)
		if err != nil {
			if errors.Is(err, ErrNoEligibleRecords) {
				// Another instance won the claim or the backlog is empty.
				logger.Get(ctx).Debug("no eligible outbox records")
			} else {
				logger.Get(ctx).Error("failed to claim outbox record", zap.Error(err))
			}
			break
		}

		claimed++
		group.Go(func() error {
			p.deliver(groupCtx, record)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		logger.Get(ctx).Error("outbox delivery batch failed", zap.Error(err))
	}
}

// deliver publishes one claimed record and records the outcome. Every exit
// path moves the record out of PROCESSING; a crash between claim and outcome
// is healed by the staleness reclaim.
func (p *Processor) deliver(ctx context.Context, record *OutboxRecord) {
	spanCtx, span, headers := p.propagator.StartPublishSpan(record.Headers, record.Topic, record.ID)
	defer span.End()

	log := logger.Get(ctx).With(
		zap.String("recordId", record.ID),
		zap.String("eventType", record.EventType),
		zap.String("topic", record.Topic))

	publishCtx, cancel := context.WithTimeout(spanCtx, p.conf.PublishTimeout)
	defer cancel()

	err := p.publisher.Publish(publishCtx, record.Topic, record.MessageKey, record.Payload, headers)
	if err == nil {
		if markErr := p.store.MarkPublished(ctx, record.ID); markErr != nil {
			// The message reached the broker but the record is stuck in
			// PROCESSING; the staleness reclaim will republish it, which
			// at-least-once delivery permits.
			log.Error("published but failed to mark record", zap.Error(markErr))
			return
		}
		log.Debug("published outbox record", zap.Int("attemptCount", record.AttemptCount+1))
		return
	}

	span.RecordError(err)

	if !IsRetryable(err) {
		log.Error("permanent publish failure, dead-lettering record", zap.Error(err))
		if markErr := p.store.MarkDeadLetter(ctx, record.ID, err.Error()); markErr != nil {
			log.Error("failed to dead-letter record", zap.Error(markErr))
		}
		return
	}

	if record.AttemptsExhausted() {
		log.Error("retry budget exhausted, dead-lettering record",
			zap.Int("attemptCount", record.AttemptCount+1),
			zap.Int("maxAttempts", record.MaxAttempts),
			zap.Error(err))
		if markErr := p.store.MarkDeadLetter(ctx, record.ID, err.Error()); markErr != nil {
			log.Error("failed to dead-letter record", zap.Error(markErr))
		}
		return
	}

	nextRetry := p.policy.NextRetry(record.AttemptCount+1, time.Now().UTC())
	log.Warn("publish failed, scheduling retry",
		zap.Int("attemptCount", record.AttemptCount+1),
		zap.Time("nextRetryAt", nextRetry),
		zap.Error(err))
	if markErr := p.store.MarkFailed(ctx, record.ID, err.Error(), nextRetry); markErr != nil {
		log.Error("failed to mark record for retry", zap.Error(markErr))
	}
}

// Healthy reports whether both cycles have run within twice their configured
// interval. Before the first run each cycle gets the same grace window.
func (p *Processor) Healthy(now time.Time) bool {
	fastOK := cycleFresh(p.lastFastCycle.Load(), now, 2*p.conf.FastInterval)
	slowOK := cycleFresh(p.lastSlowCycle.Load(), now, 2*p.conf.SlowInterval)
	return fastOK && slowOK
}

func cycleFresh(lastNano int64, now time.Time, window time.Duration) bool {
	if lastNano == 0 {
		return true
	}
	return now.Sub(time.Unix(0, lastNano)) <= window
}
