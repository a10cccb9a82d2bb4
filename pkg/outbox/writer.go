package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Muscledia/gamification-outbox/pkg/core/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Writer stores events for later delivery. StoreForPublishing must be called
// inside the same transaction as the business mutation that produced the
// event, so the record and the mutation commit or roll back together.
type Writer interface {
	// StoreForPublishing returns the stored record, or a nil record when
	// the pipeline is disabled and the event was dropped.
	StoreForPublishing(ctx context.Context, event Event) (*OutboxRecord, error)
}

type writer struct {
	store      Store
	serializer Serializer
	propagator tracePropagator
	conf       *Config
}

func newWriter(store Store, serializer Serializer, propagator tracePropagator, conf *Config) Writer {
	return &writer{
		store:      store,
		serializer: serializer,
		propagator: propagator,
		conf:       conf,
	}
}

func (w *writer) StoreForPublishing(ctx context.Context, event Event) (*OutboxRecord, error) {
	if !w.conf.IsEnabled() {
		logger.Get(ctx).Debug("outbox disabled, dropping event", zap.String("eventType", event.Type))
		return nil, nil
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.Type == "" {
		return nil, &ValidationError{Reason: "event type is required"}
	}

	payload, err := w.serializer.Serialize(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event %s: %w", event.ID, err)
	}

	key := event.Subject
	if key == "" {
		key = event.ID
	}

	now := time.Now().UTC()
	record := OutboxRecord{
		ID:           uuid.NewString(),
		EventID:      event.ID,
		EventType:    event.Type,
		Topic:        ResolveTopic(event.Type),
		MessageKey:   key,
		Payload:      payload,
		Headers:      w.propagator.SaveTraceContext(ctx, nil),
		Status:       StatusPending,
		AttemptCount: 0,
		MaxAttempts:  w.conf.MaxAttempts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := w.store.Insert(ctx, &record); err != nil {
		return nil, fmt.Errorf("failed to store event %s for publishing: %w", event.ID, err)
	}

	logger.Get(ctx).Debug("stored event for publishing",
		zap.String("recordId", record.ID),
		zap.String("eventType", record.EventType),
		zap.String("topic", record.Topic))
	return &record, nil
}
