package outbox

import (
	"time"
)

// Status is the delivery state of an outbox record.
type Status string

const (
	// StatusPending marks a freshly written record awaiting its first
	// publish attempt.
	StatusPending Status = "PENDING"
	// StatusProcessing marks a record claimed by a processor instance.
	StatusProcessing Status = "PROCESSING"
	// StatusPublished is terminal: the broker acknowledged delivery.
	StatusPublished Status = "PUBLISHED"
	// StatusFailed marks a record whose last attempt failed and that is
	// waiting for its next retry window.
	StatusFailed Status = "FAILED"
	// StatusDeadLetter is terminal except for a manual operator reset.
	StatusDeadLetter Status = "DEAD_LETTER"
)

// OutboxRecord is the unit of durable at-least-once event delivery. It is
// written in the same transaction as the business mutation that raised the
// event and mutated afterwards only by the processor and the dead-letter
// manager.
type OutboxRecord struct {
	ID        string `bson:"_id"`
	EventID   string `bson:"eventId"`
	EventType string `bson:"eventType"`

	// Topic is resolved once at write time and never changes.
	Topic string `bson:"topic"`
	// MessageKey is the partition key: the subject identifier when the
	// event has one, the event id otherwise.
	MessageKey string `bson:"messageKey"`

	Payload []byte            `bson:"payload"`
	Headers map[string]string `bson:"headers,omitempty"`

	Status       Status `bson:"status"`
	AttemptCount int    `bson:"attemptCount"`
	MaxAttempts  int    `bson:"maxAttempts"`
	ErrorMessage string `bson:"errorMessage,omitempty"`

	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
	PublishedAt *time.Time `bson:"publishedAt,omitempty"`
	NextRetryAt *time.Time `bson:"nextRetryAt,omitempty"`
}

// AttemptsExhausted reports whether one more failed attempt would push the
// record over its retry budget.
func (r *OutboxRecord) AttemptsExhausted() bool {
	return r.AttemptCount+1 >= r.MaxAttempts
}
