package outbox

import (
	"errors"
	"fmt"
)

// ErrNoEligibleRecords is returned by claim operations when no record
// matched the claim filter. A lost claim race surfaces the same way and is
// not an error condition for the caller.
var ErrNoEligibleRecords = errors.New("no eligible outbox records")

// ErrRecordNotFound is returned when a record id does not exist or is not
// in the state required by the operation.
var ErrRecordNotFound = errors.New("outbox record not found")

// SerializationError means the event could not be turned into a payload.
// It is fatal at write time: the enclosing business transaction must abort
// and no outbox record is created.
type SerializationError struct {
	EventType string
	Err       error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize event %q: %v", e.EventType, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// ValidationError means the broker rejected the payload as structurally
// invalid. Non-retryable: the record goes straight to DEAD_LETTER.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid message: %s: %v", e.Reason, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransientPublishError covers network failures, broker unavailability and
// publish timeouts. Retryable under the backoff schedule.
type TransientPublishError struct {
	Topic string
	Err   error
}

func (e *TransientPublishError) Error() string {
	return fmt.Sprintf("transient publish failure on topic %q: %v", e.Topic, e.Err)
}

func (e *TransientPublishError) Unwrap() error { return e.Err }

// IsRetryable classifies a publish error. Validation and serialization
// failures are permanent; everything else is assumed transient so that an
// unknown broker error never silently dead-letters a record.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return false
	}
	var serializationErr *SerializationError
	if errors.As(err, &serializationErr) {
		return false
	}
	return true
}
