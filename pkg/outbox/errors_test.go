package outbox

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	t.Run("should treat nil as not retryable", func(t *testing.T) {
		assert.False(t, IsRetryable(nil))
	})

	t.Run("should treat validation errors as permanent", func(t *testing.T) {
		err := &ValidationError{Reason: "too large", Err: errors.New("rejected")}
		assert.False(t, IsRetryable(err))
		assert.False(t, IsRetryable(fmt.Errorf("publish: %w", err)))
	})

	t.Run("should treat serialization errors as permanent", func(t *testing.T) {
		err := &SerializationError{EventType: EventTypeBadgeEarned, Err: errors.New("bad body")}
		assert.False(t, IsRetryable(err))
	})

	t.Run("should treat transient publish errors as retryable", func(t *testing.T) {
		err := &TransientPublishError{Topic: "badge-events", Err: errors.New("broker down")}
		assert.True(t, IsRetryable(err))
		assert.True(t, IsRetryable(fmt.Errorf("publish: %w", err)))
	})

	t.Run("should default unknown errors to retryable", func(t *testing.T) {
		assert.True(t, IsRetryable(errors.New("something unexpected")))
	})
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")

	assert.ErrorIs(t, &SerializationError{Err: cause}, cause)
	assert.ErrorIs(t, &ValidationError{Err: cause}, cause)
	assert.ErrorIs(t, &TransientPublishError{Err: cause}, cause)
}
