package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// mockReadinessWaiter is a mock implementation of health.ReadinessWaiter
type mockReadinessWaiter struct {
	readyChan chan struct{}
}

func newMockReadinessWaiter() *mockReadinessWaiter {
	return &mockReadinessWaiter{readyChan: make(chan struct{})}
}

func (m *mockReadinessWaiter) WaitReady(ctx context.Context) error {
	select {
	case <-m.readyChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockReadinessWaiter) MarkReady() {
	select {
	case <-m.readyChan:
	default:
		close(m.readyChan)
	}
}

// mockShutdowner is a mock implementation of fx.Shutdowner
type mockShutdowner struct {
	shutdownCalled atomic.Bool
}

func (m *mockShutdowner) Shutdown(opts ...fx.ShutdownOption) error {
	m.shutdownCalled.Store(true)
	return nil
}

func TestOptions(t *testing.T) {
	t.Run("default options", func(t *testing.T) {
		opts := Options{}
		assert.False(t, opts.WaitReady)
		assert.False(t, opts.ShutdownOnError)
	})

	t.Run("WithReady", func(t *testing.T) {
		opts := Options{}
		WithReady()(&opts)
		assert.True(t, opts.WaitReady)
	})

	t.Run("WithShutdown", func(t *testing.T) {
		opts := Options{}
		WithShutdown()(&opts)
		assert.True(t, opts.ShutdownOnError)
	})
}

func TestBaseWorker(t *testing.T) {
	t.Run("runs function and stops on cancel", func(t *testing.T) {
		started := make(chan struct{})
		w := &baseWorker{
			name: "test-worker",
			log:  zap.NewNop(),
			runFunc: func(ctx context.Context) error {
				close(started)
				<-ctx.Done()
				return nil
			},
		}

		w.Start()
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("worker did not start")
		}
		w.Stop()
	})

	t.Run("waits for readiness when configured", func(t *testing.T) {
		readiness := newMockReadinessWaiter()
		ran := make(chan struct{})
		w := &baseWorker{
			name:      "test-worker",
			log:       zap.NewNop(),
			readiness: readiness,
			options:   Options{WaitReady: true},
			runFunc: func(ctx context.Context) error {
				close(ran)
				return nil
			},
		}

		w.Start()

		select {
		case <-ran:
			t.Fatal("worker ran before readiness")
		case <-time.After(50 * time.Millisecond):
		}

		readiness.MarkReady()

		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("worker did not run after readiness")
		}
		w.Stop()
	})

	t.Run("triggers shutdown on fatal error when configured", func(t *testing.T) {
		shutdowner := &mockShutdowner{}
		w := &baseWorker{
			name:       "test-worker",
			log:        zap.NewNop(),
			shutdowner: shutdowner,
			options:    Options{ShutdownOnError: true},
			runFunc: func(ctx context.Context) error {
				return errors.New("boom")
			},
		}

		w.Start()
		w.Stop()

		assert.True(t, shutdowner.shutdownCalled.Load())
	})

	t.Run("swallows error without shutdown option", func(t *testing.T) {
		shutdowner := &mockShutdowner{}
		w := &baseWorker{
			name:       "test-worker",
			log:        zap.NewNop(),
			shutdowner: shutdowner,
			runFunc: func(ctx context.Context) error {
				return errors.New("boom")
			},
		}

		w.Start()
		w.Stop()

		assert.False(t, shutdowner.shutdownCalled.Load())
	})
}
