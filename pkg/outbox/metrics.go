package outbox

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

const metricsObservationTimeout = 5 * time.Second

// registerMetrics publishes the backlog counts and health flags as
// observable gauges. One callback serves all instruments so each collection
// issues a single aggregation query.
func registerMetrics(provider metric.MeterProvider, reporter Reporter, conf *Config) error {
	if !conf.IsEnabled() {
		return nil
	}

	meter := provider.Meter("gamification-outbox")

	gauges := map[string]metric.Int64ObservableGauge{}
	for _, name := range []string{
		"outbox.events.pending",
		"outbox.events.processing",
		"outbox.events.published",
		"outbox.events.failed",
		"outbox.events.dead_letter",
		"outbox.publisher.healthy",
		"outbox.processor.healthy",
	} {
		gauge, err := meter.Int64ObservableGauge(name)
		if err != nil {
			return fmt.Errorf("failed to create gauge %s: %w", name, err)
		}
		gauges[name] = gauge
	}

	successRate, err := meter.Float64ObservableGauge("outbox.events.success_rate")
	if err != nil {
		return fmt.Errorf("failed to create success rate gauge: %w", err)
	}

	observables := make([]metric.Observable, 0, len(gauges)+1)
	for _, g := range gauges {
		observables = append(observables, g)
	}
	observables = append(observables, successRate)

	_, err = meter.RegisterCallback(func(ctx context.Context, observer metric.Observer) error {
		ctx, cancel := context.WithTimeout(ctx, metricsObservationTimeout)
		defer cancel()

		health, err := reporter.Health(ctx)
		if err != nil {
			return err
		}

		stats := health.Statistics
		observer.ObserveInt64(gauges["outbox.events.pending"], stats.Pending)
		observer.ObserveInt64(gauges["outbox.events.processing"], stats.Processing)
		observer.ObserveInt64(gauges["outbox.events.published"], stats.Published)
		observer.ObserveInt64(gauges["outbox.events.failed"], stats.Failed)
		observer.ObserveInt64(gauges["outbox.events.dead_letter"], stats.DeadLetter)
		observer.ObserveInt64(gauges["outbox.publisher.healthy"], boolGauge(health.PublisherHealthy))
		observer.ObserveInt64(gauges["outbox.processor.healthy"], boolGauge(health.ProcessorHealthy))
		observer.ObserveFloat64(successRate, stats.SuccessRate)
		return nil
	}, observables...)
	if err != nil {
		return fmt.Errorf("failed to register metrics callback: %w", err)
	}

	return nil
}

func boolGauge(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
