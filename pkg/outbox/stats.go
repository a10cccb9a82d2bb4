package outbox

import (
	"context"
	"fmt"
	"time"
)

// failureRateThreshold is the fraction of terminally-failing records above
// which the pipeline reports unhealthy.
const failureRateThreshold = 0.05

// Statistics is a point-in-time snapshot of the outbox backlog.
// SuccessRate is a percentage in [0, 100]; an empty outbox reports 0.
type Statistics struct {
	Pending     int64   `json:"pending"`
	Processing  int64   `json:"processing"`
	Published   int64   `json:"published"`
	Failed      int64   `json:"failed"`
	DeadLetter  int64   `json:"deadLetter"`
	Total       int64   `json:"total"`
	SuccessRate float64 `json:"successRate"`
}

// Health is the aggregated pipeline health view exposed to monitoring.
type Health struct {
	Healthy          bool       `json:"healthy"`
	PublisherHealthy bool       `json:"publisherHealthy"`
	ProcessorHealthy bool       `json:"processorHealthy"`
	Statistics       Statistics `json:"statistics"`
}

// Reporter computes statistics and health for the monitoring endpoints and
// the metrics gauges.
type Reporter interface {
	Statistics(ctx context.Context) (Statistics, error)
	Health(ctx context.Context) (Health, error)
}

type reporter struct {
	store     Store
	publisher Publisher
	processor *Processor
}

func newReporter(store Store, publisher Publisher, processor *Processor) Reporter {
	return &reporter{store: store, publisher: publisher, processor: processor}
}

func (r *reporter) Statistics(ctx context.Context) (Statistics, error) {
	counts, err := r.store.CountByStatus(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to count outbox records: %w", err)
	}

	stats := Statistics{
		Pending:    counts[StatusPending],
		Processing: counts[StatusProcessing],
		Published:  counts[StatusPublished],
		Failed:     counts[StatusFailed],
		DeadLetter: counts[StatusDeadLetter],
	}
	stats.Total = stats.Pending + stats.Processing + stats.Published + stats.Failed + stats.DeadLetter
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Published) / float64(stats.Total) * 100
	}

	return stats, nil
}

func (r *reporter) Health(ctx context.Context) (Health, error) {
	stats, err := r.Statistics(ctx)
	if err != nil {
		return Health{}, err
	}

	failureRate := float64(0)
	if stats.Total > 0 {
		failureRate = float64(stats.Failed+stats.DeadLetter) / float64(stats.Total)
	}

	health := Health{
		PublisherHealthy: r.publisher.Healthy(ctx),
		ProcessorHealthy: r.processor.Healthy(time.Now()),
		Statistics:       stats,
	}
	health.Healthy = health.PublisherHealthy && health.ProcessorHealthy && failureRate < failureRateThreshold

	return health, nil
}
