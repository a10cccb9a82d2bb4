package outbox

import (
	"context"
	"maps"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type tracePropagator interface {
	// SaveTraceContext saves the current trace context into headers for
	// storage on the outbox record.
	SaveTraceContext(ctx context.Context, headers map[string]string) map[string]string

	// StartPublishSpan restores trace context from stored headers, creates
	// a producer span, and returns headers carrying the new span context.
	StartPublishSpan(headers map[string]string, topic, recordID string) (context.Context, trace.Span, map[string]string)
}

type otelTracePropagator struct {
	tracer trace.Tracer
}

func newTracePropagator(tp trace.TracerProvider) tracePropagator {
	return &otelTracePropagator{
		tracer: tp.Tracer("outbox"),
	}
}

func (t *otelTracePropagator) SaveTraceContext(ctx context.Context, headers map[string]string) map[string]string {
	if headers == nil {
		headers = make(map[string]string)
	}
	carrier := propagation.MapCarrier(headers)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return headers
}

// StartPublishSpan is called when a claimed record is sent to the broker.
// The span is a child of the trace that originally wrote the record.
func (t *otelTracePropagator) StartPublishSpan(headers map[string]string, topic, recordID string) (context.Context, trace.Span, map[string]string) {
	ctx := context.Background()
	if len(headers) > 0 {
		carrier := propagation.MapCarrier(headers)
		ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)
	}

	ctx, span := t.tracer.Start(ctx, "outbox.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("messaging.message.id", recordID),
		),
	)

	updatedHeaders := maps.Clone(headers)
	if updatedHeaders == nil {
		updatedHeaders = make(map[string]string)
	}
	carrier := propagation.MapCarrier(updatedHeaders)
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	return ctx, span, updatedHeaders
}
