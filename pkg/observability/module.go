package observability

import (
	"go.uber.org/fx"
)

// NewObservabilityModule provides the tracer and meter providers. Both fall
// back to noop implementations when disabled, so consumers never branch on
// telemetry being configured.
func NewObservabilityModule() fx.Option {
	return fx.Provide(
		newConfig,
		provideTracerProvider,
		provideMeterProvider,
	)
}
