package modules

import (
	"github.com/Muscledia/gamification-outbox/pkg/observability"
	"go.uber.org/fx"
)

// NewObservabilityModule provides tracing and metrics providers.
func NewObservabilityModule() fx.Option {
	return observability.NewObservabilityModule()
}
