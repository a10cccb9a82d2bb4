package modules

import (
	"github.com/Muscledia/gamification-outbox/pkg/core/config"
	"github.com/Muscledia/gamification-outbox/pkg/core/health"
	"github.com/Muscledia/gamification-outbox/pkg/core/logger"
	"go.uber.org/fx"
)

// NewCoreModule provides core functionality: config, logger and readiness.
func NewCoreModule() fx.Option {
	return fx.Options(
		config.NewAppConfigModule(),
		config.NewViperModule(),
		logger.NewZapLoggingModule(),
		health.NewReadinessModule(),
	)
}
