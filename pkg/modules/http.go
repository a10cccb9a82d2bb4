package modules

import (
	"github.com/Muscledia/gamification-outbox/pkg/http/middleware"
	"github.com/Muscledia/gamification-outbox/pkg/http/monitoring"
	"github.com/Muscledia/gamification-outbox/pkg/http/server"
	"go.uber.org/fx"
)

// NewHTTPModule provides the HTTP server, middleware and monitoring routes.
func NewHTTPModule() fx.Option {
	return fx.Options(
		server.NewHTTPServerModule(),
		middleware.NewGinModule(),
		monitoring.NewMonitoringModule(),
	)
}
