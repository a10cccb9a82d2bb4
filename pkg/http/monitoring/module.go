package monitoring

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// NewMonitoringModule registers the health and outbox inspection routes.
func NewMonitoringModule() fx.Option {
	return fx.Options(
		fx.Provide(newHandler),
		fx.Invoke(func(engine *gin.Engine, h *handler) {
			h.registerRoutes(engine)
		}),
	)
}
