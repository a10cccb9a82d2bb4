package middleware

import (
	"go.uber.org/fx"
)

// NewGinModule provides the gin engine and all middleware.
// Middleware execution order (by priority, lower = earlier):
//
//	20 - RateLimit - limits requests/second
//	40 - Recovery  - catches panics
//	50 - Logger    - logs requests
func NewGinModule() fx.Option {
	return fx.Options(
		RateLimitModule(20),
		RecoveryModule(40),
		LoggerModule(50),
		fx.Provide(provideGinAndHandler),
	)
}
