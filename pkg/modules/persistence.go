package modules

import (
	"github.com/Muscledia/gamification-outbox/pkg/persistence/mongo"
	"go.uber.org/fx"
)

// NewPersistenceModule provides persistence functionality: mongo and txManager.
func NewPersistenceModule() fx.Option {
	return fx.Options(
		mongo.NewMongoModule(),
	)
}
