package modules

import (
	"github.com/Muscledia/gamification-outbox/pkg/messaging/kafka/config"
	"github.com/Muscledia/gamification-outbox/pkg/messaging/kafka/producer"
	"github.com/Muscledia/gamification-outbox/pkg/outbox"
	"go.uber.org/fx"
)

// NewMessagingModule provides messaging functionality: kafka producer and the
// outbox delivery pipeline.
func NewMessagingModule() fx.Option {
	return fx.Options(
		config.NewKafkaConfigModule(),
		producer.NewProducerModule(),
		outbox.NewOutboxModule(),
	)
}
