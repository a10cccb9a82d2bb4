package producer

import (
	"context"

	"github.com/Muscledia/gamification-outbox/pkg/core/health"
	"github.com/Muscledia/gamification-outbox/pkg/messaging/kafka/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewProducerModule() fx.Option {
	return fx.Provide(
		provideProducer,
	)
}

func provideProducer(lc fx.Lifecycle, log *zap.Logger, conf config.Config, readiness health.ComponentManager) (Producer, error) {
	componentLog := log.With(zap.String("component", "producer"))

	p, err := newProducer(conf, componentLog)
	if err != nil {
		return nil, err
	}

	markReady := readiness.AddComponent("kafka-producer")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			err := waitForBrokers(ctx, p, componentLog,
				conf.ProducerConfig.ReadinessTimeoutSeconds,
				conf.ProducerConfig.FailOnBrokerError)
			if err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Close()
			return nil
		},
	})

	return p, nil
}
