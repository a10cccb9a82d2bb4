package observability

import (
	"context"

	appconfig "github.com/Muscledia/gamification-outbox/pkg/core/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideMeterProvider(lc fx.Lifecycle, log *zap.Logger, cfg Config, appCfg appconfig.AppConfig) (metric.MeterProvider, error) {
	if !cfg.Metrics.Enabled || cfg.OtelCollectorEndpoint == "" {
		log.Info("metrics: export disabled")
		return noopmetric.NewMeterProvider(), nil
	}

	provider, err := newMeterProvider(context.Background(), cfg, appCfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			otel.SetMeterProvider(provider)
			log.Info("metrics initialized",
				zap.String("endpoint", cfg.OtelCollectorEndpoint),
				zap.Duration("interval", cfg.Metrics.Interval))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return provider.Shutdown(shutdownCtx)
		},
	})

	return provider, nil
}

func newMeterProvider(ctx context.Context, cfg Config, appCfg appconfig.AppConfig) (*sdkmetric.MeterProvider, error) {
	res, err := newResource(ctx, appCfg)
	if err != nil {
		return nil, err
	}

	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OtelCollectorEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.Metrics.Interval))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	), nil
}
