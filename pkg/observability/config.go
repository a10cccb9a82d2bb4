package observability

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultMetricsInterval = 10 * time.Second
	shutdownTimeout        = 5 * time.Second
)

// Config holds the telemetry settings. With no collector endpoint both
// providers run in local mode: traces sampled but unexported, metrics served
// only through the monitoring endpoint.
type Config struct {
	OtelCollectorEndpoint string        `mapstructure:"otel-collector-endpoint"`
	Tracing               TracingConfig `mapstructure:"tracing"`
	Metrics               MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("observability"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load observability config: %w", err)
		}
	}

	if cfg.Metrics.Interval == 0 {
		cfg.Metrics.Interval = defaultMetricsInterval
	}

	return cfg, nil
}
