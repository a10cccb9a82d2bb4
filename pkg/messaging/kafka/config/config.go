package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Config represents the main Kafka configuration.
type Config struct {
	// Brokers is a comma-separated list of Kafka broker addresses
	// (e.g., "localhost:9092,localhost:9093").
	Brokers string `mapstructure:"brokers"`

	ProducerConfig ProducerConfig `mapstructure:"producer-config"`
}

// ProducerConfig represents configuration for the Kafka producer.
type ProducerConfig struct {
	// ReadinessTimeoutSeconds is the timeout for waiting broker readiness
	// at startup (0 = no timeout).
	ReadinessTimeoutSeconds int `mapstructure:"readiness-timeout-seconds"`

	// FailOnBrokerError controls whether application startup fails when
	// brokers are not available within the readiness timeout.
	FailOnBrokerError bool `mapstructure:"fail-on-broker-error"`
}

func NewKafkaConfigModule() fx.Option {
	return fx.Provide(newConfig)
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("kafka"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load kafka config: %w", err)
		}
	}

	if cfg.Brokers == "" {
		return cfg, fmt.Errorf("kafka brokers are required")
	}

	if cfg.ProducerConfig.ReadinessTimeoutSeconds == 0 {
		cfg.ProducerConfig.ReadinessTimeoutSeconds = 30
	}

	return cfg, nil
}
