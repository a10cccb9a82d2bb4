package outbox

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Enabled toggles the whole pipeline. When false the writer, the
	// processor cycles, the sweeper and the monitoring endpoints are inert.
	Enabled *bool `mapstructure:"enabled"`

	// FastInterval is the period of the cycle that drains PENDING records.
	FastInterval time.Duration `mapstructure:"fast-interval"`

	// SlowInterval is the period of the cycle that re-drives FAILED records.
	SlowInterval time.Duration `mapstructure:"slow-interval"`

	// BatchSize bounds how many records one cycle run may claim.
	BatchSize int `mapstructure:"batch-size"`

	// MaxAttempts is the retry budget snapshotted onto each new record.
	MaxAttempts int `mapstructure:"max-attempts"`

	// PublishTimeout bounds a single broker publish attempt.
	PublishTimeout time.Duration `mapstructure:"publish-timeout"`

	// PublishConcurrency bounds parallel publishes within one cycle run.
	PublishConcurrency int `mapstructure:"publish-concurrency"`

	// Retention is how long PUBLISHED records are kept before the sweeper
	// deletes them.
	Retention time.Duration `mapstructure:"retention"`

	// SweepInterval is the period of the retention sweeper.
	SweepInterval time.Duration `mapstructure:"sweep-interval"`

	// StaleAfter is the age past which a PROCESSING record is considered
	// abandoned (crashed instance) and becomes claimable again.
	StaleAfter time.Duration `mapstructure:"stale-after"`
}

// IsEnabled treats a missing flag as enabled.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func newConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if sub := v.Sub("outbox"); sub != nil {
		if err := sub.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to load outbox config: %w", err)
		}
	}

	if cfg.FastInterval <= 0 {
		cfg.FastInterval = 5 * time.Second
	}
	if cfg.SlowInterval <= 0 {
		cfg.SlowInterval = 2 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 10 * time.Second
	}
	if cfg.PublishConcurrency <= 0 {
		cfg.PublishConcurrency = 4
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 10 * time.Minute
	}

	return cfg, nil
}
