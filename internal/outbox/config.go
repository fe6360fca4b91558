package outbox

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	// Enabled toggles the background relay. The admin publish-now
	// endpoint works regardless.
	Enabled *bool `mapstructure:"enabled"`

	// Interval between relay runs.
	Interval time.Duration `mapstructure:"interval"`

	// InitialDelay before the first relay run after startup.
	InitialDelay time.Duration `mapstructure:"initial-delay"`

	// BatchSize caps how many due records a single run processes.
	BatchSize int `mapstructure:"batch-size"`
}

func newConfig(v *viper.Viper, logger *zap.Logger) (Config, error) {
	var cfg Config
	if sub := v.Sub("outbox"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load outbox config: %w", err)
		}
	}
	cfg.setDefaults()
	logger.Info("loaded outbox config", zap.Any("config", cfg))
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Enabled == nil {
		c.Enabled = lo.ToPtr(true)
	}
	if c.Interval == 0 {
		c.Interval = 30 * time.Second
	}
	if c.InitialDelay == 0 {
		c.InitialDelay = 10 * time.Second
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
}
