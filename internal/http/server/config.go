package server

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Port int `mapstructure:"port"`
}

func newConfig(v *viper.Viper, logger *zap.Logger) (Config, error) {
	var cfg Config
	if sub := v.Sub("server"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load server config: %w", err)
		}
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	logger.Info("loaded server config", zap.Any("config", cfg))
	return cfg, nil
}
