package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewViperModule creates an fx module for Viper configuration.
// The config file path is resolved from AppConfig; environment variables
// override file values (dots and dashes map to underscores).
func NewViperModule() fx.Option {
	return fx.Module("viper",
		fx.Provide(newViper),
		fx.Invoke(logViperConfig),
	)
}

func newViper(conf AppConfig) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if conf.ConfigFile == "" {
		return v, nil
	}

	if _, err := os.Stat(conf.ConfigFile); err != nil {
		return nil, fmt.Errorf("config file %q is not accessible: %w", conf.ConfigFile, err)
	}

	v.SetConfigFile(conf.ConfigFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", conf.ConfigFile, err)
	}

	return v, nil
}

func logViperConfig(logger *zap.Logger, v *viper.Viper) {
	logger.Info("Configuration loaded successfully",
		zap.String("configFile", v.ConfigFileUsed()),
		zap.Int("settingsCount", len(v.AllSettings())),
	)
}
