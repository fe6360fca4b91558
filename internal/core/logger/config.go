package logger

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level specifies the minimum logging level.
	Level zapcore.Level

	// Development enables development mode with console encoding and
	// human-readable timestamps. In production mode JSON encoding is used.
	Development bool

	// OutputPaths is a list of URLs or file paths to write logging output to.
	// If empty, defaults to stderr.
	OutputPaths []string
}

func newConfig(v *viper.Viper) (Config, error) {
	sub := v.Sub("logger")
	if sub == nil {
		return Config{Level: zapcore.InfoLevel}, nil
	}

	var rawCfg struct {
		Level       string   `mapstructure:"level"`
		Development bool     `mapstructure:"development"`
		OutputPaths []string `mapstructure:"outputPaths"`
	}

	if err := sub.Unmarshal(&rawCfg); err != nil {
		return Config{}, fmt.Errorf("failed to load logger config: %w", err)
	}

	level := zapcore.InfoLevel
	if rawCfg.Level != "" {
		parsedLevel, err := zapcore.ParseLevel(rawCfg.Level)
		if err != nil {
			return Config{}, fmt.Errorf("invalid log level '%s': %w", rawCfg.Level, err)
		}
		level = parsedLevel
	}

	return Config{
		Level:       level,
		Development: rawCfg.Development,
		OutputPaths: rawCfg.OutputPaths,
	}, nil
}
