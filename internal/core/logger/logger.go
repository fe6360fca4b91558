package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(conf Config) (*zap.Logger, error) {
	var cfg zap.Config

	if conf.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(conf.Level)

	// Use ISO8601 time encoding for consistency
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if len(conf.OutputPaths) > 0 {
		cfg.OutputPaths = conf.OutputPaths
	}

	logger, err := cfg.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	zap.ReplaceGlobals(logger)

	logger.Info("logger initialized",
		zap.String("level", conf.Level.String()),
		zap.Bool("development", conf.Development),
	)

	return logger, nil
}
