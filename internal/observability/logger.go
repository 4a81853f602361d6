// Package observability wires logging, metrics and tracing.
package observability

import (
	"strings"

	"github.com/railzwaylabs/billinghub/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. The returned level can be changed at
// runtime when the config file is edited.
func NewLogger(cfg config.ObservabilityConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.LogLevel))

	var zcfg zap.Config
	if strings.EqualFold(cfg.LogFormat, "console") {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, level, err
	}
	if cfg.ServiceName != "" {
		logger = logger.With(zap.String("service", cfg.ServiceName))
	}
	return logger, level, nil
}

func parseLevel(raw string) zapcore.Level {
	level, err := zapcore.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// WatchLogLevel applies log_level edits from the config file without a restart.
func WatchLogLevel(loader *config.Loader, level zap.AtomicLevel, log *zap.Logger) {
	loader.Watch(func(cfg config.Config) {
		next := parseLevel(cfg.Observability.LogLevel)
		if next != level.Level() {
			level.SetLevel(next)
			log.Info("log level changed", zap.Stringer("level", next))
		}
	}, func(err error) {
		log.Warn("ignoring invalid config change", zap.Error(err))
	})
}
