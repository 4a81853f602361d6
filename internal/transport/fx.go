package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/billinghub/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("transport",
	fx.Provide(func(reg *prometheus.Registry) *Metrics {
		return NewMetrics(reg)
	}),
	fx.Provide(func(cfg config.Config, log *zap.Logger, metrics *Metrics) (*Client, error) {
		return New(Config{
			BaseURL:   cfg.Backend.BaseURL,
			Timeout:   cfg.Backend.Timeout,
			RateLimit: cfg.Backend.RateLimit,
			Burst:     cfg.Backend.Burst,
		}, log, metrics)
	}),
)
