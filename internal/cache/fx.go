package cache

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/billinghub/internal/config"
	redisclient "github.com/railzwaylabs/billinghub/internal/redis"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(NewStore),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
	Registry  *prometheus.Registry
}

// NewStore builds the backend selected by cache.driver.
func NewStore(p Params) (Store, error) {
	log := p.Log.Named("cache")

	var store Store
	switch p.Cfg.Cache.Driver {
	case "", "memory":
		store = NewMemory(p.Cfg.Cache.TTL)
	case "redis":
		client, err := redisclient.NewClient(p.Cfg.Redis)
		if err != nil {
			return nil, err
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		store = NewRedis(client, p.Cfg.Cache.TTL)
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", p.Cfg.Cache.Driver)
	}

	log.Info("entity cache ready", zap.String("driver", p.Cfg.Cache.Driver), zap.Duration("ttl", p.Cfg.Cache.TTL))
	return WithMetrics(store, p.Registry), nil
}
