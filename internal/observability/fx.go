package observability

import (
	"context"

	"github.com/railzwaylabs/billinghub/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(func(cfg config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return NewLogger(cfg.Observability)
	}),
	fx.Provide(NewRegistry),
	fx.Invoke(registerTracing),
	fx.Invoke(WatchLogLevel),
)

func registerTracing(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) error {
	tp, err := NewTracerProvider(context.Background(), cfg.Observability)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = log.Sync()
			return tp.Shutdown(ctx)
		},
	})
	return nil
}
