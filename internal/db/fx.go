package db

import (
	"context"

	"github.com/railzwaylabs/billinghub/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
}

var Module = fx.Module("db",
	fx.Provide(func(p Params) (*gorm.DB, error) {
		conn, err := Open(p.Cfg.Database, p.Log)
		if err != nil {
			return nil, err
		}
		if err := Instrument(conn, p.Cfg.Observability.ServiceName); err != nil {
			p.Log.Warn("gorm metrics disabled", zap.Error(err))
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error { return Close(conn) },
		})
		return conn, nil
	}),
)
