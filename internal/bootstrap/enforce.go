package bootstrap

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// EnforceSchemaGate fails startup while the gate is closed.
func EnforceSchemaGate(lc fx.Lifecycle, gate SchemaGate, log *zap.Logger) {
	log = log.Named("bootstrap")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := gate.MustBeActive(ctx); err != nil {
				log.Error("schema gate closed", zap.Error(err))
				return err
			}
			log.Debug("schema gate open")
			return nil
		},
	})
}
