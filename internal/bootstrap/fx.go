package bootstrap

import "go.uber.org/fx"

// Module refuses to start the app on a database with a stale schema.
var Module = fx.Module("bootstrap",
	fx.Provide(NewSchemaGate),
	fx.Invoke(EnforceSchemaGate),
)
