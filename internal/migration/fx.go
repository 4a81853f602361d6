package migration

import "go.uber.org/fx"

// Module migrates when the app starts. Used by the migrate command.
var Module = fx.Module("migrations",
	fx.Invoke(Run),
)
