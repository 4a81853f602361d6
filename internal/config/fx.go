package config

import "go.uber.org/fx"

// Module loads configuration once per process. The config file path can be
// overridden with the BILLINGHUB_CONFIG environment variable.
var Module = fx.Module("config",
	fx.Provide(func() *Loader {
		return NewLoader(envConfigFile())
	}),
	fx.Provide(func(l *Loader) (Config, error) {
		return l.Load()
	}),
)
