package dispatcher

import (
	"github.com/railzwaylabs/billinghub/internal/adapters"
	"github.com/railzwaylabs/billinghub/internal/adapters/maxio"
	"github.com/railzwaylabs/billinghub/internal/adapters/stripe"
	"github.com/railzwaylabs/billinghub/internal/adapters/zuora"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/cache"
	"github.com/railzwaylabs/billinghub/internal/transport"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Registry *adapters.Registry
	Cache    cache.Store
	Backend  adapters.Backend
	Audit    auditdomain.Recorder `optional:"true"`
	Log      *zap.Logger
}

var Module = fx.Module("dispatcher",
	fx.Provide(func(c *transport.Client) adapters.Backend { return c }),
	fx.Provide(func(backend adapters.Backend) *adapters.Registry {
		return adapters.NewRegistry(backend,
			maxio.NewFactory(),
			stripe.NewFactory(),
			zuora.NewFactory(),
		)
	}),
	fx.Provide(func(p Params) *Dispatcher {
		return New(p.Registry, p.Cache, p.Backend, p.Audit, p.Log)
	}),
)
