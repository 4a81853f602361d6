package connection

import (
	"github.com/railzwaylabs/billinghub/internal/adapters"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/clock"
	"github.com/railzwaylabs/billinghub/internal/dispatcher"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Backend    adapters.Backend
	Registry   *adapters.Registry
	Dispatcher *dispatcher.Dispatcher
	Audit      auditdomain.Recorder `optional:"true"`
	Clock      clock.Clock
	Log        *zap.Logger
}

var Module = fx.Module("connection",
	fx.Provide(func(p Params) *Service {
		return NewService(p.Backend, p.Registry, p.Dispatcher, p.Audit, p.Clock, p.Log)
	}),
)
