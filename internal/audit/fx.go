package audit

import (
	"github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/audit/repository"
	"github.com/railzwaylabs/billinghub/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(service.NewExportService),
	fx.Provide(func(s domain.Service) domain.Recorder { return s }),
)
