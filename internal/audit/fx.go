package audit

import (
	"github.com/tracesphere/campusasset/internal/audit/repository"
	"github.com/tracesphere/campusasset/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
