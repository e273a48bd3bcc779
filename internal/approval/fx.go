package approval

import (
	"context"

	"github.com/tracesphere/campusasset/internal/approval/domain"
	"github.com/tracesphere/campusasset/internal/approval/service"
	"go.uber.org/fx"
)

var Module = fx.Module("approval.service",
	fx.Provide(service.New),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, svc domain.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			svc.Stop()
			return nil
		},
	})
}
