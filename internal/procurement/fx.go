package procurement

import (
	"context"

	"github.com/tracesphere/campusasset/internal/procurement/domain"
	"github.com/tracesphere/campusasset/internal/procurement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("procurement.service",
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
