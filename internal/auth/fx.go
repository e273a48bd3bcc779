package auth

import (
	"github.com/tracesphere/campusasset/internal/auth/oauth"
	"github.com/tracesphere/campusasset/internal/auth/repository"
	"github.com/tracesphere/campusasset/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Provide(oauth.NewFromConfig),
)
