package docstore

import (
	"github.com/tracesphere/campusasset/internal/docstore/repository"
	"github.com/tracesphere/campusasset/internal/docstore/service"
	"github.com/tracesphere/campusasset/internal/docstore/snapshothub"
	"go.uber.org/fx"
)

var Module = fx.Module("docstore.service",
	fx.Provide(snapshothub.NewHub),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
