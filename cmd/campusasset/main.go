package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tracesphere/campusasset/internal/config"
	"github.com/tracesphere/campusasset/internal/logger"
	"github.com/tracesphere/campusasset/internal/migration"
	"github.com/tracesphere/campusasset/internal/observability"
	"github.com/tracesphere/campusasset/internal/server"
	"github.com/tracesphere/campusasset/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// server.Module pulls in every domain module the console needs.
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
