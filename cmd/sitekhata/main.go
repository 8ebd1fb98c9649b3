package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/internal/clock"
	"github.com/sitekhata/sitekhata/internal/config"
	"github.com/sitekhata/sitekhata/internal/logger"
	"github.com/sitekhata/sitekhata/internal/migration"
	"github.com/sitekhata/sitekhata/internal/observability"
	"github.com/sitekhata/sitekhata/internal/scheduler"
	"github.com/sitekhata/sitekhata/internal/server"
	"github.com/sitekhata/sitekhata/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
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
