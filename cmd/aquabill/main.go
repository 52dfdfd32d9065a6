package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/aquabill/aquabill/internal/clock"
	"github.com/aquabill/aquabill/internal/config"
	"github.com/aquabill/aquabill/internal/migration"
	"github.com/aquabill/aquabill/internal/observability"
	"github.com/aquabill/aquabill/internal/server"
	"github.com/aquabill/aquabill/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
