package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/config"
	"github.com/gestorhub/gestor/internal/migration"
	"github.com/gestorhub/gestor/internal/observability"
	"github.com/gestorhub/gestor/internal/server"
	"github.com/gestorhub/gestor/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

// RegisterSnowflake builds the ID generator. Each instance gets its own
// node so IDs stay unique across replicas.
func RegisterSnowflake() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("SNOWFLAKE_NODE_ID"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeID = parsed
		}
	}
	return snowflake.NewNode(nodeID)
}
