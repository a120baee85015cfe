package migration

import (
	"strings"

	"github.com/gestorhub/gestor/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg db.Config, log *zap.Logger) error {
		// Embedded migrations target postgres. Other dialects are
		// expected to be migrated out of band.
		if !strings.EqualFold(cfg.Type, "postgres") {
			log.Warn("skipping embedded migrations",
				zap.String("dialect", cfg.Type),
			)
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
