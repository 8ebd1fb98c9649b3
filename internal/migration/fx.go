package migration

import (
	"strings"

	"github.com/sitekhata/sitekhata/internal/config"
	"github.com/sitekhata/sitekhata/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}

		if strings.EqualFold(cfg.Environment, "development") {
			return seed.EnsureDefaultProject(conn)
		}
		return nil
	}),
)
