package migration

import (
	"github.com/aquabill/aquabill/internal/config"
	"github.com/aquabill/aquabill/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.DefaultCompanyID != 0 {
			return seed.EnsureDefaultCompanyWithID(conn, cfg.DefaultCompanyID)
		}
		return seed.EnsureDefaultCompany(conn)
	}),
)
