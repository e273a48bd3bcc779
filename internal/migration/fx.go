package migration

import (
	auditdomain "github.com/tracesphere/campusasset/internal/audit/domain"
	authdomain "github.com/tracesphere/campusasset/internal/auth/domain"
	"github.com/tracesphere/campusasset/internal/config"
	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
	"github.com/tracesphere/campusasset/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// The SQLite path is for local runs; gorm owns the schema there.
			if err := conn.AutoMigrate(
				&docdomain.Document{},
				&authdomain.User{},
				&authdomain.Session{},
				&authdomain.PasswordReset{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureAdminUser(conn, cfg)
	}),
)
