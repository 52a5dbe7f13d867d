package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/config"
	"github.com/smallbiznis/invoicely/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, log *zap.Logger) error {
		if err := Migrate(conn); err != nil {
			return err
		}

		created, err := seed.EnsureDefaultProfile(context.Background(), conn, node, cfg.Business)
		if err != nil {
			return err
		}
		if created {
			log.Info("default profile seeded", zap.String("business_name", cfg.Business.Name))
		}
		return nil
	}),
)
