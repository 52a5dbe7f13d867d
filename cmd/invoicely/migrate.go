package main

import (
	"context"
	"errors"

	"github.com/smallbiznis/invoicely/internal/migration"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Example: `  # Apply all pending migrations and seed the default profile
  invoicely migrate

  # Roll back the last migration (postgres only)
  invoicely migrate down --steps 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), migration.Module)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back versioned migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return runOnce(cmd.Context(), fx.Invoke(func(conn *gorm.DB, log *zap.Logger) error {
				sqlDB, err := conn.DB()
				if err != nil {
					return err
				}
				if conn.Dialector.Name() != "postgres" {
					return errors.New("rollback is only supported for postgres")
				}
				if err := migration.RollbackMigrations(sqlDB, steps); err != nil {
					return err
				}
				log.Info("migrations rolled back", zap.Int("steps", steps))
				return nil
			}))
		},
	}
	down.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}

// runOnce starts an app with opts, then stops it. Work happens in fx.Invoke.
func runOnce(ctx context.Context, opts ...fx.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app := fx.New(
		coreModules(),
		fx.Options(opts...),
		fx.NopLogger,
	)
	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(ctx)
}
