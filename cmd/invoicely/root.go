package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/clock"
	"github.com/smallbiznis/invoicely/internal/config"
	"github.com/smallbiznis/invoicely/internal/invoice"
	"github.com/smallbiznis/invoicely/internal/lock"
	"github.com/smallbiznis/invoicely/internal/observability"
	"github.com/smallbiznis/invoicely/internal/organization"
	"github.com/smallbiznis/invoicely/internal/profile"
	"github.com/smallbiznis/invoicely/internal/summary"
	"github.com/smallbiznis/invoicely/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "invoicely",
		Short: "Invoice ledger for small businesses",
		Long: `invoicely issues, stores and aggregates invoices for business profiles
and their client organizations.

Configuration is read from the environment, an optional .env file and the
file named by INVOICELY_CONFIG.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSummaryCmd())
	return root
}

// coreModules is the infrastructure every command needs.
func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
	)
}

// ledgerModules wires the domain services on top of coreModules.
func ledgerModules() fx.Option {
	return fx.Options(
		lock.Module,
		profile.Module,
		organization.Module,
		invoice.Module,
		summary.Module,
	)
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
