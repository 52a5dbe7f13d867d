package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bwmarrin/snowflake"
	summarydomain "github.com/smallbiznis/invoicely/internal/summary/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a profile's financial summary as JSON",
		Example: `  # Year to date
  invoicely summary --profile 1783912341234112512

  # One quarter
  invoicely summary --profile 1783912341234112512 --start 2024-01-01 --end 2024-03-31`,
		RunE: runSummary,
	}

	cmd.Flags().String("profile", "", "Profile id")
	cmd.Flags().String("start", "", "First day, YYYY-MM-DD (default: January 1 of this year)")
	cmd.Flags().String("end", "", "Last day, YYYY-MM-DD (default: today)")
	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	rawProfile, _ := cmd.Flags().GetString("profile")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	profileID, err := snowflake.ParseString(rawProfile)
	if err != nil || profileID == 0 {
		return errors.New("--profile must be a profile id")
	}

	out := cmd.OutOrStdout()
	return runOnce(cmd.Context(),
		ledgerModules(),
		fx.Invoke(func(svc summarydomain.Service) error {
			summary, err := svc.GetFinancialSummary(context.Background(), profileID, start, end)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}),
	)
}
