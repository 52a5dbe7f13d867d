package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
)

type Service interface {
	// GetFinancialSummary aggregates a profile's invoices. Empty dates default
	// to the first day of the current year and today.
	GetFinancialSummary(ctx context.Context, profileID snowflake.ID, startDate, endDate string) (FinancialSummary, error)
}

var (
	ErrInvalidStartDate = ledgererr.Validation("invalid_start_date")
	ErrInvalidEndDate   = ledgererr.Validation("invalid_end_date")
	ErrInvalidRange     = ledgererr.Validation("invalid_date_range")
)
