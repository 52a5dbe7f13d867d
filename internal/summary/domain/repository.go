package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceRow is the slice of an invoice the summary needs.
type InvoiceRow struct {
	ID               snowflake.ID
	OrganizationID   snowflake.ID
	OrganizationName string
	Currency         string
	ExchangeRate     decimal.Decimal
	Subtotal         decimal.Decimal
	Total            decimal.Decimal
	CreatedAt        time.Time
}

type TaxRow struct {
	InvoiceID snowflake.ID
	TaxType   string
	Amount    decimal.Decimal
	Region    *string
}

// Repository reads invoices with created_at in [from, to).
type Repository interface {
	ListInvoices(ctx context.Context, db *gorm.DB, profileID snowflake.ID, from, to time.Time) ([]InvoiceRow, error)
	ListTaxes(ctx context.Context, db *gorm.DB, profileID snowflake.ID, from, to time.Time) ([]TaxRow, error)
}
