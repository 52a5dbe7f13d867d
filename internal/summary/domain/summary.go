// Package domain contains the read-only financial summary built from invoices.
package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type MonthlySummary struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Tax     decimal.Decimal `json:"tax"`
	Net     decimal.Decimal `json:"net"`
}

type ClientSummary struct {
	OrganizationID   snowflake.ID    `json:"organization_id"`
	OrganizationName string          `json:"organization_name"`
	TotalBilled      decimal.Decimal `json:"total_billed"`
	TotalTax         decimal.Decimal `json:"total_tax"`
	InvoiceCount     int64           `json:"invoice_count"`
}

type CurrencySummary struct {
	Currency        string          `json:"currency"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
}

type IncomeSummary struct {
	TotalRevenue    decimal.Decimal   `json:"total_revenue"`
	TotalTax        decimal.Decimal   `json:"total_tax"`
	NetIncome       decimal.Decimal   `json:"net_income"`
	MonthlySummary  []MonthlySummary  `json:"monthly_summary"`
	ClientSummary   []ClientSummary   `json:"client_summary"`
	CurrencySummary []CurrencySummary `json:"currency_summary"`
}

type TaxTypeSummary struct {
	TaxType string          `json:"tax_type"`
	Amount  decimal.Decimal `json:"amount"`
	Count   int64           `json:"count"`
}

type TaxRegionSummary struct {
	Region string          `json:"region"`
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

type QuarterlySummary struct {
	Quarter      string          `json:"quarter"`
	TaxCollected decimal.Decimal `json:"tax_collected"`
	Amount       decimal.Decimal `json:"amount"`
}

type TaxSummary struct {
	TotalTaxCollected decimal.Decimal    `json:"total_tax_collected"`
	TaxByType         []TaxTypeSummary   `json:"tax_by_type"`
	TaxByRegion       []TaxRegionSummary `json:"tax_by_region"`
	QuarterlySummary  []QuarterlySummary `json:"quarterly_summary"`
}

// FinancialSummary covers invoices created between Period.StartDate and
// Period.EndDate, both days inclusive.
type FinancialSummary struct {
	Income IncomeSummary `json:"income"`
	Tax    TaxSummary    `json:"tax"`
	Period Period        `json:"period"`
}
