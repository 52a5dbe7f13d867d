package domain

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
)

// ItemInput is a requested line. The rate always comes from the organization.
type ItemInput struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
}

// TaxInput is a requested tax line. With a Rate the amount is computed from
// the subtotal; without one the caller's Amount (or zero) is kept.
type TaxInput struct {
	TaxType TaxType          `json:"tax_type"`
	Rate    *decimal.Decimal `json:"rate"`
	Amount  *decimal.Decimal `json:"amount"`
	Region  *string          `json:"region"`
}

type CreateInvoiceRequest struct {
	OrganizationID        snowflake.ID     `json:"organization_id"`
	InvoiceName           string           `json:"invoice_name"`
	ContactPerson         string           `json:"contact_person"`
	Status                InvoiceStatus    `json:"status"`
	Currency              string           `json:"currency"`
	ExchangeRate          *decimal.Decimal `json:"exchange_rate"`
	DueDate               string           `json:"due_date"`
	InvoiceSubmissionDate string           `json:"invoice_submission_date"`
	PDFPath               string           `json:"pdf_path"`
	Metadata              map[string]any   `json:"metadata"`
	Items                 []ItemInput      `json:"items"`
	Taxes                 []TaxInput       `json:"taxes"`
}

// InvoicePatch carries the fields a caller wants to change; nil means keep.
// A non-nil Items or Taxes replaces the stored set entirely.
type InvoicePatch struct {
	OrganizationID        *snowflake.ID    `json:"organization_id"`
	InvoiceName           *string          `json:"invoice_name"`
	ContactPerson         *string          `json:"contact_person"`
	Status                *InvoiceStatus   `json:"status"`
	Currency              *string          `json:"currency"`
	ExchangeRate          *decimal.Decimal `json:"exchange_rate"`
	DueDate               *string          `json:"due_date"`
	InvoiceSubmissionDate *string          `json:"invoice_submission_date"`
	PDFPath               *string          `json:"pdf_path"`
	Metadata              map[string]any   `json:"metadata"`
	Items                 *[]ItemInput     `json:"items"`
	Taxes                 *[]TaxInput      `json:"taxes"`
}

// Apply merges the scalar fields of the patch into inv. Organization, items
// and taxes are handled by the service because they drive recomputation.
func (p InvoicePatch) Apply(inv *Invoice) {
	if p.InvoiceName != nil {
		inv.InvoiceName = strings.TrimSpace(*p.InvoiceName)
	}
	if p.ContactPerson != nil {
		inv.ContactPerson = strings.TrimSpace(*p.ContactPerson)
	}
	if p.Status != nil {
		inv.Status = InvoiceStatus(strings.ToUpper(strings.TrimSpace(string(*p.Status))))
	}
	if p.Currency != nil {
		inv.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.ExchangeRate != nil {
		inv.ExchangeRate = *p.ExchangeRate
	}
	if p.DueDate != nil {
		inv.DueDate = strings.TrimSpace(*p.DueDate)
	}
	if p.InvoiceSubmissionDate != nil {
		inv.InvoiceSubmissionDate = strings.TrimSpace(*p.InvoiceSubmissionDate)
	}
	if p.PDFPath != nil {
		inv.PDFPath = strings.TrimSpace(*p.PDFPath)
	}
	if p.Metadata != nil {
		inv.Metadata = p.Metadata
	}
}

type Service interface {
	Create(ctx context.Context, profileID snowflake.ID, req CreateInvoiceRequest) (Invoice, error)
	Update(ctx context.Context, profileID, invoiceID snowflake.ID, patch InvoicePatch) (Invoice, error)
	Delete(ctx context.Context, profileID, invoiceID snowflake.ID) (bool, error)
	DeleteAllByProfile(ctx context.Context, profileID snowflake.ID) (int64, error)
	DeleteAllByOrganization(ctx context.Context, profileID, organizationID snowflake.ID) (int64, error)
	GetByID(ctx context.Context, profileID, invoiceID snowflake.ID) (Invoice, error)
	List(ctx context.Context, profileID snowflake.ID) ([]Invoice, error)
	ListByOrganization(ctx context.Context, profileID, organizationID snowflake.ID) ([]Invoice, error)
	GetDocument(ctx context.Context, profileID, invoiceID snowflake.ID) (Document, error)
}

var (
	ErrInvalidID              = ledgererr.Validation("invalid_invoice_id")
	ErrInvalidOrganization    = ledgererr.Validation("invalid_organization_id")
	ErrInvalidItemDate        = ledgererr.Validation("invalid_item_date")
	ErrInvalidItemDescription = ledgererr.Validation("invalid_item_description")
	ErrInvalidItemHours       = ledgererr.Validation("invalid_item_hours")
	ErrInvalidTaxType         = ledgererr.Validation("invalid_tax_type")
	ErrInvalidTaxRate         = ledgererr.Validation("invalid_tax_rate")
	ErrInvalidTaxAmount       = ledgererr.Validation("invalid_tax_amount")
	ErrInvalidStatus          = ledgererr.Validation("invalid_status")
	ErrInvalidCurrency        = ledgererr.Validation("invalid_currency")
	ErrInvalidExchangeRate    = ledgererr.Validation("invalid_exchange_rate")
	ErrInvalidDueDate         = ledgererr.Validation("invalid_due_date")
	ErrInvalidSubmissionDate  = ledgererr.Validation("invalid_invoice_submission_date")
	ErrNotFound               = ledgererr.NotFound("invoice_not_found")
	ErrDuplicateInvoiceNumber = ledgererr.Conflict("duplicate_invoice_number")
	ErrProfileBusy            = ledgererr.Conflict("profile_busy")
)
