// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	organizationdomain "github.com/smallbiznis/invoicely/internal/organization/domain"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
	"gorm.io/datatypes"
)

// InvoiceStatus is set by callers; any status may follow any other.
type InvoiceStatus string

const (
	InvoiceStatusSubmitted       InvoiceStatus = "SUBMITTED"
	InvoiceStatusWaiting         InvoiceStatus = "WAITING"
	InvoiceStatusReceivedPayment InvoiceStatus = "RECEIVED_PAYMENT"
	InvoiceStatusDenied          InvoiceStatus = "DENIED"
	InvoiceStatusDispute         InvoiceStatus = "DISPUTE"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusSubmitted,
		InvoiceStatusWaiting,
		InvoiceStatusReceivedPayment,
		InvoiceStatusDenied,
		InvoiceStatusDispute:
		return true
	default:
		return false
	}
}

type TaxType string

const (
	TaxTypeGSTHST       TaxType = "GST_HST"
	TaxTypeCorporateTax TaxType = "CORPORATE_TAX"
	TaxTypeVAT          TaxType = "VAT"
)

func (t TaxType) Valid() bool {
	switch t {
	case TaxTypeGSTHST, TaxTypeCorporateTax, TaxTypeVAT:
		return true
	default:
		return false
	}
}

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Invoice is the ledger's central entity. Subtotal is the sum of item
// amounts and Total adds the tax amounts, both rounded to cents.
type Invoice struct {
	ID                    snowflake.ID      `gorm:"primaryKey" json:"id"`
	ProfileID             snowflake.ID      `gorm:"not null;index" json:"profile_id"`
	OrganizationID        snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	InvoiceNumber         string            `gorm:"size:64;not null;uniqueIndex:ux_invoices_invoice_number" json:"invoice_number"`
	InvoiceName           string            `gorm:"size:255" json:"invoice_name,omitempty"`
	ContactPerson         string            `gorm:"size:255" json:"contact_person,omitempty"`
	Status                InvoiceStatus     `gorm:"size:32;not null;default:'WAITING'" json:"status"`
	Subtotal              decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Total                 decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	Currency              string            `gorm:"size:3;not null;default:'CAD'" json:"currency"`
	ExchangeRate          decimal.Decimal   `gorm:"type:decimal(12,6);not null;default:1" json:"exchange_rate"`
	DueDate               string            `gorm:"size:10" json:"due_date,omitempty"`
	InvoiceSubmissionDate string            `gorm:"size:10" json:"invoice_submission_date,omitempty"`
	PDFPath               string            `gorm:"column:pdf_path;size:512" json:"pdf_path,omitempty"`
	Metadata              datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt             time.Time         `gorm:"not null;index" json:"created_at"`
	UpdatedAt             time.Time         `gorm:"not null" json:"updated_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	Taxes []TaxDetail   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"taxes"`

	Profile      *profiledomain.Profile           `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	Organization *organizationdomain.Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Date        string          `gorm:"size:10;not null" json:"date"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Hours       decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"hours"`
	Rate        decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// TaxDetail is one tax line. When Rate is set, Amount is derived from the subtotal.
type TaxDetail struct {
	ID        snowflake.ID        `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID        `gorm:"not null;index" json:"invoice_id"`
	TaxType   TaxType             `gorm:"size:32;not null" json:"tax_type"`
	Rate      decimal.NullDecimal `gorm:"type:decimal(9,4)" json:"rate"`
	Amount    decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	Region    *string             `gorm:"size:64" json:"region"`
	CreatedAt time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time           `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (TaxDetail) TableName() string { return "invoice_taxes" }
