// Package domain contains the client organizations a profile bills.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
)

// Organization is a client of a profile. Its hourly rate and tax rate are
// authoritative for every invoice billed to it.
type Organization struct {
	ID                     snowflake.ID    `gorm:"primaryKey" json:"id"`
	ProfileID              snowflake.ID    `gorm:"not null;index" json:"profile_id"`
	CompanyName            string          `gorm:"size:255;not null;uniqueIndex:ux_organizations_company_name" json:"company_name"`
	CompanyEmailGeneral    string          `gorm:"size:255" json:"company_email_general,omitempty"`
	CompanyEmailForInvoice string          `gorm:"size:255" json:"company_email_for_invoice,omitempty"`
	Address                string          `gorm:"size:255" json:"address,omitempty"`
	City                   string          `gorm:"size:255" json:"city,omitempty"`
	StateOrProvince        string          `gorm:"column:stateorprovince;size:255" json:"stateorprovince,omitempty"`
	Country                string          `gorm:"size:255" json:"country,omitempty"`
	PostalCode             string          `gorm:"size:64" json:"postal_code,omitempty"`
	HourlyRate             decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"hourly_rate"`
	TaxRatePercentage      decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0" json:"tax_rate_percentage"`
	BusinessRole           string          `gorm:"size:255" json:"business_role,omitempty"`
	CreatedAt              time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"not null" json:"updated_at"`

	Profile *profiledomain.Profile `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }
