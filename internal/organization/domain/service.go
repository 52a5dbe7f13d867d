package domain

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
)

type CreateOrganizationRequest struct {
	CompanyName            string          `json:"company_name"`
	CompanyEmailGeneral    string          `json:"company_email_general"`
	CompanyEmailForInvoice string          `json:"company_email_for_invoice"`
	Address                string          `json:"address"`
	City                   string          `json:"city"`
	StateOrProvince        string          `json:"stateorprovince"`
	Country                string          `json:"country"`
	PostalCode             string          `json:"postal_code"`
	HourlyRate             decimal.Decimal `json:"hourly_rate"`
	TaxRatePercentage      decimal.Decimal `json:"tax_rate_percentage"`
	BusinessRole           string          `json:"business_role"`
}

// OrganizationPatch carries the fields a caller wants to change; nil means keep.
type OrganizationPatch struct {
	CompanyName            *string          `json:"company_name"`
	CompanyEmailGeneral    *string          `json:"company_email_general"`
	CompanyEmailForInvoice *string          `json:"company_email_for_invoice"`
	Address                *string          `json:"address"`
	City                   *string          `json:"city"`
	StateOrProvince        *string          `json:"stateorprovince"`
	Country                *string          `json:"country"`
	PostalCode             *string          `json:"postal_code"`
	HourlyRate             *decimal.Decimal `json:"hourly_rate"`
	TaxRatePercentage      *decimal.Decimal `json:"tax_rate_percentage"`
	BusinessRole           *string          `json:"business_role"`
}

// Apply merges the patch into o.
func (patch OrganizationPatch) Apply(o *Organization) {
	applyString(&o.CompanyName, patch.CompanyName)
	applyString(&o.CompanyEmailGeneral, patch.CompanyEmailGeneral)
	applyString(&o.CompanyEmailForInvoice, patch.CompanyEmailForInvoice)
	applyString(&o.Address, patch.Address)
	applyString(&o.City, patch.City)
	applyString(&o.StateOrProvince, patch.StateOrProvince)
	applyString(&o.Country, patch.Country)
	applyString(&o.PostalCode, patch.PostalCode)
	applyString(&o.BusinessRole, patch.BusinessRole)
	if patch.HourlyRate != nil {
		o.HourlyRate = *patch.HourlyRate
	}
	if patch.TaxRatePercentage != nil {
		o.TaxRatePercentage = *patch.TaxRatePercentage
	}
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

type Service interface {
	Create(ctx context.Context, profileID snowflake.ID, req CreateOrganizationRequest) (Organization, error)
	Update(ctx context.Context, profileID, id snowflake.ID, patch OrganizationPatch) (Organization, error)
	GetByID(ctx context.Context, profileID, id snowflake.ID) (Organization, error)
	List(ctx context.Context, profileID snowflake.ID) ([]Organization, error)
	Delete(ctx context.Context, profileID, id snowflake.ID) (bool, error)
	DeleteAll(ctx context.Context, profileID snowflake.ID) (int64, error)
}

var (
	ErrInvalidID          = ledgererr.Validation("invalid_organization_id")
	ErrInvalidCompanyName = ledgererr.Validation("invalid_company_name")
	ErrInvalidEmail       = ledgererr.Validation("invalid_company_email")
	ErrInvalidHourlyRate  = ledgererr.Validation("invalid_hourly_rate")
	ErrInvalidTaxRate     = ledgererr.Validation("invalid_tax_rate_percentage")
	ErrNotFound           = ledgererr.NotFound("organization_not_found")
	ErrDuplicate          = ledgererr.Conflict("duplicate_organization")
)
