package domain

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
)

type CreateProfileRequest struct {
	BusinessName            string `json:"business_name"`
	BusinessEmail           string `json:"business_email"`
	BusinessRole            string `json:"business_role"`
	BusinessAddress         string `json:"business_address"`
	BusinessCity            string `json:"business_city"`
	BusinessStateOrProvince string `json:"business_stateorprovince"`
	BusinessCountry         string `json:"business_country"`
	BusinessPostalCode      string `json:"business_postal_code"`
	BusinessPhone           string `json:"business_phone"`
	BusinessGSTHSTNumber    string `json:"business_gst_hst_number"`
}

// ProfilePatch carries the fields a caller wants to change; nil means keep.
type ProfilePatch struct {
	BusinessName            *string `json:"business_name"`
	BusinessEmail           *string `json:"business_email"`
	BusinessRole            *string `json:"business_role"`
	BusinessAddress         *string `json:"business_address"`
	BusinessCity            *string `json:"business_city"`
	BusinessStateOrProvince *string `json:"business_stateorprovince"`
	BusinessCountry         *string `json:"business_country"`
	BusinessPostalCode      *string `json:"business_postal_code"`
	BusinessPhone           *string `json:"business_phone"`
	BusinessGSTHSTNumber    *string `json:"business_gst_hst_number"`
}

// Apply merges the patch into p.
func (patch ProfilePatch) Apply(p *Profile) {
	apply(&p.BusinessName, patch.BusinessName)
	apply(&p.BusinessEmail, patch.BusinessEmail)
	apply(&p.BusinessRole, patch.BusinessRole)
	apply(&p.BusinessAddress, patch.BusinessAddress)
	apply(&p.BusinessCity, patch.BusinessCity)
	apply(&p.BusinessStateOrProvince, patch.BusinessStateOrProvince)
	apply(&p.BusinessCountry, patch.BusinessCountry)
	apply(&p.BusinessPostalCode, patch.BusinessPostalCode)
	apply(&p.BusinessPhone, patch.BusinessPhone)
	apply(&p.BusinessGSTHSTNumber, patch.BusinessGSTHSTNumber)
}

func apply(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

type Service interface {
	Create(context.Context, CreateProfileRequest) (Profile, error)
	Update(ctx context.Context, id snowflake.ID, patch ProfilePatch) (Profile, error)
	GetByID(ctx context.Context, id snowflake.ID) (Profile, error)
	List(context.Context) ([]Profile, error)
	Delete(ctx context.Context, id snowflake.ID) (bool, error)
	DeleteAll(context.Context) (int64, error)
}

var (
	ErrInvalidID            = ledgererr.Validation("invalid_profile_id")
	ErrInvalidBusinessName  = ledgererr.Validation("invalid_business_name")
	ErrInvalidBusinessEmail = ledgererr.Validation("invalid_business_email")
	ErrNotFound             = ledgererr.NotFound("profile_not_found")
	ErrDuplicate            = ledgererr.Conflict("duplicate_profile")
)
