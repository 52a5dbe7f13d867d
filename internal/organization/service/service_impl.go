package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicely/internal/clock"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
	"github.com/smallbiznis/invoicely/internal/organization/domain"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
	"github.com/smallbiznis/invoicely/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	ProfileRepo profiledomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	profileRepo profiledomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("organization.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		profileRepo: p.ProfileRepo,
	}
}

func (s *Service) Create(ctx context.Context, profileID snowflake.ID, req domain.CreateOrganizationRequest) (domain.Organization, error) {
	if profileID == 0 {
		return domain.Organization{}, profiledomain.ErrInvalidID
	}

	now := s.clock.Now()
	org := domain.Organization{
		ID:                     s.genID.Generate(),
		ProfileID:              profileID,
		CompanyName:            strings.TrimSpace(req.CompanyName),
		CompanyEmailGeneral:    strings.TrimSpace(req.CompanyEmailGeneral),
		CompanyEmailForInvoice: strings.TrimSpace(req.CompanyEmailForInvoice),
		Address:                strings.TrimSpace(req.Address),
		City:                   strings.TrimSpace(req.City),
		StateOrProvince:        strings.TrimSpace(req.StateOrProvince),
		Country:                strings.TrimSpace(req.Country),
		PostalCode:             strings.TrimSpace(req.PostalCode),
		HourlyRate:             req.HourlyRate,
		TaxRatePercentage:      req.TaxRatePercentage,
		BusinessRole:           strings.TrimSpace(req.BusinessRole),
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := validate(org); err != nil {
		return domain.Organization{}, err
	}

	profile, err := s.profileRepo.FindByID(ctx, s.db, profileID)
	if err != nil {
		return domain.Organization{}, ledgererr.Persistence("load profile", err)
	}
	if profile == nil {
		return domain.Organization{}, profiledomain.ErrNotFound
	}

	if err := s.repo.Insert(ctx, s.db, &org); err != nil {
		return domain.Organization{}, s.writeErr("insert organization", err)
	}

	s.log.Info("organization created",
		zap.String("profile_id", profileID.String()),
		zap.String("organization_id", org.ID.String()),
	)
	return org, nil
}

func (s *Service) Update(ctx context.Context, profileID, id snowflake.ID, patch domain.OrganizationPatch) (domain.Organization, error) {
	if profileID == 0 {
		return domain.Organization{}, profiledomain.ErrInvalidID
	}
	if id == 0 {
		return domain.Organization{}, domain.ErrInvalidID
	}

	var updated domain.Organization
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, profileID, id)
		if err != nil {
			return ledgererr.Persistence("load organization", err)
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		patch.Apply(existing)
		if err := validate(*existing); err != nil {
			return err
		}
		existing.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, existing); err != nil {
			return s.writeErr("update organization", err)
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return domain.Organization{}, err
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, profileID, id snowflake.ID) (domain.Organization, error) {
	if profileID == 0 {
		return domain.Organization{}, profiledomain.ErrInvalidID
	}
	if id == 0 {
		return domain.Organization{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, profileID, id)
	if err != nil {
		return domain.Organization{}, ledgererr.Persistence("load organization", err)
	}
	if item == nil {
		return domain.Organization{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, profileID snowflake.ID) ([]domain.Organization, error) {
	if profileID == 0 {
		return nil, profiledomain.ErrInvalidID
	}
	profile, err := s.profileRepo.FindByID(ctx, s.db, profileID)
	if err != nil {
		return nil, ledgererr.Persistence("load profile", err)
	}
	if profile == nil {
		return nil, profiledomain.ErrNotFound
	}

	items, err := s.repo.List(ctx, s.db, profileID)
	if err != nil {
		return nil, ledgererr.Persistence("list organizations", err)
	}
	orgs := make([]domain.Organization, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orgs = append(orgs, *item)
	}
	return orgs, nil
}

// Delete removes the organization and, through the store's cascade, its invoices.
func (s *Service) Delete(ctx context.Context, profileID, id snowflake.ID) (bool, error) {
	if profileID == 0 {
		return false, profiledomain.ErrInvalidID
	}
	if id == 0 {
		return false, domain.ErrInvalidID
	}
	affected, err := s.repo.Delete(ctx, s.db, profileID, id)
	if err != nil {
		return false, ledgererr.Persistence("delete organization", err)
	}
	return affected > 0, nil
}

func (s *Service) DeleteAll(ctx context.Context, profileID snowflake.ID) (int64, error) {
	if profileID == 0 {
		return 0, profiledomain.ErrInvalidID
	}
	affected, err := s.repo.DeleteAll(ctx, s.db, profileID)
	if err != nil {
		return 0, ledgererr.Persistence("delete organizations", err)
	}
	return affected, nil
}

func (s *Service) writeErr(op string, err error) error {
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicate
	}
	if db.IsForeignKeyErr(err) {
		return profiledomain.ErrNotFound
	}
	s.log.Error(op+" failed", zap.Error(err))
	return ledgererr.Persistence(op, err)
}

func validate(o domain.Organization) error {
	if o.CompanyName == "" {
		return domain.ErrInvalidCompanyName
	}
	for _, email := range []string{o.CompanyEmailGeneral, o.CompanyEmailForInvoice} {
		if email != "" && !strings.Contains(email, "@") {
			return domain.ErrInvalidEmail
		}
	}
	if !o.HourlyRate.IsPositive() || !fitsRateScale(o.HourlyRate) {
		return domain.ErrInvalidHourlyRate
	}
	if o.TaxRatePercentage.IsNegative() || o.TaxRatePercentage.GreaterThan(hundred) || !fitsRateScale(o.TaxRatePercentage) {
		return domain.ErrInvalidTaxRate
	}
	return nil
}

// Rates are stored as given, up to four decimal places.
func fitsRateScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(4))
}
