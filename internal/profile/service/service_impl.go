package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/clock"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
	"github.com/smallbiznis/invoicely/internal/profile/domain"
	"github.com/smallbiznis/invoicely/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("profile.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProfileRequest) (domain.Profile, error) {
	now := s.clock.Now()
	profile := domain.Profile{
		ID:                      s.genID.Generate(),
		BusinessName:            strings.TrimSpace(req.BusinessName),
		BusinessEmail:           strings.TrimSpace(req.BusinessEmail),
		BusinessRole:            strings.TrimSpace(req.BusinessRole),
		BusinessAddress:         strings.TrimSpace(req.BusinessAddress),
		BusinessCity:            strings.TrimSpace(req.BusinessCity),
		BusinessStateOrProvince: strings.TrimSpace(req.BusinessStateOrProvince),
		BusinessCountry:         strings.TrimSpace(req.BusinessCountry),
		BusinessPostalCode:      strings.TrimSpace(req.BusinessPostalCode),
		BusinessPhone:           strings.TrimSpace(req.BusinessPhone),
		BusinessGSTHSTNumber:    strings.TrimSpace(req.BusinessGSTHSTNumber),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := validate(profile); err != nil {
		return domain.Profile{}, err
	}

	if err := s.repo.Insert(ctx, s.db, &profile); err != nil {
		return domain.Profile{}, s.writeErr("insert profile", err)
	}

	s.log.Info("profile created", zap.String("profile_id", profile.ID.String()))
	return profile, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, patch domain.ProfilePatch) (domain.Profile, error) {
	if id == 0 {
		return domain.Profile{}, domain.ErrInvalidID
	}

	var updated domain.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return ledgererr.Persistence("load profile", err)
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
			return s.writeErr("update profile", err)
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Profile, error) {
	if id == 0 {
		return domain.Profile{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Profile{}, ledgererr.Persistence("load profile", err)
	}
	if item == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Profile, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, ledgererr.Persistence("list profiles", err)
	}
	profiles := make([]domain.Profile, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		profiles = append(profiles, *item)
	}
	return profiles, nil
}

// Delete removes the profile; organizations, invoices, items and taxes go with it.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) (bool, error) {
	if id == 0 {
		return false, domain.ErrInvalidID
	}
	affected, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		return false, ledgererr.Persistence("delete profile", err)
	}
	if affected > 0 {
		s.log.Info("profile deleted", zap.String("profile_id", id.String()))
	}
	return affected > 0, nil
}

func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	affected, err := s.repo.DeleteAll(ctx, s.db)
	if err != nil {
		return 0, ledgererr.Persistence("delete profiles", err)
	}
	s.log.Warn("all profiles deleted", zap.Int64("count", affected))
	return affected, nil
}

func (s *Service) writeErr(op string, err error) error {
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicate
	}
	s.log.Error(op+" failed", zap.Error(err))
	return ledgererr.Persistence(op, err)
}

func validate(p domain.Profile) error {
	if p.BusinessName == "" {
		return domain.ErrInvalidBusinessName
	}
	if p.BusinessEmail == "" || !strings.Contains(p.BusinessEmail, "@") {
		return domain.ErrInvalidBusinessEmail
	}
	return nil
}
