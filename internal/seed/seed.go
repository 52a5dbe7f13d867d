package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/config"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
	profilerepository "github.com/smallbiznis/invoicely/internal/profile/repository"
	"gorm.io/gorm"
)

// EnsureDefaultProfile creates the business profile described by cfg when no
// profile with that business name exists yet. It reports whether a row was inserted.
func EnsureDefaultProfile(ctx context.Context, db *gorm.DB, node *snowflake.Node, cfg config.BusinessConfig) (bool, error) {
	if db == nil {
		return false, errors.New("seed database handle is required")
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return false, nil
	}
	email := strings.TrimSpace(cfg.Email)
	if email == "" {
		return false, errors.New("business email is required to seed the default profile")
	}

	if node == nil {
		var err error
		node, err = snowflake.NewNode(1)
		if err != nil {
			return false, err
		}
	}

	repo := profilerepository.Provide()
	created := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := repo.FindByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		now := time.Now().UTC()
		profile := profiledomain.Profile{
			ID:                      node.Generate(),
			BusinessName:            name,
			BusinessEmail:           email,
			BusinessRole:            strings.TrimSpace(cfg.Role),
			BusinessAddress:         strings.TrimSpace(cfg.Address),
			BusinessCity:            strings.TrimSpace(cfg.City),
			BusinessStateOrProvince: strings.TrimSpace(cfg.StateOrProvince),
			BusinessCountry:         strings.TrimSpace(cfg.Country),
			BusinessPostalCode:      strings.TrimSpace(cfg.PostalCode),
			BusinessPhone:           strings.TrimSpace(cfg.Phone),
			BusinessGSTHSTNumber:    strings.TrimSpace(cfg.GSTHSTNumber),
			CreatedAt:               now,
			UpdatedAt:               now,
		}
		if err := repo.Insert(ctx, tx, &profile); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
