package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/profile/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const profileColumns = `id, business_name, business_email, business_role, business_address, business_city,
	business_stateorprovince, business_country, business_postal_code, business_phone,
	business_gst_hst_number, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO profile (`+profileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.BusinessName,
		p.BusinessEmail,
		p.BusinessRole,
		p.BusinessAddress,
		p.BusinessCity,
		p.BusinessStateOrProvince,
		p.BusinessCountry,
		p.BusinessPostalCode,
		p.BusinessPhone,
		p.BusinessGSTHSTNumber,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	return db.WithContext(ctx).Exec(
		`UPDATE profile SET business_name = ?, business_email = ?, business_role = ?, business_address = ?,
		 business_city = ?, business_stateorprovince = ?, business_country = ?, business_postal_code = ?,
		 business_phone = ?, business_gst_hst_number = ?, updated_at = ?
		 WHERE id = ?`,
		p.BusinessName,
		p.BusinessEmail,
		p.BusinessRole,
		p.BusinessAddress,
		p.BusinessCity,
		p.BusinessStateOrProvince,
		p.BusinessCountry,
		p.BusinessPostalCode,
		p.BusinessPhone,
		p.BusinessGSTHSTNumber,
		p.UpdatedAt,
		p.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).Raw(
		`SELECT `+profileColumns+` FROM profile WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).Raw(
		`SELECT `+profileColumns+` FROM profile WHERE business_name = ?`,
		name,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	err := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Order("business_name asc, id asc").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM profile WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) DeleteAll(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM profile`)
	return res.RowsAffected, res.Error
}
