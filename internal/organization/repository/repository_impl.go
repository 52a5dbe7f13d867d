package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/organization/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const organizationColumns = `id, profile_id, company_name, company_email_general, company_email_for_invoice,
	address, city, stateorprovince, country, postal_code, hourly_rate, tax_rate_percentage,
	business_role, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, org *domain.Organization) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO organizations (`+organizationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		org.ID,
		org.ProfileID,
		org.CompanyName,
		org.CompanyEmailGeneral,
		org.CompanyEmailForInvoice,
		org.Address,
		org.City,
		org.StateOrProvince,
		org.Country,
		org.PostalCode,
		org.HourlyRate,
		org.TaxRatePercentage,
		org.BusinessRole,
		org.CreatedAt,
		org.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, org *domain.Organization) error {
	return db.WithContext(ctx).Exec(
		`UPDATE organizations SET company_name = ?, company_email_general = ?, company_email_for_invoice = ?,
		 address = ?, city = ?, stateorprovince = ?, country = ?, postal_code = ?, hourly_rate = ?,
		 tax_rate_percentage = ?, business_role = ?, updated_at = ?
		 WHERE profile_id = ? AND id = ?`,
		org.CompanyName,
		org.CompanyEmailGeneral,
		org.CompanyEmailForInvoice,
		org.Address,
		org.City,
		org.StateOrProvince,
		org.Country,
		org.PostalCode,
		org.HourlyRate,
		org.TaxRatePercentage,
		org.BusinessRole,
		org.UpdatedAt,
		org.ProfileID,
		org.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT `+organizationColumns+` FROM organizations WHERE profile_id = ? AND id = ?`,
		profileID,
		id,
	).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, profileID snowflake.ID) ([]*domain.Organization, error) {
	var orgs []*domain.Organization
	err := db.WithContext(ctx).
		Model(&domain.Organization{}).
		Where("profile_id = ?", profileID).
		Order("company_name asc, id asc").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM organizations WHERE profile_id = ? AND id = ?`, profileID, id)
	return res.RowsAffected, res.Error
}

func (r *repo) DeleteAll(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM organizations WHERE profile_id = ?`, profileID)
	return res.RowsAffected, res.Error
}
