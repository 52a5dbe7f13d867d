package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/summary/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListInvoices(ctx context.Context, db *gorm.DB, profileID snowflake.ID, from, to time.Time) ([]domain.InvoiceRow, error) {
	var rows []domain.InvoiceRow
	err := db.WithContext(ctx).Raw(
		`SELECT i.id, i.organization_id, o.company_name AS organization_name, i.currency,
		 i.exchange_rate, i.subtotal, i.total, i.created_at
		 FROM invoices i
		 JOIN organizations o ON o.id = i.organization_id
		 WHERE i.profile_id = ? AND i.created_at >= ? AND i.created_at < ?
		 ORDER BY i.created_at ASC, i.id ASC`,
		profileID, from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListTaxes(ctx context.Context, db *gorm.DB, profileID snowflake.ID, from, to time.Time) ([]domain.TaxRow, error) {
	var rows []domain.TaxRow
	err := db.WithContext(ctx).Raw(
		`SELECT t.invoice_id, t.tax_type, t.amount, t.region
		 FROM invoice_taxes t
		 JOIN invoices i ON i.id = t.invoice_id
		 WHERE i.profile_id = ? AND i.created_at >= ? AND i.created_at < ?
		 ORDER BY t.invoice_id ASC, t.id ASC`,
		profileID, from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
