package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const invoiceColumns = `id, profile_id, organization_id, invoice_number, invoice_name, contact_person,
	status, subtotal, total, currency, exchange_rate, due_date, invoice_submission_date,
	pdf_path, metadata, created_at, updated_at`

const itemColumns = `id, invoice_id, date, description, hours, rate, amount, created_at, updated_at`

const taxColumns = `id, invoice_id, tax_type, rate, amount, region, created_at, updated_at`

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (`+invoiceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.ProfileID,
		inv.OrganizationID,
		inv.InvoiceNumber,
		inv.InvoiceName,
		inv.ContactPerson,
		inv.Status,
		inv.Subtotal,
		inv.Total,
		inv.Currency,
		inv.ExchangeRate,
		inv.DueDate,
		inv.InvoiceSubmissionDate,
		inv.PDFPath,
		inv.Metadata,
		inv.CreatedAt,
		inv.UpdatedAt,
	).Error
}

func (r *repo) UpdateInvoice(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET organization_id = ?, invoice_name = ?, contact_person = ?, status = ?,
		 subtotal = ?, total = ?, currency = ?, exchange_rate = ?, due_date = ?,
		 invoice_submission_date = ?, pdf_path = ?, metadata = ?, updated_at = ?
		 WHERE profile_id = ? AND id = ?`,
		inv.OrganizationID,
		inv.InvoiceName,
		inv.ContactPerson,
		inv.Status,
		inv.Subtotal,
		inv.Total,
		inv.Currency,
		inv.ExchangeRate,
		inv.DueDate,
		inv.InvoiceSubmissionDate,
		inv.PDFPath,
		inv.Metadata,
		inv.UpdatedAt,
		inv.ProfileID,
		inv.ID,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.InvoiceItem) error {
	for _, item := range items {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO invoice_items (`+itemColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			item.InvoiceID,
			item.Date,
			item.Description,
			item.Hours,
			item.Rate,
			item.Amount,
			item.CreatedAt,
			item.UpdatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) InsertTaxes(ctx context.Context, db *gorm.DB, taxes []domain.TaxDetail) error {
	for _, tax := range taxes {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO invoice_taxes (`+taxColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			tax.ID,
			tax.InvoiceID,
			tax.TaxType,
			tax.Rate,
			tax.Amount,
			tax.Region,
			tax.CreatedAt,
			tax.UpdatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) UpdateTaxAmounts(ctx context.Context, db *gorm.DB, taxes []domain.TaxDetail) error {
	for _, tax := range taxes {
		err := db.WithContext(ctx).Exec(
			`UPDATE invoice_taxes SET amount = ?, updated_at = ? WHERE invoice_id = ? AND id = ?`,
			tax.Amount,
			tax.UpdatedAt,
			tax.InvoiceID,
			tax.ID,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM invoice_items WHERE invoice_id = ?`, invoiceID).Error
}

func (r *repo) DeleteTaxes(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM invoice_taxes WHERE invoice_id = ?`, invoiceID).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices WHERE profile_id = ? AND id = ?`,
		profileID,
		id,
	).Scan(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Invoice, error) {
	where := []string{"profile_id = ?"}
	args := []any{filter.ProfileID}
	if filter.OrganizationID != 0 {
		where = append(where, "organization_id = ?")
		args = append(args, filter.OrganizationID)
	}

	var invoices []*domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY created_at DESC, id DESC`,
		args...,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, invoiceIDs []snowflake.ID) ([]domain.InvoiceItem, error) {
	if len(invoiceIDs) == 0 {
		return []domain.InvoiceItem{}, nil
	}
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+itemColumns+` FROM invoice_items
		 WHERE invoice_id IN ?
		 ORDER BY invoice_id ASC, date ASC, id ASC`,
		invoiceIDs,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListTaxes(ctx context.Context, db *gorm.DB, invoiceIDs []snowflake.ID) ([]domain.TaxDetail, error) {
	if len(invoiceIDs) == 0 {
		return []domain.TaxDetail{}, nil
	}
	var taxes []domain.TaxDetail
	err := db.WithContext(ctx).Raw(
		`SELECT `+taxColumns+` FROM invoice_taxes
		 WHERE invoice_id IN ?
		 ORDER BY invoice_id ASC, id ASC`,
		invoiceIDs,
	).Scan(&taxes).Error
	if err != nil {
		return nil, err
	}
	return taxes, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM invoices WHERE profile_id = ? AND id = ?`, profileID, id)
	return res.RowsAffected, res.Error
}

func (r *repo) DeleteByProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM invoices WHERE profile_id = ?`, profileID)
	return res.RowsAffected, res.Error
}

func (r *repo) DeleteByOrganization(ctx context.Context, db *gorm.DB, profileID, organizationID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM invoices WHERE profile_id = ? AND organization_id = ?`,
		profileID,
		organizationID,
	)
	return res.RowsAffected, res.Error
}
