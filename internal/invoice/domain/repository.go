package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	UpdateInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertItems(ctx context.Context, db *gorm.DB, items []InvoiceItem) error
	InsertTaxes(ctx context.Context, db *gorm.DB, taxes []TaxDetail) error
	UpdateTaxAmounts(ctx context.Context, db *gorm.DB, taxes []TaxDetail) error
	DeleteItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error
	DeleteTaxes(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error

	FindByID(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Invoice, error)
	ListItems(ctx context.Context, db *gorm.DB, invoiceIDs []snowflake.ID) ([]InvoiceItem, error)
	ListTaxes(ctx context.Context, db *gorm.DB, invoiceIDs []snowflake.ID) ([]TaxDetail, error)

	Delete(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (int64, error)
	DeleteByProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (int64, error)
	DeleteByOrganization(ctx context.Context, db *gorm.DB, profileID, organizationID snowflake.ID) (int64, error)
}

type ListFilter struct {
	ProfileID      snowflake.ID
	OrganizationID snowflake.ID
}
