package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, org *Organization) error
	Update(ctx context.Context, db *gorm.DB, org *Organization) error
	FindByID(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (*Organization, error)
	List(ctx context.Context, db *gorm.DB, profileID snowflake.ID) ([]*Organization, error)
	Delete(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (int64, error)
	DeleteAll(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (int64, error)
}
