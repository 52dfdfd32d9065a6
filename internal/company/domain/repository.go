package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, company *Company) error
	Update(ctx context.Context, db *gorm.DB, company *Company) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	// FindByIDForUpdate locks the company row for the duration of the
	// surrounding transaction. Used to serialize invoice numbering.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	List(ctx context.Context, db *gorm.DB) ([]Company, error)
}
