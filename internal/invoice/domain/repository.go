package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Insert writes the invoice guarded by the unique index on reading_id.
	// Returns false without error when an invoice for the reading already
	// exists.
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) (bool, error)
	// NextSequence returns MAX(sequence)+1 for the company. Callers must
	// hold the company row lock to keep numbering gapless under
	// concurrency.
	NextSequence(ctx context.Context, db *gorm.DB, companyID snowflake.ID) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Invoice, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Invoice, error)
	FindByReadingID(ctx context.Context, db *gorm.DB, companyID, readingID snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, status string) ([]Invoice, error)
	ListByClient(ctx context.Context, db *gorm.DB, companyID, clientID snowflake.ID) ([]Invoice, error)
	ListOverdue(ctx context.Context, db *gorm.DB, companyID snowflake.ID, asOf time.Time) ([]Invoice, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, at time.Time) error
}
