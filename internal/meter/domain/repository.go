package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, meter *Meter) error
	Update(ctx context.Context, db *gorm.DB, meter *Meter) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Meter, error)
	// FindByIDForUpdate locks the meter row for the duration of the
	// surrounding transaction. Readings serialize on this lock.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Meter, error)
	FindBySerial(ctx context.Context, db *gorm.DB, companyID snowflake.ID, serial string) (*Meter, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]Meter, error)
	ListByClient(ctx context.Context, db *gorm.DB, companyID, clientID snowflake.ID) ([]Meter, error)
	UpdateLastReading(ctx context.Context, db *gorm.DB, id snowflake.ID, reading decimal.Decimal, at time.Time) error
}
