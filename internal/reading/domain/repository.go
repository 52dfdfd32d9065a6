package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reading *MeterReading) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*MeterReading, error)
	ListByMeter(ctx context.Context, db *gorm.DB, companyID, meterID snowflake.ID) ([]MeterReading, error)
	ListByCompany(ctx context.Context, db *gorm.DB, companyID snowflake.ID, limit int) ([]MeterReading, error)
}
