package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MeterReading is one accepted observation of a meter's counter. Consumption
// is persisted at write time so invoices never recompute it.
type MeterReading struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	CompanyID       snowflake.ID    `json:"company_id" gorm:"column:company_id;not null;index:ix_meter_readings_company"`
	MeterID         snowflake.ID    `json:"meter_id" gorm:"column:meter_id;not null;index:ix_meter_readings_meter"`
	ClientID        snowflake.ID    `json:"client_id" gorm:"column:client_id;not null"`
	Reading         decimal.Decimal `json:"reading" gorm:"type:numeric(18,3);not null"`
	PreviousReading decimal.Decimal `json:"previous_reading" gorm:"type:numeric(18,3);not null"`
	Consumption     decimal.Decimal `json:"consumption" gorm:"type:numeric(18,3);not null"`
	Notes           string          `json:"notes" gorm:"type:text"`
	RecordedAt      time.Time       `json:"recorded_at" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MeterReading) TableName() string { return "meter_readings" }
