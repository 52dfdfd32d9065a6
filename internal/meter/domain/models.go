package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Meter statuses. Only ACTIVE meters accept new readings.
const (
	StatusActive   = "ACTIVE"
	StatusDamaged  = "DAMAGED"
	StatusReplaced = "REPLACED"
	StatusInactive = "INACTIVE"
)

// Meter is a physical water meter installed at a client's property.
// LastReading mirrors the most recent accepted reading so monotonicity can
// be enforced with a single row lock.
type Meter struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	CompanyID       snowflake.ID    `json:"company_id" gorm:"column:company_id;not null;index:ux_meters_company_serial,priority:1"`
	ClientID        snowflake.ID    `json:"client_id" gorm:"column:client_id;not null;index:ix_meters_client"`
	SerialNumber    string          `json:"serial_number" gorm:"type:text;not null;index:ux_meters_company_serial,priority:2"`
	Location        string          `json:"location" gorm:"type:text"`
	Status          string          `json:"status" gorm:"type:text;not null;default:'ACTIVE'"`
	IsCurrentMeter  bool            `json:"is_current_meter" gorm:"not null;default:true"`
	LastReading     decimal.Decimal `json:"last_reading" gorm:"type:numeric(18,3);not null"`
	LastReadingDate *time.Time      `json:"last_reading_date"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Meter) TableName() string { return "meters" }

// Billable reports whether the meter currently accepts readings.
func (m *Meter) Billable() bool {
	return m.Status == StatusActive && m.IsCurrentMeter
}

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusDamaged, StatusReplaced, StatusInactive:
		return true
	}
	return false
}
