package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	// Record validates and persists a reading in its own transaction.
	Record(ctx context.Context, req RecordRequest) (*Response, error)
	// RecordTx is Record running inside a caller-owned transaction, for
	// flows that must pair the reading with more writes atomically.
	RecordTx(ctx context.Context, tx *gorm.DB, req RecordRequest) (*Response, error)
	GetByID(ctx context.Context, companyID, id string) (*Response, error)
	ListByMeter(ctx context.Context, companyID, meterID string) ([]Response, error)
	ListByCompany(ctx context.Context, companyID string, limit int) ([]Response, error)
}

type RecordRequest struct {
	CompanyID  string          `json:"company_id"`
	MeterID    string          `json:"meter_id"`
	Reading    decimal.Decimal `json:"reading"`
	Notes      string          `json:"notes"`
	RecordedAt *time.Time      `json:"recorded_at,omitempty"`
}

type Response struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	MeterID         string          `json:"meter_id"`
	ClientID        string          `json:"client_id"`
	Reading         decimal.Decimal `json:"reading"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	Consumption     decimal.Decimal `json:"consumption"`
	Notes           string          `json:"notes"`
	RecordedAt      time.Time       `json:"recorded_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidReading    = errors.New("invalid_reading")
	ErrMeterNotFound     = errors.New("meter_not_found")
	ErrMeterInactive     = errors.New("meter_inactive")
	ErrReadingRegression = errors.New("reading_regression")
	ErrNotFound          = errors.New("reading_not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
