package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, companyID string) ([]Response, error)
	ListByClient(ctx context.Context, companyID, clientID string) ([]Response, error)
	GetByID(ctx context.Context, companyID, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	// Replace retires the current meter and installs a new one for the same
	// client, carrying over nothing: the new meter starts at its own initial
	// reading.
	Replace(ctx context.Context, req ReplaceRequest) (*Response, error)
}

type CreateRequest struct {
	CompanyID      string          `json:"company_id"`
	ClientID       string          `json:"client_id"`
	SerialNumber   string          `json:"serial_number"`
	Location       string          `json:"location"`
	InitialReading decimal.Decimal `json:"initial_reading"`
}

type UpdateRequest struct {
	CompanyID string  `json:"company_id"`
	ID        string  `json:"id"`
	Location  *string `json:"location,omitempty"`
	Status    *string `json:"status,omitempty"`
}

type ReplaceRequest struct {
	CompanyID      string          `json:"company_id"`
	MeterID        string          `json:"meter_id"`
	SerialNumber   string          `json:"serial_number"`
	Location       string          `json:"location"`
	InitialReading decimal.Decimal `json:"initial_reading"`
}

type Response struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	ClientID        string          `json:"client_id"`
	SerialNumber    string          `json:"serial_number"`
	Location        string          `json:"location"`
	Status          string          `json:"status"`
	IsCurrentMeter  bool            `json:"is_current_meter"`
	LastReading     decimal.Decimal `json:"last_reading"`
	LastReadingDate *time.Time      `json:"last_reading_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidClient  = errors.New("invalid_client")
	ErrInvalidSerial  = errors.New("invalid_serial_number")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrInvalidReading = errors.New("invalid_initial_reading")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("meter_not_found")
	ErrSerialTaken    = errors.New("serial_number_taken")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
