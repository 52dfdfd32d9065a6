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
	// GenerateForReading issues the invoice for an already persisted
	// reading in its own transaction.
	GenerateForReading(ctx context.Context, companyID, readingID string) (*Response, error)
	// GenerateTx issues the invoice inside a caller-owned transaction.
	GenerateTx(ctx context.Context, tx *gorm.DB, companyID, readingID snowflake.ID) (*Response, error)
	GetByID(ctx context.Context, companyID, id string) (*Response, error)
	List(ctx context.Context, companyID, status string) ([]Response, error)
	ListPending(ctx context.Context, companyID string) ([]Response, error)
	ListByClient(ctx context.Context, companyID, clientID string) ([]Response, error)
}

type Response struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	ClientID      string `json:"client_id"`
	MeterID       string `json:"meter_id"`
	ReadingID     string `json:"reading_id"`
	InvoiceNumber string `json:"invoice_number"`

	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
	Consumption     decimal.Decimal `json:"consumption"`

	BaseCharge   decimal.Decimal `json:"base_charge"`
	ExcessCharge decimal.Decimal `json:"excess_charge"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalAmount  decimal.Decimal `json:"total_amount"`

	Status    string    `json:"status"`
	IsOverdue bool      `json:"is_overdue"`
	IssuedAt  time.Time `json:"issued_at"`
	DueDate   time.Time `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidCompany   = errors.New("invalid_company")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrReadingNotFound  = errors.New("reading_not_found")
	ErrDuplicateInvoice = errors.New("duplicate_invoice")
	ErrNotFound         = errors.New("invoice_not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
