package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Service is the cashier-facing entry point: one call takes a meter reading
// and returns the invoice it produced.
type Service interface {
	// SubmitReading records the reading and issues its invoice in a single
	// transaction. Either both exist afterwards or neither does.
	SubmitReading(ctx context.Context, req SubmitReadingRequest) (*SubmitReadingResponse, error)
}

type SubmitReadingRequest struct {
	CompanyID  string          `json:"company_id"`
	MeterID    string          `json:"meter_id"`
	Reading    decimal.Decimal `json:"reading"`
	Notes      string          `json:"notes"`
	RecordedAt *time.Time      `json:"recorded_at,omitempty"`
}

type SubmitReadingResponse struct {
	ReadingID       string          `json:"reading_id"`
	InvoiceID       string          `json:"invoice_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	ClientID        string          `json:"client_id"`
	Consumption     decimal.Decimal `json:"consumption"`
	BaseCharge      decimal.Decimal `json:"base_charge"`
	ExcessCharge    decimal.Decimal `json:"excess_charge"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DueDate         time.Time       `json:"due_date"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
}
