package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	// Report lists clients holding unpaid invoices past their due date,
	// grouped per client with aging buckets. Invoices due today are not
	// delinquent.
	Report(ctx context.Context, req ReportRequest) (*Report, error)
}

type ReportRequest struct {
	CompanyID string `json:"company_id"`
	// ClientID narrows the report to a single client when set.
	ClientID string `json:"client_id,omitempty"`
}

type Report struct {
	CompanyID        string              `json:"company_id"`
	GeneratedAt      time.Time           `json:"generated_at"`
	TotalOutstanding decimal.Decimal     `json:"total_outstanding"`
	ClientCount      int                 `json:"client_count"`
	Clients          []ClientDelinquency `json:"clients"`
}

type ClientDelinquency struct {
	ClientID      string              `json:"client_id"`
	ClientName    string              `json:"client_name"`
	TotalDue      decimal.Decimal     `json:"total_due"`
	OldestDueDate time.Time           `json:"oldest_due_date"`
	Invoices      []DelinquentInvoice `json:"invoices"`
}

type DelinquentInvoice struct {
	InvoiceID       string          `json:"invoice_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DueDate         time.Time       `json:"due_date"`
	DaysOverdue     int             `json:"days_overdue"`
	AgingBucket     string          `json:"aging_bucket"`
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidClient  = errors.New("invalid_client")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
