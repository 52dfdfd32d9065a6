package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	// Record accepts a payment against a pending invoice. Rejects amounts
	// exceeding the invoice's remaining balance and settles the invoice
	// when the balance reaches zero.
	Record(ctx context.Context, req RecordRequest) (*Response, error)
	GetByID(ctx context.Context, companyID, id string) (*Response, error)
	ListByInvoice(ctx context.Context, companyID, invoiceID string) ([]Response, error)
	ListByClient(ctx context.Context, companyID, clientID string) ([]Response, error)
}

type RecordRequest struct {
	CompanyID        string          `json:"company_id"`
	InvoiceID        string          `json:"invoice_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`
	Notes            string          `json:"notes"`
}

type Response struct {
	ID               string          `json:"id"`
	CompanyID        string          `json:"company_id"`
	InvoiceID        string          `json:"invoice_id"`
	ClientID         string          `json:"client_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`
	ReceiptNumber    string          `json:"receipt_number"`
	Notes            string          `json:"notes"`
	PaidAt           time.Time       `json:"paid_at"`
	CreatedAt        time.Time       `json:"created_at"`

	// Post-payment invoice state, for cashier receipts.
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	InvoiceStatus   string          `json:"invoice_status"`
}

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidMethod     = errors.New("invalid_payment_method")
	ErrMethodNotAccepted = errors.New("payment_method_not_accepted")
	ErrInvoiceNotFound   = errors.New("invoice_not_found")
	ErrAlreadySettled    = errors.New("invoice_already_settled")
	ErrNotFound          = errors.New("payment_not_found")
)

// OverpaymentError rejects a payment exceeding the invoice's remaining
// balance, reporting both sides so the caller can retry with an exact
// amount.
type OverpaymentError struct {
	Remaining decimal.Decimal
	Attempted decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("overpayment_rejected: remaining %s, attempted %s", e.Remaining, e.Attempted)
}

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
