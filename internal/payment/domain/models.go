package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Payment methods.
const (
	MethodCash         = "CASH"
	MethodCard         = "CARD"
	MethodBankTransfer = "BANK_TRANSFER"
	MethodEmola        = "EMOLA"
	MethodMpesa        = "MPESA"
)

// Payment is an append-only ledger entry against an invoice. Rows are never
// updated or deleted; an invoice's paid total is always the sum of its
// payments.
type Payment struct {
	ID               snowflake.ID    `json:"id" gorm:"primaryKey"`
	CompanyID        snowflake.ID    `json:"company_id" gorm:"column:company_id;not null"`
	InvoiceID        snowflake.ID    `json:"invoice_id" gorm:"column:invoice_id;not null;index:ix_payments_invoice"`
	ClientID         snowflake.ID    `json:"client_id" gorm:"column:client_id;not null;index:ix_payments_client"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:numeric(18,2);not null"`
	PaymentMethod    string          `json:"payment_method" gorm:"type:text;not null"`
	PaymentReference string          `json:"payment_reference" gorm:"type:text"`
	ReceiptNumber    string          `json:"receipt_number" gorm:"type:text;not null;uniqueIndex:ux_payments_receipt"`
	Notes            string          `json:"notes" gorm:"type:text"`
	PaidAt           time.Time       `json:"paid_at" gorm:"not null"`
	CreatedAt        time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "payments" }

func ValidMethod(method string) bool {
	switch method {
	case MethodCash, MethodCard, MethodBankTransfer, MethodEmola, MethodMpesa:
		return true
	}
	return false
}
