package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
)

// Invoice is an immutable bill derived from exactly one meter reading. The
// reading snapshot (previous, current, consumption) and the priced amounts
// are frozen at issue time; later tariff changes never touch issued
// invoices.
type Invoice struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	CompanyID     snowflake.ID `json:"company_id" gorm:"column:company_id;not null;index:ux_invoices_company_number,priority:1"`
	ClientID      snowflake.ID `json:"client_id" gorm:"column:client_id;not null;index:ix_invoices_client"`
	MeterID       snowflake.ID `json:"meter_id" gorm:"column:meter_id;not null"`
	ReadingID     snowflake.ID `json:"reading_id" gorm:"column:reading_id;not null;uniqueIndex:ux_invoices_reading"`
	InvoiceNumber string       `json:"invoice_number" gorm:"type:text;not null;index:ux_invoices_company_number,priority:2"`
	Sequence      int64        `json:"sequence" gorm:"not null"`

	PreviousReading decimal.Decimal `json:"previous_reading" gorm:"type:numeric(18,3);not null"`
	CurrentReading  decimal.Decimal `json:"current_reading" gorm:"type:numeric(18,3);not null"`
	Consumption     decimal.Decimal `json:"consumption" gorm:"type:numeric(18,3);not null"`

	BaseCharge  decimal.Decimal `json:"base_charge" gorm:"type:numeric(18,2);not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(18,2);not null"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(18,2);not null"`

	Status    string    `json:"status" gorm:"type:text;not null;default:'PENDING'"`
	IssuedAt  time.Time `json:"issued_at" gorm:"not null"`
	DueDate   time.Time `json:"due_date" gorm:"not null;index:ix_invoices_status_due,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Invoice) TableName() string { return "invoices" }

// Overdue reports whether the invoice is unpaid past its due date.
func (i *Invoice) Overdue(now time.Time) bool {
	return i.Status == StatusPending && i.DueDate.Before(now)
}
