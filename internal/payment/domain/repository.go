package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	// SumByInvoice totals the amounts paid against an invoice. Callers
	// enforcing the overpayment invariant must hold the invoice row lock.
	SumByInvoice(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (decimal.Decimal, error)
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Payment, error)
	FindByReceipt(ctx context.Context, db *gorm.DB, companyID snowflake.ID, receipt string) (*Payment, error)
	ListByInvoice(ctx context.Context, db *gorm.DB, companyID, invoiceID snowflake.ID) ([]Payment, error)
	ListByClient(ctx context.Context, db *gorm.DB, companyID, clientID snowflake.ID) ([]Payment, error)
}
