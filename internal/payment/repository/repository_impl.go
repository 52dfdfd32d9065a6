package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	paymentdomain "github.com/aquabill/aquabill/internal/payment/domain"
)

const paymentColumns = `id, company_id, invoice_id, client_id, amount, payment_method,
	 payment_reference, receipt_number, notes, paid_at, created_at`

type repo struct{}

func Provide() paymentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *paymentdomain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, company_id, invoice_id, client_id, amount, payment_method,
		 payment_reference, receipt_number, notes, paid_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.CompanyID,
		p.InvoiceID,
		p.ClientID,
		p.Amount,
		p.PaymentMethod,
		p.PaymentReference,
		p.ReceiptNumber,
		p.Notes,
		p.PaidAt,
		p.CreatedAt,
	).Error
}

func (r *repo) SumByInvoice(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ?`,
		invoiceID,
	).Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*paymentdomain.Payment, error) {
	var payment paymentdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+` FROM payments WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) FindByReceipt(ctx context.Context, db *gorm.DB, companyID snowflake.ID, receipt string) (*paymentdomain.Payment, error) {
	var payment paymentdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+` FROM payments WHERE company_id = ? AND receipt_number = ?`,
		companyID,
		receipt,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) ListByInvoice(ctx context.Context, db *gorm.DB, companyID, invoiceID snowflake.ID) ([]paymentdomain.Payment, error) {
	var payments []paymentdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+` FROM payments
		 WHERE company_id = ? AND invoice_id = ? ORDER BY paid_at ASC`,
		companyID,
		invoiceID,
	).Scan(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) ListByClient(ctx context.Context, db *gorm.DB, companyID, clientID snowflake.ID) ([]paymentdomain.Payment, error) {
	var payments []paymentdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+` FROM payments
		 WHERE company_id = ? AND client_id = ? ORDER BY paid_at DESC`,
		companyID,
		clientID,
	).Scan(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
