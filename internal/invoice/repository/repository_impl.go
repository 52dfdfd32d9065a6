package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	invoicedomain "github.com/aquabill/aquabill/internal/invoice/domain"
)

const invoiceColumns = `id, company_id, client_id, meter_id, reading_id, invoice_number, sequence,
	 previous_reading, current_reading, consumption, base_charge, unit_price, total_amount,
	 status, issued_at, due_date, created_at, updated_at`

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *invoicedomain.Invoice) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, company_id, client_id, meter_id, reading_id, invoice_number, sequence,
		 previous_reading, current_reading, consumption, base_charge, unit_price, total_amount,
		 status, issued_at, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (reading_id) DO NOTHING`,
		inv.ID,
		inv.CompanyID,
		inv.ClientID,
		inv.MeterID,
		inv.ReadingID,
		inv.InvoiceNumber,
		inv.Sequence,
		inv.PreviousReading,
		inv.CurrentReading,
		inv.Consumption,
		inv.BaseCharge,
		inv.UnitPrice,
		inv.TotalAmount,
		inv.Status,
		inv.IssuedAt,
		inv.DueDate,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) NextSequence(ctx context.Context, db *gorm.DB, companyID snowflake.ID) (int64, error) {
	var next int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM invoices WHERE company_id = ?`,
		companyID,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var inv invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var inv invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices WHERE company_id = ? AND id = ? FOR UPDATE`,
		companyID,
		id,
	).Scan(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) FindByReadingID(ctx context.Context, db *gorm.DB, companyID, readingID snowflake.ID) (*invoicedomain.Invoice, error) {
	var inv invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices WHERE company_id = ? AND reading_id = ?`,
		companyID,
		readingID,
	).Scan(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, status string) ([]invoicedomain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE company_id = ?`
	args := []any{companyID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY issued_at DESC`

	var invoices []invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(query, args...).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListByClient(ctx context.Context, db *gorm.DB, companyID, clientID snowflake.ID) ([]invoicedomain.Invoice, error) {
	var invoices []invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE company_id = ? AND client_id = ? ORDER BY issued_at DESC`,
		companyID,
		clientID,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListOverdue(ctx context.Context, db *gorm.DB, companyID snowflake.ID, asOf time.Time) ([]invoicedomain.Invoice, error) {
	var invoices []invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE company_id = ? AND status = ? AND due_date < ?
		 ORDER BY due_date ASC`,
		companyID,
		invoicedomain.StatusPending,
		asOf,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		at,
		id,
	).Error
}
