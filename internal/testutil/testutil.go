// Package testutil provides the shared sqlite-backed database harness used
// by service tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDB opens a fresh in-memory sqlite database with the billing schema.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

// Open is OpenDB for callers without a *testing.T, such as TestMain.
// FOR UPDATE clauses are stripped because sqlite has no row locks; a single
// connection keeps transactions serialized instead.
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE SKIP LOCKED", "")
			newSQL = strings.ReplaceAll(newSQL, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	if err := db.Callback().Query().Before("gorm:query").Register("sqlite_skip_locked", stripForUpdate); err != nil {
		return nil, err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("sqlite_skip_locked_row", stripForUpdate); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Tables lists the schema tables in delete-safe order.
var Tables = []string{"payments", "invoices", "meter_readings", "meters", "clients", "audit_logs", "companies"}

var schema = []string{
	`CREATE TABLE companies (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		tax_id TEXT,
		email TEXT,
		phone TEXT,
		address TEXT,
		city TEXT,
		province TEXT,
		minimum_charge NUMERIC NOT NULL DEFAULT 0,
		minimum_cubic_meters BIGINT NOT NULL DEFAULT 0,
		price_per_cubic_meter NUMERIC NOT NULL DEFAULT 0,
		accept_cash BOOLEAN NOT NULL DEFAULT TRUE,
		accept_card BOOLEAN NOT NULL DEFAULT FALSE,
		accept_bank_transfer BOOLEAN NOT NULL DEFAULT FALSE,
		accept_emola BOOLEAN NOT NULL DEFAULT FALSE,
		accept_mpesa BOOLEAN NOT NULL DEFAULT FALSE,
		bank_name TEXT,
		bank_account TEXT,
		bank_code TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE clients (
		id BIGINT PRIMARY KEY,
		company_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		document_number TEXT,
		email TEXT,
		phone TEXT,
		address TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE meters (
		id BIGINT PRIMARY KEY,
		company_id BIGINT NOT NULL,
		client_id BIGINT NOT NULL,
		serial_number TEXT NOT NULL,
		location TEXT,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		is_current_meter BOOLEAN NOT NULL DEFAULT TRUE,
		last_reading NUMERIC NOT NULL DEFAULT 0,
		last_reading_date TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX ux_meters_company_serial ON meters (company_id, serial_number)`,
	`CREATE TABLE meter_readings (
		id BIGINT PRIMARY KEY,
		company_id BIGINT NOT NULL,
		meter_id BIGINT NOT NULL,
		client_id BIGINT NOT NULL,
		reading NUMERIC NOT NULL,
		previous_reading NUMERIC NOT NULL,
		consumption NUMERIC NOT NULL,
		notes TEXT,
		recorded_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE invoices (
		id BIGINT PRIMARY KEY,
		company_id BIGINT NOT NULL,
		client_id BIGINT NOT NULL,
		meter_id BIGINT NOT NULL,
		reading_id BIGINT NOT NULL,
		invoice_number TEXT NOT NULL,
		sequence BIGINT NOT NULL,
		previous_reading NUMERIC NOT NULL,
		current_reading NUMERIC NOT NULL,
		consumption NUMERIC NOT NULL,
		base_charge NUMERIC NOT NULL,
		unit_price NUMERIC NOT NULL,
		total_amount NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		issued_at TIMESTAMP NOT NULL,
		due_date TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX ux_invoices_reading ON invoices (reading_id)`,
	`CREATE UNIQUE INDEX ux_invoices_company_number ON invoices (company_id, invoice_number)`,
	`CREATE TABLE payments (
		id BIGINT PRIMARY KEY,
		company_id BIGINT NOT NULL,
		invoice_id BIGINT NOT NULL,
		client_id BIGINT NOT NULL,
		amount NUMERIC NOT NULL,
		payment_method TEXT NOT NULL,
		payment_reference TEXT,
		receipt_number TEXT NOT NULL,
		notes TEXT,
		paid_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX ux_payments_receipt ON payments (receipt_number)`,
	`CREATE TABLE audit_logs (
		id BIGINT PRIMARY KEY,
		company_id BIGINT,
		action TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT,
		metadata TEXT NOT NULL DEFAULT '{}',
		ip_address TEXT,
		user_agent TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
}
