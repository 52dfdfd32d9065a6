package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditrepository "github.com/aquabill/aquabill/internal/audit/repository"
	auditservice "github.com/aquabill/aquabill/internal/audit/service"
	billingdomain "github.com/aquabill/aquabill/internal/billing/domain"
	"github.com/aquabill/aquabill/internal/billing/service"
	"github.com/aquabill/aquabill/internal/clock"
	clientdomain "github.com/aquabill/aquabill/internal/client/domain"
	companydomain "github.com/aquabill/aquabill/internal/company/domain"
	companyrepository "github.com/aquabill/aquabill/internal/company/repository"
	"github.com/aquabill/aquabill/internal/config"
	invoicerepository "github.com/aquabill/aquabill/internal/invoice/repository"
	invoiceservice "github.com/aquabill/aquabill/internal/invoice/service"
	meterdomain "github.com/aquabill/aquabill/internal/meter/domain"
	meterrepository "github.com/aquabill/aquabill/internal/meter/repository"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
	readingrepository "github.com/aquabill/aquabill/internal/reading/repository"
	readingservice "github.com/aquabill/aquabill/internal/reading/service"
	"github.com/aquabill/aquabill/internal/testutil"
)

type fixture struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	svc     billingdomain.Service
	company snowflake.ID
	client  snowflake.ID
	meter   snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fc := clock.NewFakeClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	holder := config.StaticBillingConfigHolder(config.DefaultBillingConfig())

	readings := readingservice.New(readingservice.Params{
		DB:     db,
		Log:    log,
		Clock:  fc,
		GenID:  node,
		Repo:   readingrepository.Provide(),
		Meters: meterrepository.Provide(),
	})
	invoices := invoiceservice.New(invoiceservice.Params{
		DB:        db,
		Log:       log,
		Clock:     fc,
		GenID:     node,
		Repo:      invoicerepository.Provide(),
		Companies: companyrepository.Provide(),
		Readings:  readingrepository.Provide(),
		Billing:   holder,
	})
	audit := auditservice.New(auditservice.Params{
		DB:    db,
		Log:   log,
		Clock: fc,
		GenID: node,
		Repo:  auditrepository.Provide(),
	})

	f := &fixture{
		db:      db,
		clock:   fc,
		company: node.Generate(),
		client:  node.Generate(),
		meter:   node.Generate(),
	}
	f.svc = service.New(service.Params{
		DB:       db,
		Log:      log,
		Readings: readings,
		Invoices: invoices,
		Audit:    audit,
	})

	now := fc.Now()
	if err := db.Create(&companydomain.Company{
		ID:                 f.company,
		Name:               "Aguas do Norte",
		MinimumCharge:      decimal.RequireFromString("300"),
		MinimumCubicMeters: 5,
		PricePerCubicMeter: decimal.RequireFromString("100"),
		AcceptCash:         true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	if err := db.Create(&clientdomain.Client{
		ID:        f.client,
		CompanyID: f.company,
		Name:      "Joana Macamo",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	if err := db.Create(&meterdomain.Meter{
		ID:             f.meter,
		CompanyID:      f.company,
		ClientID:       f.client,
		SerialNumber:   "WM-0001",
		Status:         meterdomain.StatusActive,
		IsCurrentMeter: true,
		LastReading:    decimal.RequireFromString("100"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error; err != nil {
		t.Fatalf("seed meter: %v", err)
	}
	return f
}

func (f *fixture) submit(reading string) (*billingdomain.SubmitReadingResponse, error) {
	return f.svc.SubmitReading(context.Background(), billingdomain.SubmitReadingRequest{
		CompanyID: f.company.String(),
		MeterID:   f.meter.String(),
		Reading:   decimal.RequireFromString(reading),
	})
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	if err := f.db.Raw(`SELECT COUNT(*) FROM ` + table).Scan(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSubmitReadingProducesInvoice(t *testing.T) {
	f := newFixture(t)

	resp, err := f.submit("112.5")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !resp.Consumption.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("consumption = %s, want 12.5", resp.Consumption)
	}
	if !resp.TotalAmount.Equal(decimal.RequireFromString("1050")) {
		t.Fatalf("total = %s, want 1050", resp.TotalAmount)
	}
	if resp.InvoiceNumber != "INV-202501-00001" {
		t.Fatalf("invoice number = %s", resp.InvoiceNumber)
	}
	if resp.ClientID != f.client.String() {
		t.Fatalf("client id = %s, want %s", resp.ClientID, f.client)
	}

	if n := f.count(t, "meter_readings"); n != 1 {
		t.Fatalf("reading count = %d, want 1", n)
	}
	if n := f.count(t, "invoices"); n != 1 {
		t.Fatalf("invoice count = %d, want 1", n)
	}
	if n := f.count(t, "audit_logs"); n != 2 {
		t.Fatalf("audit count = %d, want 2", n)
	}
}

func TestSubmitReadingRollsBackWithoutTariff(t *testing.T) {
	f := newFixture(t)

	err := f.db.Exec(
		`UPDATE companies SET minimum_charge = 0, price_per_cubic_meter = 0 WHERE id = ?`,
		f.company,
	).Error
	if err != nil {
		t.Fatalf("clear tariff: %v", err)
	}

	_, err = f.submit("112.5")
	if !errors.Is(err, companydomain.ErrTariffNotConfigured) {
		t.Fatalf("err = %v, want ErrTariffNotConfigured", err)
	}

	// The reading must not survive a failed invoice generation.
	if n := f.count(t, "meter_readings"); n != 0 {
		t.Fatalf("reading count = %d, want 0", n)
	}
	if n := f.count(t, "invoices"); n != 0 {
		t.Fatalf("invoice count = %d, want 0", n)
	}
	if n := f.count(t, "audit_logs"); n != 0 {
		t.Fatalf("audit count = %d, want 0", n)
	}

	var lastReading decimal.Decimal
	if err := f.db.Raw(`SELECT last_reading FROM meters WHERE id = ?`, f.meter).Scan(&lastReading).Error; err != nil {
		t.Fatalf("load meter: %v", err)
	}
	if !lastReading.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("meter last reading = %s, want 100", lastReading)
	}
}

func TestSubmitReadingRejectsRegressionAtomically(t *testing.T) {
	f := newFixture(t)

	if _, err := f.submit("150"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := f.submit("140")
	if !errors.Is(err, readingdomain.ErrReadingRegression) {
		t.Fatalf("err = %v, want ErrReadingRegression", err)
	}
	if n := f.count(t, "meter_readings"); n != 1 {
		t.Fatalf("reading count = %d, want 1", n)
	}
	if n := f.count(t, "invoices"); n != 1 {
		t.Fatalf("invoice count = %d, want 1", n)
	}
}
