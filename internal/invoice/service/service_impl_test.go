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

	"github.com/aquabill/aquabill/internal/clock"
	clientdomain "github.com/aquabill/aquabill/internal/client/domain"
	companydomain "github.com/aquabill/aquabill/internal/company/domain"
	companyrepository "github.com/aquabill/aquabill/internal/company/repository"
	"github.com/aquabill/aquabill/internal/config"
	invoicedomain "github.com/aquabill/aquabill/internal/invoice/domain"
	"github.com/aquabill/aquabill/internal/invoice/repository"
	"github.com/aquabill/aquabill/internal/invoice/service"
	meterdomain "github.com/aquabill/aquabill/internal/meter/domain"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
	readingrepository "github.com/aquabill/aquabill/internal/reading/repository"
	"github.com/aquabill/aquabill/internal/testutil"
)

type fixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	svc     invoicedomain.Service
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

	f := &fixture{
		db:      db,
		node:    node,
		clock:   fc,
		company: node.Generate(),
		client:  node.Generate(),
		meter:   node.Generate(),
	}
	f.svc = service.New(service.Params{
		DB:        db,
		Log:       zap.NewNop(),
		Clock:     fc,
		GenID:     node,
		Repo:      repository.Provide(),
		Companies: companyrepository.Provide(),
		Readings:  readingrepository.Provide(),
		Billing:   config.StaticBillingConfigHolder(config.DefaultBillingConfig()),
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
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error; err != nil {
		t.Fatalf("seed meter: %v", err)
	}
	return f
}

func (f *fixture) seedReading(t *testing.T, previous, current string) snowflake.ID {
	t.Helper()
	prev := decimal.RequireFromString(previous)
	curr := decimal.RequireFromString(current)
	id := f.node.Generate()
	now := f.clock.Now()
	if err := f.db.Create(&readingdomain.MeterReading{
		ID:              id,
		CompanyID:       f.company,
		MeterID:         f.meter,
		ClientID:        f.client,
		Reading:         curr,
		PreviousReading: prev,
		Consumption:     curr.Sub(prev),
		RecordedAt:      now,
		CreatedAt:       now,
	}).Error; err != nil {
		t.Fatalf("seed reading: %v", err)
	}
	return id
}

func (f *fixture) invoiceCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Raw(`SELECT COUNT(*) FROM invoices`).Scan(&n).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	return n
}

func TestGenerateAboveThreshold(t *testing.T) {
	f := newFixture(t)
	readingID := f.seedReading(t, "100", "112.5")

	resp, err := f.svc.GenerateForReading(context.Background(), f.company.String(), readingID.String())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !resp.BaseCharge.Equal(decimal.RequireFromString("300")) {
		t.Fatalf("base charge = %s, want 300", resp.BaseCharge)
	}
	if !resp.ExcessCharge.Equal(decimal.RequireFromString("750")) {
		t.Fatalf("excess charge = %s, want 750", resp.ExcessCharge)
	}
	if !resp.TotalAmount.Equal(decimal.RequireFromString("1050")) {
		t.Fatalf("total = %s, want 1050", resp.TotalAmount)
	}
	if resp.Status != invoicedomain.StatusPending {
		t.Fatalf("status = %s, want PENDING", resp.Status)
	}
	if resp.InvoiceNumber != "INV-202501-00001" {
		t.Fatalf("invoice number = %s, want INV-202501-00001", resp.InvoiceNumber)
	}

	wantDue := f.clock.Now().AddDate(0, 0, 15)
	if !resp.DueDate.Equal(wantDue) {
		t.Fatalf("due date = %s, want %s", resp.DueDate, wantDue)
	}
	if resp.IsOverdue {
		t.Fatal("fresh invoice reported overdue")
	}
}

func TestGenerateWithinMinimumChargesBaseOnly(t *testing.T) {
	f := newFixture(t)
	readingID := f.seedReading(t, "100", "103")

	resp, err := f.svc.GenerateForReading(context.Background(), f.company.String(), readingID.String())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !resp.TotalAmount.Equal(decimal.RequireFromString("300")) {
		t.Fatalf("total = %s, want 300", resp.TotalAmount)
	}
	if !resp.ExcessCharge.IsZero() {
		t.Fatalf("excess charge = %s, want 0", resp.ExcessCharge)
	}
}

func TestGenerateIsIdempotentPerReading(t *testing.T) {
	f := newFixture(t)
	readingID := f.seedReading(t, "100", "110")

	if _, err := f.svc.GenerateForReading(context.Background(), f.company.String(), readingID.String()); err != nil {
		t.Fatalf("first generate: %v", err)
	}

	_, err := f.svc.GenerateForReading(context.Background(), f.company.String(), readingID.String())
	if !errors.Is(err, invoicedomain.ErrDuplicateInvoice) {
		t.Fatalf("err = %v, want ErrDuplicateInvoice", err)
	}

	if n := f.invoiceCount(t); n != 1 {
		t.Fatalf("invoice count = %d, want 1", n)
	}
}

func TestGenerateSequenceIncrementsPerCompany(t *testing.T) {
	f := newFixture(t)

	first := f.seedReading(t, "100", "110")
	second := f.seedReading(t, "110", "120")

	r1, err := f.svc.GenerateForReading(context.Background(), f.company.String(), first.String())
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	r2, err := f.svc.GenerateForReading(context.Background(), f.company.String(), second.String())
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}

	if r1.InvoiceNumber != "INV-202501-00001" || r2.InvoiceNumber != "INV-202501-00002" {
		t.Fatalf("invoice numbers = %s, %s", r1.InvoiceNumber, r2.InvoiceNumber)
	}
}

func TestGenerateRequiresConfiguredTariff(t *testing.T) {
	f := newFixture(t)
	readingID := f.seedReading(t, "100", "110")

	err := f.db.Exec(
		`UPDATE companies SET minimum_charge = 0, price_per_cubic_meter = 0 WHERE id = ?`,
		f.company,
	).Error
	if err != nil {
		t.Fatalf("clear tariff: %v", err)
	}

	_, err = f.svc.GenerateForReading(context.Background(), f.company.String(), readingID.String())
	if !errors.Is(err, companydomain.ErrTariffNotConfigured) {
		t.Fatalf("err = %v, want ErrTariffNotConfigured", err)
	}
	if n := f.invoiceCount(t); n != 0 {
		t.Fatalf("invoice count = %d, want 0", n)
	}
}

func TestGenerateUnknownReading(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GenerateForReading(context.Background(), f.company.String(), "424242424242")
	if !errors.Is(err, invoicedomain.ErrReadingNotFound) {
		t.Fatalf("err = %v, want ErrReadingNotFound", err)
	}
}

func TestListPendingFiltersByStatus(t *testing.T) {
	f := newFixture(t)

	first := f.seedReading(t, "100", "110")
	second := f.seedReading(t, "110", "120")
	r1, err := f.svc.GenerateForReading(context.Background(), f.company.String(), first.String())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := f.svc.GenerateForReading(context.Background(), f.company.String(), second.String()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := f.db.Exec(`UPDATE invoices SET status = 'PAID' WHERE id = ?`, r1.ID).Error; err != nil {
		t.Fatalf("settle invoice: %v", err)
	}

	pending, err := f.svc.ListPending(context.Background(), f.company.String())
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	if pending[0].ID == r1.ID {
		t.Fatal("settled invoice still listed as pending")
	}
}
