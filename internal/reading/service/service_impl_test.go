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
	meterdomain "github.com/aquabill/aquabill/internal/meter/domain"
	meterrepository "github.com/aquabill/aquabill/internal/meter/repository"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
	"github.com/aquabill/aquabill/internal/reading/repository"
	"github.com/aquabill/aquabill/internal/reading/service"
	"github.com/aquabill/aquabill/internal/testutil"
)

type fixture struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	svc     readingdomain.Service
	meters  meterdomain.Repository
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
		clock:   fc,
		meters:  meterrepository.Provide(),
		company: node.Generate(),
		client:  node.Generate(),
		meter:   node.Generate(),
	}
	f.svc = service.New(service.Params{
		DB:     db,
		Log:    zap.NewNop(),
		Clock:  fc,
		GenID:  node,
		Repo:   repository.Provide(),
		Meters: f.meters,
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

func (f *fixture) record(t *testing.T, reading string) (*readingdomain.Response, error) {
	t.Helper()
	return f.svc.Record(context.Background(), readingdomain.RecordRequest{
		CompanyID: f.company.String(),
		MeterID:   f.meter.String(),
		Reading:   decimal.RequireFromString(reading),
	})
}

func (f *fixture) readingCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Raw(`SELECT COUNT(*) FROM meter_readings`).Scan(&n).Error; err != nil {
		t.Fatalf("count readings: %v", err)
	}
	return n
}

func (f *fixture) currentMeter(t *testing.T) *meterdomain.Meter {
	t.Helper()
	m, err := f.meters.FindByID(context.Background(), f.db, f.company, f.meter)
	if err != nil {
		t.Fatalf("find meter: %v", err)
	}
	if m == nil {
		t.Fatal("meter disappeared")
	}
	return m
}

func TestRecordComputesConsumptionAndAdvancesMeter(t *testing.T) {
	f := newFixture(t)

	resp, err := f.record(t, "112.5")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !resp.PreviousReading.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("previous reading = %s, want 100", resp.PreviousReading)
	}
	if !resp.Consumption.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("consumption = %s, want 12.5", resp.Consumption)
	}
	if resp.ClientID != f.client.String() {
		t.Fatalf("client id = %s, want %s", resp.ClientID, f.client)
	}

	m := f.currentMeter(t)
	if !m.LastReading.Equal(decimal.RequireFromString("112.5")) {
		t.Fatalf("meter last reading = %s, want 112.5", m.LastReading)
	}
	if m.LastReadingDate == nil {
		t.Fatal("meter last reading date not set")
	}
}

func TestRecordEqualReadingYieldsZeroConsumption(t *testing.T) {
	f := newFixture(t)

	resp, err := f.record(t, "100")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !resp.Consumption.IsZero() {
		t.Fatalf("consumption = %s, want 0", resp.Consumption)
	}
}

func TestRecordRejectsRegression(t *testing.T) {
	f := newFixture(t)

	if _, err := f.record(t, "150"); err != nil {
		t.Fatalf("record: %v", err)
	}

	_, err := f.record(t, "149.9")
	if !errors.Is(err, readingdomain.ErrReadingRegression) {
		t.Fatalf("err = %v, want ErrReadingRegression", err)
	}

	if n := f.readingCount(t); n != 1 {
		t.Fatalf("reading count = %d, want 1", n)
	}
	if m := f.currentMeter(t); !m.LastReading.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("meter last reading = %s, want 150", m.LastReading)
	}
}

func TestRecordRejectsInactiveMeter(t *testing.T) {
	f := newFixture(t)

	for _, status := range []string{meterdomain.StatusDamaged, meterdomain.StatusReplaced, meterdomain.StatusInactive} {
		if err := f.db.Exec(`UPDATE meters SET status = ? WHERE id = ?`, status, f.meter).Error; err != nil {
			t.Fatalf("set status: %v", err)
		}
		if _, err := f.record(t, "200"); !errors.Is(err, readingdomain.ErrMeterInactive) {
			t.Fatalf("status %s: err = %v, want ErrMeterInactive", status, err)
		}
	}

	if n := f.readingCount(t); n != 0 {
		t.Fatalf("reading count = %d, want 0", n)
	}
}

func TestRecordRejectsRetiredMeter(t *testing.T) {
	f := newFixture(t)

	if err := f.db.Exec(`UPDATE meters SET is_current_meter = FALSE WHERE id = ?`, f.meter).Error; err != nil {
		t.Fatalf("retire meter: %v", err)
	}
	if _, err := f.record(t, "200"); !errors.Is(err, readingdomain.ErrMeterInactive) {
		t.Fatalf("err = %v, want ErrMeterInactive", err)
	}
}

func TestRecordRejectsNegativeReading(t *testing.T) {
	f := newFixture(t)

	if _, err := f.record(t, "-1"); !errors.Is(err, readingdomain.ErrInvalidReading) {
		t.Fatalf("err = %v, want ErrInvalidReading", err)
	}
}

func TestRecordUnknownMeter(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Record(context.Background(), readingdomain.RecordRequest{
		CompanyID: f.company.String(),
		MeterID:   "999999999",
		Reading:   decimal.RequireFromString("10"),
	})
	if !errors.Is(err, readingdomain.ErrMeterNotFound) {
		t.Fatalf("err = %v, want ErrMeterNotFound", err)
	}
}

func TestListByMeterReturnsHistory(t *testing.T) {
	f := newFixture(t)

	if _, err := f.record(t, "110"); err != nil {
		t.Fatalf("record: %v", err)
	}
	f.clock.Advance(24 * time.Hour)
	if _, err := f.record(t, "125"); err != nil {
		t.Fatalf("record: %v", err)
	}

	items, err := f.svc.ListByMeter(context.Background(), f.company.String(), f.meter.String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
}
