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

	clientdomain "github.com/aquabill/aquabill/internal/client/domain"
	clientrepository "github.com/aquabill/aquabill/internal/client/repository"
	"github.com/aquabill/aquabill/internal/clock"
	companydomain "github.com/aquabill/aquabill/internal/company/domain"
	meterdomain "github.com/aquabill/aquabill/internal/meter/domain"
	"github.com/aquabill/aquabill/internal/meter/repository"
	"github.com/aquabill/aquabill/internal/meter/service"
	"github.com/aquabill/aquabill/internal/testutil"
)

type fixture struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	svc     meterdomain.Service
	company snowflake.ID
	client  snowflake.ID
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
		company: node.Generate(),
		client:  node.Generate(),
	}
	f.svc = service.New(service.Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   fc,
		GenID:   node,
		Repo:    repository.Provide(),
		Clients: clientrepository.Provide(),
	})

	now := fc.Now()
	if err := db.Create(&companydomain.Company{
		ID:            f.company,
		Name:          "Aguas do Norte",
		MinimumCharge: decimal.RequireFromString("300"),
		AcceptCash:    true,
		CreatedAt:     now,
		UpdatedAt:     now,
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
	return f
}

func (f *fixture) create(t *testing.T, serial, initial string) *meterdomain.Response {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), meterdomain.CreateRequest{
		CompanyID:      f.company.String(),
		ClientID:       f.client.String(),
		SerialNumber:   serial,
		Location:       "Bairro Central",
		InitialReading: decimal.RequireFromString(initial),
	})
	if err != nil {
		t.Fatalf("create meter: %v", err)
	}
	return resp
}

func TestCreateMeterStartsActive(t *testing.T) {
	f := newFixture(t)

	resp := f.create(t, "WM-0001", "100")
	if resp.Status != meterdomain.StatusActive {
		t.Fatalf("status = %s, want ACTIVE", resp.Status)
	}
	if !resp.IsCurrentMeter {
		t.Fatal("new meter is not current")
	}
	if !resp.LastReading.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("last reading = %s, want 100", resp.LastReading)
	}
}

func TestCreateMeterRejectsDuplicateSerial(t *testing.T) {
	f := newFixture(t)

	f.create(t, "WM-0001", "0")
	_, err := f.svc.Create(context.Background(), meterdomain.CreateRequest{
		CompanyID:      f.company.String(),
		ClientID:       f.client.String(),
		SerialNumber:   "WM-0001",
		InitialReading: decimal.Zero,
	})
	if !errors.Is(err, meterdomain.ErrSerialTaken) {
		t.Fatalf("err = %v, want ErrSerialTaken", err)
	}
}

func TestCreateMeterRejectsUnknownClient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), meterdomain.CreateRequest{
		CompanyID:      f.company.String(),
		ClientID:       "424242424242",
		SerialNumber:   "WM-0001",
		InitialReading: decimal.Zero,
	})
	if !errors.Is(err, meterdomain.ErrInvalidClient) {
		t.Fatalf("err = %v, want ErrInvalidClient", err)
	}
}

func TestReplaceRetiresOldMeter(t *testing.T) {
	f := newFixture(t)

	old := f.create(t, "WM-0001", "850")
	replacement, err := f.svc.Replace(context.Background(), meterdomain.ReplaceRequest{
		CompanyID:      f.company.String(),
		MeterID:        old.ID,
		SerialNumber:   "WM-0002",
		Location:       "Bairro Central",
		InitialReading: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if replacement.SerialNumber != "WM-0002" {
		t.Fatalf("serial = %s, want WM-0002", replacement.SerialNumber)
	}
	if !replacement.LastReading.IsZero() {
		t.Fatalf("replacement last reading = %s, want 0", replacement.LastReading)
	}
	if replacement.Status != meterdomain.StatusActive || !replacement.IsCurrentMeter {
		t.Fatalf("replacement status = %s current = %v", replacement.Status, replacement.IsCurrentMeter)
	}

	retired, err := f.svc.GetByID(context.Background(), f.company.String(), old.ID)
	if err != nil {
		t.Fatalf("get retired meter: %v", err)
	}
	if retired.Status != meterdomain.StatusReplaced {
		t.Fatalf("retired status = %s, want REPLACED", retired.Status)
	}
	if retired.IsCurrentMeter {
		t.Fatal("retired meter still marked current")
	}

	current, err := f.svc.ListByClient(context.Background(), f.company.String(), f.client.String())
	if err != nil {
		t.Fatalf("list by client: %v", err)
	}
	if len(current) != 2 {
		t.Fatalf("meters = %d, want 2", len(current))
	}
}

func TestUpdateMeterStatus(t *testing.T) {
	f := newFixture(t)

	m := f.create(t, "WM-0001", "0")
	damaged := meterdomain.StatusDamaged
	resp, err := f.svc.Update(context.Background(), meterdomain.UpdateRequest{
		CompanyID: f.company.String(),
		ID:        m.ID,
		Status:    &damaged,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if resp.Status != meterdomain.StatusDamaged {
		t.Fatalf("status = %s, want DAMAGED", resp.Status)
	}

	bogus := "BROKEN"
	if _, err := f.svc.Update(context.Background(), meterdomain.UpdateRequest{
		CompanyID: f.company.String(),
		ID:        m.ID,
		Status:    &bogus,
	}); !errors.Is(err, meterdomain.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}
