package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aquabill/aquabill/internal/clock"
	companydomain "github.com/aquabill/aquabill/internal/company/domain"
	"github.com/aquabill/aquabill/internal/company/repository"
	"github.com/aquabill/aquabill/internal/company/service"
	"github.com/aquabill/aquabill/internal/tariff"
	"github.com/aquabill/aquabill/internal/testutil"
)

func newService(t *testing.T) companydomain.Service {
	t.Helper()

	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateCompanyDefaultsToCash(t *testing.T) {
	svc := newService(t)

	resp, err := svc.Create(context.Background(), companydomain.CreateRequest{
		Name:               "Aguas do Norte",
		MinimumCharge:      decimal.RequireFromString("300"),
		MinimumCubicMeters: 5,
		PricePerCubicMeter: decimal.RequireFromString("100"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !resp.AcceptCash {
		t.Fatal("new company does not accept cash")
	}
}

func TestCreateCompanyRejectsInvalidTariff(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create(context.Background(), companydomain.CreateRequest{
		Name:          "Aguas do Norte",
		MinimumCharge: decimal.RequireFromString("-10"),
	})
	if !errors.Is(err, tariff.ErrInvalidTariff) {
		t.Fatalf("err = %v, want ErrInvalidTariff", err)
	}
}

func TestGetTariffFailsClosedWhenUnconfigured(t *testing.T) {
	svc := newService(t)

	resp, err := svc.Create(context.Background(), companydomain.CreateRequest{
		Name: "Aguas do Norte",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	id, err := companydomain.ParseID(resp.ID)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}
	if _, err := svc.GetTariff(context.Background(), id); !errors.Is(err, companydomain.ErrTariffNotConfigured) {
		t.Fatalf("err = %v, want ErrTariffNotConfigured", err)
	}

	if _, err := svc.UpdateTariff(context.Background(), companydomain.UpdateTariffRequest{
		ID:                 resp.ID,
		MinimumCharge:      decimal.RequireFromString("300"),
		MinimumCubicMeters: 5,
		PricePerCubicMeter: decimal.RequireFromString("100"),
	}); err != nil {
		t.Fatalf("update tariff: %v", err)
	}

	cfg, err := svc.GetTariff(context.Background(), id)
	if err != nil {
		t.Fatalf("get tariff: %v", err)
	}
	if !cfg.MinimumCharge.Equal(decimal.RequireFromString("300")) || cfg.MinimumCubicMeters != 5 {
		t.Fatalf("tariff = %+v", cfg)
	}
}

func TestUpdateCompanyPaymentMethods(t *testing.T) {
	svc := newService(t)

	resp, err := svc.Create(context.Background(), companydomain.CreateRequest{
		Name:          "Aguas do Norte",
		MinimumCharge: decimal.RequireFromString("300"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mpesa := true
	updated, err := svc.Update(context.Background(), companydomain.UpdateRequest{
		ID:          resp.ID,
		AcceptMpesa: &mpesa,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.AcceptMpesa {
		t.Fatal("mpesa not enabled")
	}
	if !updated.AcceptCash {
		t.Fatal("cash flag lost on unrelated update")
	}
}
