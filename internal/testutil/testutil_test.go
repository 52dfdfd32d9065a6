package testutil_test

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	companydomain "github.com/aquabill/aquabill/internal/company/domain"
	"github.com/aquabill/aquabill/internal/testutil"
)

// The sqlite driver only maps columns declared TIMESTAMP, DATETIME or DATE
// back into time.Time; any other declared type scans as a string and breaks
// every fixture. This pins the schema's time columns to a round-trippable
// declaration.
func TestSchemaTimeColumnsRoundTrip(t *testing.T) {
	db := testutil.OpenDB(t)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	company := companydomain.Company{
		ID:                 node.Generate(),
		Name:               "Aguas do Norte",
		MinimumCharge:      decimal.RequireFromString("300"),
		MinimumCubicMeters: 5,
		PricePerCubicMeter: decimal.RequireFromString("100"),
		AcceptCash:         true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}

	var got companydomain.Company
	if err := db.First(&got, "id = ?", company.ID).Error; err != nil {
		t.Fatalf("load company: %v", err)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}

	var createdAt time.Time
	if err := db.Raw("SELECT created_at FROM companies WHERE id = ?", company.ID).Scan(&createdAt).Error; err != nil {
		t.Fatalf("scan created_at: %v", err)
	}
	if !createdAt.Equal(now) {
		t.Fatalf("raw created_at = %v, want %v", createdAt, now)
	}
}
