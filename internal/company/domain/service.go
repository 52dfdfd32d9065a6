package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	"github.com/aquabill/aquabill/internal/tariff"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	UpdateTariff(ctx context.Context, req UpdateTariffRequest) (*Response, error)
	// GetTariff fails with ErrTariffNotConfigured when the company has no
	// usable pricing, so billing never silently produces zero invoices.
	GetTariff(ctx context.Context, id snowflake.ID) (tariff.Config, error)
}

type CreateRequest struct {
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Province string `json:"province"`

	MinimumCharge      decimal.Decimal `json:"minimum_charge"`
	MinimumCubicMeters int64           `json:"minimum_cubic_meters"`
	PricePerCubicMeter decimal.Decimal `json:"price_per_cubic_meter"`
}

type UpdateRequest struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	TaxID    *string `json:"tax_id,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`
	Province *string `json:"province,omitempty"`

	AcceptCash         *bool `json:"accept_cash,omitempty"`
	AcceptCard         *bool `json:"accept_card,omitempty"`
	AcceptBankTransfer *bool `json:"accept_bank_transfer,omitempty"`
	AcceptEmola        *bool `json:"accept_emola,omitempty"`
	AcceptMpesa        *bool `json:"accept_mpesa,omitempty"`

	BankName    *string `json:"bank_name,omitempty"`
	BankAccount *string `json:"bank_account,omitempty"`
	BankCode    *string `json:"bank_code,omitempty"`
}

type UpdateTariffRequest struct {
	ID                 string          `json:"id"`
	MinimumCharge      decimal.Decimal `json:"minimum_charge"`
	MinimumCubicMeters int64           `json:"minimum_cubic_meters"`
	PricePerCubicMeter decimal.Decimal `json:"price_per_cubic_meter"`
}

type Response struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Province string `json:"province"`

	MinimumCharge      decimal.Decimal `json:"minimum_charge"`
	MinimumCubicMeters int64           `json:"minimum_cubic_meters"`
	PricePerCubicMeter decimal.Decimal `json:"price_per_cubic_meter"`

	AcceptCash         bool `json:"accept_cash"`
	AcceptCard         bool `json:"accept_card"`
	AcceptBankTransfer bool `json:"accept_bank_transfer"`
	AcceptEmola        bool `json:"accept_emola"`
	AcceptMpesa        bool `json:"accept_mpesa"`

	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
	BankCode    string `json:"bank_code"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("company_not_found")
	ErrTariffNotConfigured = errors.New("tariff_not_configured")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
