package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	"github.com/aquabill/aquabill/internal/tariff"
)

// Company is a water utility operating its own tariff and payment policy.
type Company struct {
	ID       snowflake.ID `json:"id" gorm:"primaryKey"`
	Name     string       `json:"name" gorm:"type:text;not null"`
	TaxID    string       `json:"tax_id" gorm:"column:tax_id;type:text"`
	Email    string       `json:"email" gorm:"type:text"`
	Phone    string       `json:"phone" gorm:"type:text"`
	Address  string       `json:"address" gorm:"type:text"`
	City     string       `json:"city" gorm:"type:text"`
	Province string       `json:"province" gorm:"type:text"`

	MinimumCharge      decimal.Decimal `json:"minimum_charge" gorm:"type:numeric(18,2);not null"`
	MinimumCubicMeters int64           `json:"minimum_cubic_meters" gorm:"not null"`
	PricePerCubicMeter decimal.Decimal `json:"price_per_cubic_meter" gorm:"type:numeric(18,2);not null"`

	AcceptCash         bool `json:"accept_cash" gorm:"not null;default:true"`
	AcceptCard         bool `json:"accept_card" gorm:"not null"`
	AcceptBankTransfer bool `json:"accept_bank_transfer" gorm:"not null"`
	AcceptEmola        bool `json:"accept_emola" gorm:"not null"`
	AcceptMpesa        bool `json:"accept_mpesa" gorm:"not null"`

	BankName    string `json:"bank_name" gorm:"type:text"`
	BankAccount string `json:"bank_account" gorm:"type:text"`
	BankCode    string `json:"bank_code" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Company) TableName() string { return "companies" }

// Tariff returns the company's pricing configuration.
func (c *Company) Tariff() tariff.Config {
	return tariff.Config{
		MinimumCharge:      c.MinimumCharge,
		MinimumCubicMeters: c.MinimumCubicMeters,
		PricePerCubicMeter: c.PricePerCubicMeter,
	}
}

// TariffConfigured reports whether pricing has been set up. A company with
// no minimum charge and no unit price cannot bill anyone yet.
func (c *Company) TariffConfigured() bool {
	return c.MinimumCharge.IsPositive() || c.PricePerCubicMeter.IsPositive()
}

// AcceptsMethod reports whether the company takes payment via method.
// Unknown methods are never accepted.
func (c *Company) AcceptsMethod(method string) bool {
	switch method {
	case "CASH":
		return c.AcceptCash
	case "CARD":
		return c.AcceptCard
	case "BANK_TRANSFER":
		return c.AcceptBankTransfer
	case "EMOLA":
		return c.AcceptEmola
	case "MPESA":
		return c.AcceptMpesa
	default:
		return false
	}
}
