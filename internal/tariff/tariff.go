// Package tariff implements the pricing policy that converts water
// consumption into a monetary charge.
//
// The rule is a flat minimum charge covering usage up to a threshold of
// cubic meters, plus a per-cubic-meter rate on the excess. The policy is a
// pure function over the tariff configuration so it can be evaluated
// concurrently and tested without persistence.
package tariff

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidConsumption = errors.New("invalid_consumption")
	ErrInvalidTariff      = errors.New("invalid_tariff")
)

// Config is the pricing configuration owned by a company. Read-only to the
// billing pipeline; fetched once per operation and passed explicitly.
type Config struct {
	MinimumCharge      decimal.Decimal
	MinimumCubicMeters int64
	PricePerCubicMeter decimal.Decimal
}

// Validate rejects malformed tariffs before any charge is computed.
func (c Config) Validate() error {
	if c.MinimumCharge.IsNegative() {
		return ErrInvalidTariff
	}
	if c.MinimumCubicMeters < 0 {
		return ErrInvalidTariff
	}
	if c.PricePerCubicMeter.IsNegative() {
		return ErrInvalidTariff
	}
	return nil
}

// Charge is the priced result of a consumption value. BaseCharge is always
// the minimum charge, reported separately from the usage-based excess.
type Charge struct {
	BaseCharge   decimal.Decimal
	ExcessCharge decimal.Decimal
	TotalAmount  decimal.Decimal
}

// ComputeCharge prices consumption under cfg.
//
// consumption <= threshold: total = minimum charge.
// consumption >  threshold: total = minimum charge + (consumption - threshold) * rate.
//
// Totals are rounded to 2 decimal places here and nowhere else.
func ComputeCharge(consumption decimal.Decimal, cfg Config) (Charge, error) {
	if consumption.IsNegative() {
		return Charge{}, ErrInvalidConsumption
	}
	if err := cfg.Validate(); err != nil {
		return Charge{}, err
	}

	base := cfg.MinimumCharge.Round(2)
	threshold := decimal.NewFromInt(cfg.MinimumCubicMeters)

	if consumption.LessThanOrEqual(threshold) {
		return Charge{
			BaseCharge:   base,
			ExcessCharge: decimal.Zero,
			TotalAmount:  base,
		}, nil
	}

	excess := consumption.Sub(threshold).Mul(cfg.PricePerCubicMeter).Round(2)
	return Charge{
		BaseCharge:   base,
		ExcessCharge: excess,
		TotalAmount:  base.Add(excess),
	}, nil
}
