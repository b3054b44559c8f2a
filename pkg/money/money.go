// Package money holds the currency rules of the ledger: a single currency
// with a fixed number of fractional digits.
package money

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// Currency is the only currency supported by the ledger
	Currency = "CHF"

	// Scale is a number of fractional digits of the currency
	Scale = 2
)

var (
	// ErrNotPositive is returned for zero or negative amounts
	ErrNotPositive = errors.New("Amount must be positive")

	// ErrTooPrecise is returned when amount has more fractional digits than the currency
	ErrTooPrecise = errors.New("Amount must have at most 2 decimal places")

	// ErrTooLarge is returned for amounts above MaxAmount
	ErrTooLarge = errors.New("Amount exceeds the maximum")

	// ErrOutOfRange is returned when amount can not be represented in minor units
	ErrOutOfRange = errors.New("Amount is out of range of minor units")
)

// MaxAmount is the largest amount a single transfer may move.
// Balances credited with it stay far within int64 minor units
var MaxAmount = decimal.New(1, 12)

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Validate checks that the amount is strictly positive and fits the currency scale
func Validate(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNotPositive
	}
	if !amount.Equal(amount.Truncate(Scale)) {
		return ErrTooPrecise
	}
	if amount.GreaterThan(MaxAmount) {
		return ErrTooLarge
	}
	return nil
}

// ToMinor converts amount to minor units (e.g rappen).
// Fails if amount has more digits than the scale or does not fit int64
func ToMinor(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(Scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, errors.Wrapf(ErrTooPrecise, "Failed to convert %v to minor units", amount)
	}
	if shifted.GreaterThan(maxMinor) || shifted.LessThan(minMinor) {
		return 0, errors.Wrapf(ErrOutOfRange, "Failed to convert %v to minor units", amount)
	}
	return shifted.IntPart(), nil
}

// FromMinor converts minor units back to decimal currency units
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}

// Number renders amount as a JSON number with fixed scale, e.g 888.00
func Number(amount decimal.Decimal) json.Number {
	return json.Number(amount.StringFixed(Scale))
}

// Parse parses a JSON number (or numeric string) into a decimal amount
func Parse(raw json.Number) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "Invalid amount: %v", raw)
	}
	return amount, nil
}
