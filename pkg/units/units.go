// Package units converts between human decimal amounts and 18-decimal token base units.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the precision of the collateral token.
const Decimals = 18

var (
	ErrNotPositive = errors.New("amount must be greater than zero")
	ErrPrecision   = fmt.Errorf("amount has more than %d decimal places", Decimals)
)

// ParseAmount parses a user-entered amount and requires it to be strictly positive.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}
	return d, nil
}

// ToBase scales d to base units. Fractions below one base unit are rejected.
func ToBase(d decimal.Decimal) (*big.Int, error) {
	scaled := d.Shift(Decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, ErrPrecision
	}
	return scaled.BigInt(), nil
}

// FromBase scales base units back to a decimal. A nil value is zero.
func FromBase(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -Decimals)
}
