// Package money converts between decimal currency strings used on the wire and
// the integer minor units (cents) stored in the database.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const centsPrecision int32 = 2

var (
	ErrInvalidAmount  = errors.New("amount must be a decimal number")
	ErrTooPrecise     = errors.New("amount has more than two decimal places")
	ErrNotPositive    = errors.New("amount must be positive")
	ErrAmountTooLarge = errors.New("amount is too large")
)

var hundred = decimal.NewFromInt(100)

// Cents is an amount of money in minor currency units.
type Cents int64

// Parse converts a decimal string such as "12.50" into cents. Values with more
// than two fractional digits are rejected rather than rounded.
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// ParsePositive is Parse plus a strictly-positive check.
func ParsePositive(s string) (Cents, error) {
	c, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if c <= 0 {
		return 0, ErrNotPositive
	}
	return c, nil
}

// FromDecimal converts d into cents.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	if !d.Equal(d.Round(centsPrecision)) {
		return 0, ErrTooPrecise
	}
	scaled := d.Mul(hundred)
	if !scaled.IsInteger() || scaled.Abs().GreaterThan(decimal.NewFromInt(1<<53)) {
		return 0, ErrAmountTooLarge
	}
	return Cents(scaled.IntPart()), nil
}

// Decimal returns c as a decimal number of whole currency units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -centsPrecision)
}

// String formats c with exactly two fractional digits.
func (c Cents) String() string {
	return c.Decimal().StringFixed(centsPrecision)
}

// Max returns the larger of a and b.
func Max(a, b Cents) Cents {
	if a > b {
		return a
	}
	return b
}
