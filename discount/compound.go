// Package discount computes compound and discount factors and present
// values of cashflow schedules under a flat rate or a zero curve.
package discount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/decmath"
)

// ErrInvalidRate is returned for a per-period rate below -100%.
var ErrInvalidRate = errors.New("rate below -100% per period")

var one = decimal.NewFromInt(1)

// CompoundFactor returns (1+rate)^t for a per-period rate over t periods.
//
// Whole t is compounded by repeated multiplication; fractional t uses
// decmath.Pow. A rate of exactly -100% gives 0 for t > 0.
func CompoundFactor(rate, t decimal.Decimal) (decimal.Decimal, error) {
	base := one.Add(rate)
	if base.IsNegative() {
		return decimal.Zero, fmt.Errorf("CompoundFactor: %w (rate %s)", ErrInvalidRate, rate)
	}
	if t.IsZero() {
		return one, nil
	}
	if base.IsZero() {
		if t.IsNegative() {
			return decimal.Zero, fmt.Errorf("CompoundFactor: %w", decmath.ErrDivisionByZero)
		}
		return decimal.Zero, nil
	}
	if t.IsInteger() {
		return compoundWhole(base, t.IntPart()), nil
	}
	return decmath.Pow(base, t), nil
}

func compoundWhole(base decimal.Decimal, n int64) decimal.Decimal {
	neg := n < 0
	if neg {
		n = -n
	}
	f := one
	for i := int64(0); i < n; i++ {
		f = decmath.Round(f.Mul(base))
	}
	if neg {
		if f.IsZero() {
			return decimal.Zero
		}
		return one.DivRound(f, decmath.Places)
	}
	return f
}

// DiscountFactor returns 1/CompoundFactor(rate, t).
// It fails with decmath.ErrDivisionByZero when the compound factor is zero
// or the factor underflows to exactly zero at decmath.Places.
func DiscountFactor(rate, t decimal.Decimal) (decimal.Decimal, error) {
	cf, err := CompoundFactor(rate, t)
	if err != nil {
		return decimal.Zero, err
	}
	if cf.IsZero() {
		return decimal.Zero, fmt.Errorf("DiscountFactor: compound factor is zero at t=%s: %w", t, decmath.ErrDivisionByZero)
	}
	df := one.DivRound(cf, decmath.Places)
	if df.IsZero() {
		return decimal.Zero, fmt.Errorf("DiscountFactor: underflow at t=%s: %w", t, decmath.ErrDivisionByZero)
	}
	return df, nil
}
