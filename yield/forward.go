package yield

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/curve"
	"github.com/meenmo/finkernel/decmath"
	"github.com/meenmo/finkernel/discount"
)

var one = decimal.NewFromInt(1)

func simpleYield(total, price, years decimal.Decimal) decimal.Decimal {
	return total.DivRound(price, decmath.Places).Sub(one).DivRound(years, decmath.Places)
}

// ImpliedForward returns the annual forward rate between t1 and t2 years,
// compounded frequency times a year, implied by zeroCurve:
//
//	(1 + F/f)^((t2-t1)·f) = (1 + z2/f)^(t2·f) / (1 + z1/f)^(t1·f)
func ImpliedForward(zeroCurve curve.Curve, t1, t2 decimal.Decimal, frequency int) (decimal.Decimal, error) {
	if zeroCurve.Len() == 0 {
		return decimal.Zero, fmt.Errorf("ImpliedForward: %w", curve.ErrEmptyCurve)
	}
	if t1.IsNegative() || !t1.LessThan(t2) {
		return decimal.Zero, fmt.Errorf("ImpliedForward: %w (t1=%s, t2=%s)", ErrInvalidTenor, t1, t2)
	}
	if frequency < 1 {
		return decimal.Zero, fmt.Errorf("ImpliedForward: %w (got %d)", discount.ErrFrequency, frequency)
	}
	f := decimal.NewFromInt(int64(frequency))

	c1, err := discount.CompoundFactor(zeroCurve.At(t1).DivRound(f, decmath.Places), t1.Mul(f))
	if err != nil {
		return decimal.Zero, fmt.Errorf("ImpliedForward: %w", err)
	}
	c2, err := discount.CompoundFactor(zeroCurve.At(t2).DivRound(f, decmath.Places), t2.Mul(f))
	if err != nil {
		return decimal.Zero, fmt.Errorf("ImpliedForward: %w", err)
	}
	ratio, err := decmath.Div(c2, c1)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ImpliedForward: %w", err)
	}

	n := t2.Sub(t1).Mul(f)
	var growth decimal.Decimal
	if n.IsInteger() && n.LessThanOrEqual(decimal.NewFromInt(maxRootDegree)) {
		growth = decmath.NthRoot(ratio, int(n.IntPart()))
	} else {
		growth = decmath.Pow(ratio, one.DivRound(n, decmath.Places))
	}
	return decmath.Round(growth.Sub(one).Mul(f)), nil
}

// maxRootDegree caps the periods handed to NthRoot; longer spans go
// through Pow.
const maxRootDegree = 1200

// ParCoupon returns the annual coupon rate at which a bullet paying
// frequency times a year for periods periods prices at par off zeroCurve:
//
//	c = (1 - DF_n) / Σ DF_k/f
func ParCoupon(zeroCurve curve.Curve, periods, frequency int) (decimal.Decimal, error) {
	if zeroCurve.Len() == 0 {
		return decimal.Zero, fmt.Errorf("ParCoupon: %w", curve.ErrEmptyCurve)
	}
	if periods < 1 {
		return decimal.Zero, fmt.Errorf("ParCoupon: %w", discount.ErrEmptySchedule)
	}
	if frequency < 1 {
		return decimal.Zero, fmt.Errorf("ParCoupon: %w (got %d)", discount.ErrFrequency, frequency)
	}
	f := decimal.NewFromInt(int64(frequency))

	annuity := decimal.Zero
	last := decimal.Zero
	for k := 1; k <= periods; k++ {
		t := decimal.NewFromInt(int64(k))
		r := zeroCurve.At(t.DivRound(f, decmath.Places)).DivRound(f, decmath.Places)
		df, err := discount.DiscountFactor(r, t)
		if err != nil {
			return decimal.Zero, fmt.Errorf("ParCoupon: period %d: %w", k, err)
		}
		annuity = annuity.Add(df.DivRound(f, decmath.Places))
		last = df
	}
	c, err := decmath.Div(one.Sub(last), annuity)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ParCoupon: %w", err)
	}
	return c, nil
}
