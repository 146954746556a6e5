package decmath

import "github.com/shopspring/decimal"

const (
	expTerms = 40
	lnTerms  = 60
)

var (
	lnLower = decimal.RequireFromString("0.75")
	lnUpper = decimal.RequireFromString("1.5")
)

// Exp returns e^x.
//
// The argument is reduced as x = k·ln2 + r with |r| <= ln2/2, the Taylor
// series is summed on r (at most 40 terms, stopping once a term rounds to
// zero) and the result is rescaled by 2^k. Exp(0) is exactly 1. Arguments
// below -MaxExpArg return 0; arguments above MaxExpArg return Max.
func Exp(x decimal.Decimal) decimal.Decimal {
	switch {
	case x.IsZero():
		return one
	case x.GreaterThan(MaxExpArg):
		return Max
	case x.LessThan(MaxExpArg.Neg()):
		return decimal.Zero
	}

	k := x.DivRound(Ln2, 0)
	r := fine(x.Sub(k.Mul(Ln2)))

	sum := one
	term := one
	for n := int64(1); n <= expTerms; n++ {
		term = quo(term.Mul(r), decimal.NewFromInt(n))
		if term.IsZero() {
			break
		}
		sum = sum.Add(term)
	}

	return Round(scale2(sum, k.IntPart()))
}

// scale2 returns d·2^k.
func scale2(d decimal.Decimal, k int64) decimal.Decimal {
	switch {
	case k > 0:
		return d.Mul(PowInt(two, k))
	case k < 0:
		return quo(d, PowInt(two, -k))
	}
	return d
}

// Ln returns the natural logarithm of x.
//
// Non-positive x returns 0: callers are expected to guard the domain, and a
// zero result is the documented sentinel for it. Ln(1) is exactly 0.
//
// x is written as m·10^n·2^k with m in [0.75, 1.5], and ln(m) comes from
// ln(1+u) = 2·atanh(u/(u+2)), which converges for every u > -1.
func Ln(x decimal.Decimal) decimal.Decimal {
	if !x.IsPositive() || x.Equal(one) {
		return decimal.Zero
	}

	n := log10Floor(x)
	m := x.Shift(-n)
	k := int64(0)
	for m.GreaterThan(lnUpper) {
		m = m.Mul(half)
		k++
	}
	for m.LessThan(lnLower) {
		m = m.Mul(two)
		k--
	}

	z := quo(m.Sub(one), m.Add(one))
	z2 := fine(z.Mul(z))
	sum := z
	term := z
	for i := int64(1); i < lnTerms; i++ {
		term = fine(term.Mul(z2))
		if term.IsZero() {
			break
		}
		sum = sum.Add(quo(term, decimal.NewFromInt(2*i+1)))
	}

	out := sum.Mul(two).
		Add(Ln2.Mul(decimal.NewFromInt(k))).
		Add(Ln10.Mul(decimal.NewFromInt(int64(n))))
	return Round(out)
}
