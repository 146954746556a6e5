package decmath

import "github.com/shopspring/decimal"

// integer exponents above this magnitude go through Exp/Ln so that the
// result saturates instead of growing without bound.
var maxIntExponent = decimal.NewFromInt(100000)

// PowInt returns base^n by square-and-multiply.
//
// Products are exact up to Places+10 fractional digits, so terminating
// decimals such as 1.05^10 come out exact. Negative n inverts the result;
// a zero base with negative n returns 0.
func PowInt(base decimal.Decimal, n int64) decimal.Decimal {
	if n == 0 {
		return one
	}
	if n < 0 {
		p := PowInt(base, -n)
		if p.IsZero() {
			return decimal.Zero
		}
		return one.DivRound(p, Places)
	}

	result := one
	b := base
	for n > 0 {
		if n&1 == 1 {
			result = fine(result.Mul(b))
		}
		n >>= 1
		if n > 0 {
			b = fine(b.Mul(b))
		}
	}
	return Round(result)
}

// Pow returns base^exponent.
//
// Integer exponents use PowInt. Fractional exponents use
// Exp(exponent·Ln(base)); the error of that path is bounded by
// |exponent|·ε_ln·result + ε_exp, where ε_ln and ε_exp are the rounding
// errors of Ln and Exp (both below 10^-40 for arguments of ordinary
// magnitude), so precision degrades proportionally with large exponents and
// large results.
//
// Integer exponents too large for PowInt take the Exp/Ln path on |base|,
// with the sign restored from the exponent's parity.
//
// Sentinels: exponent 0 or base 1 returns 1; a negative base with a
// fractional exponent returns 0, as does a zero base with a negative
// exponent.
func Pow(base, exponent decimal.Decimal) decimal.Decimal {
	if exponent.IsZero() || base.Equal(one) {
		return one
	}
	if exponent.IsInteger() && exponent.Abs().LessThanOrEqual(maxIntExponent) {
		return PowInt(base, exponent.IntPart())
	}
	if base.IsPositive() {
		return Exp(exponent.Mul(Ln(base)))
	}
	if base.IsZero() || !exponent.IsInteger() {
		return decimal.Zero
	}
	mag := Exp(exponent.Mul(Ln(base.Neg())))
	if !exponent.Mod(two).IsZero() {
		return mag.Neg()
	}
	return mag
}
