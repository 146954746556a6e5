package decmath

import "github.com/shopspring/decimal"

const (
	sqrtMaxIter = 40
	rootMaxIter = 60
)

// Sqrt returns the square root of x by Newton's method, g ← (g + x/g)/2,
// started from the power of ten nearest below √x. Non-positive x returns 0.
func Sqrt(x decimal.Decimal) decimal.Decimal {
	if !x.IsPositive() {
		return decimal.Zero
	}
	if x.Equal(one) {
		return one
	}

	g := decimal.New(1, log10Floor(x)/2)
	for i := 0; i < sqrtMaxIter; i++ {
		next := fine(g.Add(quo(x, g)).Mul(half))
		if next.Sub(g).Abs().LessThan(stable) {
			g = next
			break
		}
		g = next
	}
	return Round(g)
}

// NthRoot returns the real n-th root of x.
//
// The initial guess is Exp(Ln(x)/n), refined by Newton's method on g^n = x
// carried at significant-digit precision, so small roots stay accurate to
// Places fractional digits.
// Sentinels: n < 1 or x = 0 returns 0; a negative x returns 0 for even n
// and -NthRoot(-x, n) for odd n; n = 1 returns x.
func NthRoot(x decimal.Decimal, n int) decimal.Decimal {
	switch {
	case n < 1 || x.IsZero():
		return decimal.Zero
	case n == 1:
		return x
	case x.IsNegative():
		if n%2 == 0 {
			return decimal.Zero
		}
		return NthRoot(x.Neg(), n).Neg()
	case n == 2:
		return Sqrt(x)
	}

	nd := decimal.NewFromInt(int64(n))
	nm1 := decimal.NewFromInt(int64(n - 1))

	g := Exp(quo(Ln(x), nd))
	if g.IsZero() {
		// below the representable precision
		return decimal.Zero
	}
	for i := 0; i < rootMaxIter; i++ {
		gp := powSig(g, int64(n-1))
		if gp.IsZero() {
			break
		}
		next := quoSig(nm1.Mul(g).Add(quoSig(x, gp)), nd)
		if next.Sub(g).Abs().LessThan(next.Mul(tight)) {
			g = next
			break
		}
		g = next
	}
	return Round(g)
}

// powSig is base^n by square-and-multiply with every product rounded to
// significant digits rather than fractional places.
func powSig(base decimal.Decimal, n int64) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = sig(result.Mul(base))
		}
		n >>= 1
		if n > 0 {
			base = sig(base.Mul(base))
		}
	}
	return result
}
