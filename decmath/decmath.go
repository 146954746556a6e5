// Package decmath implements exp, ln, sqrt, pow and nth-root on
// shopspring/decimal values without ever converting to float64.
//
// Every function is total: out-of-domain operands (non-positive input to Ln
// or Sqrt, a negative base with a fractional exponent) return a documented
// sentinel instead of an error. Results are rounded to Places fractional
// digits; intermediate sums carry guard extra digits.
package decmath

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept in every rounded result.
const Places int32 = 40

// guard digits carried by intermediate series terms.
const guard int32 = 10

var (
	// ErrDivisionByZero is wrapped by every failure caused by a divisor that
	// evaluated to exactly zero.
	ErrDivisionByZero = errors.New("division by zero")

	// Max is returned by Exp when the argument exceeds MaxExpArg.
	Max = decimal.New(1, 100)

	// MaxExpArg bounds the Exp argument; exp(230) is roughly 7.7e99.
	MaxExpArg = decimal.NewFromInt(230)

	// Ln2 and Ln10 to 50 fractional digits.
	Ln2  = decimal.RequireFromString("0.69314718055994530941723212145817656807550013436026")
	Ln10 = decimal.RequireFromString("2.30258509299404568401799145468436420760110148862877")

	one  = decimal.NewFromInt(1)
	two  = decimal.NewFromInt(2)
	half = decimal.New(5, -1)

	// convergence threshold for the Newton loop in Sqrt.
	stable = decimal.New(1, -(Places + 2))

	// relative convergence threshold for the Newton loop in NthRoot.
	tight = decimal.New(1, -(Places + guard - 4))
)

// Div returns a/b rounded to Places, or ErrDivisionByZero.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return a.DivRound(b, Places), nil
}

// Round rounds d to Places fractional digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

func fine(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places + guard)
}

func quo(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, Places+guard)
}

// sig rounds d to Places+guard significant digits, so tiny intermediates
// keep their relative precision.
func sig(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	return d.Round(Places + guard - log10Floor(d) - 1)
}

// quoSig is a/b to Places+guard significant digits.
func quoSig(a, b decimal.Decimal) decimal.Decimal {
	if a.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, Places+guard-(log10Floor(a)-log10Floor(b)))
}

// log10Floor returns n such that 10^n <= d < 10^(n+1) for positive d.
func log10Floor(d decimal.Decimal) int32 {
	return int32(d.NumDigits()) + d.Exponent() - 1
}
