package discount

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/curve"
	"github.com/meenmo/finkernel/decmath"
)

// Basis selects how a schedule is discounted. It is implemented by
// FlatRate and CurveRate only.
type Basis interface {
	factors(s Schedule) ([]factor, error)
}

// factor is the discount factor of one flow together with the per-period
// growth 1 + r/f at that flow's rate, which the rate derivative needs.
type factor struct {
	df     decimal.Decimal
	growth decimal.Decimal
}

// FlatRate discounts every flow at one annual rate, compounded at the
// schedule frequency.
type FlatRate struct {
	Rate decimal.Decimal
}

// factors walks the schedule once, multiplying the one-period discount
// factor in for each elapsed period so every flow shares one compounding
// path. A fractional first period is applied as a single (1+r)^accrued
// adjustment.
func (b FlatRate) factors(s Schedule) ([]factor, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("FlatRate: %w", err)
	}
	freq := decimal.NewFromInt(int64(s.frequency))
	r := b.Rate.DivRound(freq, decmath.Places)
	growth := one.Add(r)
	switch {
	case growth.IsZero():
		return nil, fmt.Errorf("FlatRate: rate %s: %w", b.Rate, decmath.ErrDivisionByZero)
	case growth.IsNegative():
		return nil, fmt.Errorf("FlatRate: %w (rate %s)", ErrInvalidRate, b.Rate)
	}
	v := one.DivRound(growth, decmath.Places)

	adj := one
	if s.accrued.IsPositive() {
		var err error
		if adj, err = CompoundFactor(r, s.accrued); err != nil {
			return nil, fmt.Errorf("FlatRate: %w", err)
		}
	}

	out := make([]factor, len(s.flows))
	df := one
	period := 0
	for i, cf := range s.flows {
		for ; period < cf.Period; period++ {
			df = decmath.Round(df.Mul(v))
		}
		if df.IsZero() {
			return nil, fmt.Errorf("FlatRate: discount factor underflow at period %d: %w", cf.Period, decmath.ErrDivisionByZero)
		}
		out[i] = factor{df: decmath.Round(df.Mul(adj)), growth: growth}
	}
	return out, nil
}

// CurveRate discounts each flow at the zero rate read off Curve at the
// flow's time in years, plus Spread. Rates are annual, compounded at the
// schedule frequency.
type CurveRate struct {
	Curve  curve.Curve
	Spread decimal.Decimal
}

func (b CurveRate) factors(s Schedule) ([]factor, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("CurveRate: %w", err)
	}
	if b.Curve.Len() == 0 {
		return nil, fmt.Errorf("CurveRate: %w", curve.ErrEmptyCurve)
	}
	freq := decimal.NewFromInt(int64(s.frequency))
	out := make([]factor, len(s.flows))
	for i := range s.flows {
		t := s.Time(i)
		years := t.DivRound(freq, decmath.Places)
		r := b.Curve.At(years).Add(b.Spread).DivRound(freq, decmath.Places)
		df, err := DiscountFactor(r, t)
		if err != nil {
			return nil, fmt.Errorf("CurveRate: flow %d: %w", i, err)
		}
		out[i] = factor{df: df, growth: one.Add(r)}
	}
	return out, nil
}

// DiscountFactors returns the discount factor applied to each flow.
func DiscountFactors(s Schedule, b Basis) ([]decimal.Decimal, error) {
	fs, err := b.factors(s)
	if err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, len(fs))
	for i, f := range fs {
		out[i] = f.df
	}
	return out, nil
}

// PresentValue returns Σ amount·DF over the schedule.
func PresentValue(s Schedule, b Basis) (decimal.Decimal, error) {
	fs, err := b.factors(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("PresentValue: %w", err)
	}
	pv := decimal.Zero
	for i, cf := range s.flows {
		pv = pv.Add(cf.Amount.Mul(fs[i].df))
	}
	return decmath.Round(pv), nil
}

// PriceAndDerivative returns the present value and its derivative with
// respect to a parallel shift of the annual rate:
//
//	dP/dy = -Σ (tᵢ/f)·CFᵢ·DFᵢ/(1 + rᵢ/f)
//
// with tᵢ in periods. For FlatRate this is the yield derivative; for
// CurveRate it is the spread derivative, evaluated at each flow's own
// curve rate.
func PriceAndDerivative(s Schedule, b Basis) (pv, dpv decimal.Decimal, err error) {
	fs, err := b.factors(s)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("PriceAndDerivative: %w", err)
	}
	freq := decimal.NewFromInt(int64(s.frequency))
	pv, dpv = decimal.Zero, decimal.Zero
	for i, cf := range s.flows {
		v := cf.Amount.Mul(fs[i].df)
		pv = pv.Add(v)
		w := s.Time(i).Mul(v).DivRound(freq.Mul(fs[i].growth), decmath.Places)
		dpv = dpv.Sub(w)
	}
	return decmath.Round(pv), decmath.Round(dpv), nil
}
