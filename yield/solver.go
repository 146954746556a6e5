// Package yield backs rates out of prices: yield to maturity, yield to
// call, IRR and Z-spread solves, plus implied forwards and par coupons read
// off a zero curve.
package yield

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/curve"
	"github.com/meenmo/finkernel/discount"
	"github.com/meenmo/finkernel/rootfind"
)

var (
	// ErrInvalidPrice is returned for a zero or negative target price.
	ErrInvalidPrice = errors.New("target price must be positive")
	// ErrNoSignChange is returned by SolveIRR when no rate can zero the NPV.
	ErrNoSignChange = errors.New("cashflows must include both inflows and outflows")
	// ErrInvalidTenor is returned by ImpliedForward for a misordered tenor.
	ErrInvalidTenor = errors.New("forward tenor requires 0 <= t1 < t2")
)

// Result is a converged rate solve.
type Result struct {
	// Yield is the annual rate (or spread, for SolveZSpread) compounded at
	// the schedule frequency.
	Yield decimal.Decimal
	// Iterations is the number of Newton steps taken.
	Iterations int
	// Residual is the pricing error at Yield, in price units.
	Residual decimal.Decimal
}

func fromRoot(r rootfind.Result) Result {
	return Result{Yield: r.Root, Iterations: r.Iterations, Residual: r.Residual}
}

// pricer memoises one PriceAndDerivative evaluation so the solver's f and
// f' calls at the same iterate share a single pass over the schedule.
// A pricer belongs to one solve and is not safe for concurrent use.
type pricer struct {
	schedule discount.Schedule
	basis    func(y decimal.Decimal) discount.Basis
	target   decimal.Decimal

	at      decimal.Decimal
	pv, dpv decimal.Decimal
	cached  bool
}

func (p *pricer) eval(y decimal.Decimal) error {
	if p.cached && p.at.Equal(y) {
		return nil
	}
	pv, dpv, err := discount.PriceAndDerivative(p.schedule, p.basis(y))
	if err != nil {
		p.cached = false
		return err
	}
	p.at, p.pv, p.dpv, p.cached = y, pv, dpv, true
	return nil
}

func (p *pricer) f(y decimal.Decimal) (decimal.Decimal, error) {
	if err := p.eval(y); err != nil {
		return decimal.Zero, err
	}
	return p.pv.Sub(p.target), nil
}

func (p *pricer) fPrime(y decimal.Decimal) (decimal.Decimal, error) {
	if err := p.eval(y); err != nil {
		return decimal.Zero, err
	}
	return p.dpv, nil
}

func flat(y decimal.Decimal) discount.Basis {
	return discount.FlatRate{Rate: y}
}

// InitialGuess is (total/price - 1)/years, the simple-interest yield that
// returns the undiscounted cashflow total for price. It is 0 for an empty
// schedule or one with no time to maturity.
func InitialGuess(s discount.Schedule, price decimal.Decimal) decimal.Decimal {
	years := s.Years()
	if !years.IsPositive() || price.IsZero() {
		return decimal.Zero
	}
	return simpleYield(s.Total(), price, years)
}

// SolveYield returns the flat annual rate, compounded at the schedule
// frequency, at which the schedule's present value equals price.
func SolveYield(s discount.Schedule, price decimal.Decimal, cfg rootfind.Config) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, fmt.Errorf("SolveYield: %w", err)
	}
	if !price.IsPositive() {
		return Result{}, fmt.Errorf("SolveYield: %w (got %s)", ErrInvalidPrice, price)
	}
	p := &pricer{schedule: s, basis: flat, target: price}
	res, err := rootfind.Solve(p.f, p.fPrime, InitialGuess(s, price), cfg)
	if err != nil {
		return Result{}, fmt.Errorf("SolveYield: %w", err)
	}
	return fromRoot(res), nil
}

// SolveYieldToCall solves the yield assuming redemption at callPeriod for
// callPrice: flows after the call are dropped and callPrice is paid with
// the coupon due at callPeriod.
func SolveYieldToCall(s discount.Schedule, callPeriod int, callPrice, price decimal.Decimal, cfg rootfind.Config) (Result, error) {
	called, err := s.Truncate(callPeriod)
	if err != nil {
		return Result{}, fmt.Errorf("SolveYieldToCall: %w", err)
	}
	if called, err = called.Add(callPeriod, callPrice); err != nil {
		return Result{}, fmt.Errorf("SolveYieldToCall: %w", err)
	}
	res, err := SolveYield(called, price, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("SolveYieldToCall: %w", err)
	}
	return res, nil
}

// SolveIRR returns the rate at which the schedule's net present value is
// zero. Outflows are negative amounts.
func SolveIRR(s discount.Schedule, cfg rootfind.Config) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, fmt.Errorf("SolveIRR: %w", err)
	}
	in, out := decimal.Zero, decimal.Zero
	for _, cf := range s.Flows() {
		switch {
		case cf.Amount.IsPositive():
			in = in.Add(cf.Amount)
		case cf.Amount.IsNegative():
			out = out.Sub(cf.Amount)
		}
	}
	if in.IsZero() || out.IsZero() {
		return Result{}, fmt.Errorf("SolveIRR: %w", ErrNoSignChange)
	}

	guess := decimal.Zero
	if years := s.Years(); years.IsPositive() {
		guess = simpleYield(in, out, years)
	}
	p := &pricer{schedule: s, basis: flat, target: decimal.Zero}
	res, err := rootfind.Solve(p.f, p.fPrime, guess, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("SolveIRR: %w", err)
	}
	return fromRoot(res), nil
}

// SolveZSpread returns the constant spread over zeroCurve at which the
// schedule's present value equals price. Each flow is discounted at the
// curve's zero rate for its own maturity plus the spread.
func SolveZSpread(s discount.Schedule, zeroCurve curve.Curve, price decimal.Decimal, cfg rootfind.Config) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, fmt.Errorf("SolveZSpread: %w", err)
	}
	if zeroCurve.Len() == 0 {
		return Result{}, fmt.Errorf("SolveZSpread: %w", curve.ErrEmptyCurve)
	}
	if !price.IsPositive() {
		return Result{}, fmt.Errorf("SolveZSpread: %w (got %s)", ErrInvalidPrice, price)
	}
	p := &pricer{
		schedule: s,
		basis: func(z decimal.Decimal) discount.Basis {
			return discount.CurveRate{Curve: zeroCurve, Spread: z}
		},
		target: price,
	}
	guess := InitialGuess(s, price).Sub(zeroCurve.At(s.Years()))
	res, err := rootfind.Solve(p.f, p.fPrime, guess, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("SolveZSpread: %w", err)
	}
	return fromRoot(res), nil
}
