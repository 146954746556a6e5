// Package rootfind solves f(y) = 0 by Newton-Raphson with an explicit
// iteration budget, residual tolerance and clamp bounds.
package rootfind

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/decmath"
)

// ErrNotConverged is wrapped by a ConvergenceError whose budget ran out.
var ErrNotConverged = errors.New("iteration budget exhausted")

// Func is a caller-supplied function or derivative. An error aborts the
// solve and is returned wrapped.
type Func func(y decimal.Decimal) (decimal.Decimal, error)

// Result is a converged root.
type Result struct {
	Root decimal.Decimal
	// Iterations is the number of Newton steps taken; 0 when the clamped
	// initial guess already satisfied the tolerance.
	Iterations int
	// Residual is f(Root).
	Residual decimal.Decimal
}

// ConvergenceError reports a solve that stopped without meeting Epsilon.
// Err is ErrNotConverged when the budget ran out, or
// decmath.ErrDivisionByZero when the derivative was exactly zero.
type ConvergenceError struct {
	Iterations   int
	LastResidual decimal.Decimal
	LastValue    decimal.Decimal
	Err          error
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("no convergence after %d iterations (y=%s, residual=%s): %v",
		e.Iterations, e.LastValue, e.LastResidual, e.Err)
}

func (e *ConvergenceError) Unwrap() error {
	return e.Err
}

// Solve finds y with |f(y)| < cfg.Epsilon starting from guess.
//
// Each step is y ← clamp(y - f(y)/f'(y)). A derivative of exactly zero fails
// immediately; an exhausted budget fails with the iteration count and last
// residual. An unconverged iterate is never returned as a result.
func Solve(f, fPrime Func, guess decimal.Decimal, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	y := cfg.Clamp(guess)
	for iter := 0; ; iter++ {
		fy, err := f(y)
		if err != nil {
			return Result{}, fmt.Errorf("rootfind: f(%s): %w", y, err)
		}
		if fy.Abs().LessThan(cfg.Epsilon) {
			return Result{Root: y, Iterations: iter, Residual: fy}, nil
		}
		if iter == cfg.MaxIterations {
			return Result{}, &ConvergenceError{Iterations: iter, LastResidual: fy, LastValue: y, Err: ErrNotConverged}
		}

		dy, err := fPrime(y)
		if err != nil {
			return Result{}, fmt.Errorf("rootfind: f'(%s): %w", y, err)
		}
		if dy.IsZero() {
			return Result{}, &ConvergenceError{Iterations: iter, LastResidual: fy, LastValue: y, Err: decmath.ErrDivisionByZero}
		}

		step := fy.DivRound(dy, decmath.Places)
		y = cfg.Clamp(y.Sub(step))
	}
}
