package rootfind

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid solver config")

// Config holds the Newton-Raphson stopping rule and divergence guard.
// It is passed by value on every call; nothing retains it.
type Config struct {
	// MaxIterations is the Newton step budget. Must be positive.
	MaxIterations int

	// Epsilon is the residual tolerance: iteration stops once |f(y)| < Epsilon.
	// It is expressed in the units of f (price units for yield solves).
	Epsilon decimal.Decimal

	// LowerBound and UpperBound clamp every iterate, keeping runaway steps
	// inside an economically meaningful range when the derivative is small.
	LowerBound decimal.Decimal
	UpperBound decimal.Decimal
}

// DefaultConfig suits rate solves on price-per-100 or per-1000 instruments:
// a fitted rate bounded to [-99%, +500%].
var DefaultConfig = Config{
	MaxIterations: 100,
	Epsilon:       decimal.New(1, -12),
	LowerBound:    decimal.RequireFromString("-0.99"),
	UpperBound:    decimal.NewFromInt(5),
}

// Validate checks MaxIterations > 0, Epsilon > 0 and LowerBound < UpperBound.
func (c Config) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: MaxIterations must be positive, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if !c.Epsilon.IsPositive() {
		return fmt.Errorf("%w: Epsilon must be positive, got %s", ErrInvalidConfig, c.Epsilon)
	}
	if !c.LowerBound.LessThan(c.UpperBound) {
		return fmt.Errorf("%w: LowerBound %s must be below UpperBound %s", ErrInvalidConfig, c.LowerBound, c.UpperBound)
	}
	return nil
}

// WithBounds returns a copy of c with new clamp bounds.
func (c Config) WithBounds(lower, upper decimal.Decimal) Config {
	c.LowerBound = lower
	c.UpperBound = upper
	return c
}

// Clamp limits v to [LowerBound, UpperBound].
func (c Config) Clamp(v decimal.Decimal) decimal.Decimal {
	if v.LessThan(c.LowerBound) {
		return c.LowerBound
	}
	if v.GreaterThan(c.UpperBound) {
		return c.UpperBound
	}
	return v
}
