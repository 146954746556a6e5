// Package curve interpolates rates and discount factors along a maturity axis.
package curve

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/daycount"
	"github.com/meenmo/finkernel/decmath"
)

var (
	// ErrEmptyCurve is returned when a curve has no points.
	ErrEmptyCurve = errors.New("curve has no points")
	// ErrDuplicateMaturity is returned when two points share a maturity.
	ErrDuplicateMaturity = errors.New("duplicate maturity")
)

// Point is a single (maturity, value) node. Maturity is the independent
// variable (years, or any tenor axis); Value is a rate, discount factor or
// any other quantity interpolated along it.
type Point struct {
	Maturity decimal.Decimal
	Value    decimal.Decimal
}

// Curve is a non-empty set of points sorted by ascending maturity with no
// duplicate maturities. The zero value is not usable; build one with New.
//
// The same type serves discount, forward, zero and repo-term curves.
type Curve struct {
	points []Point
}

// New copies and sorts points, rejecting empty input and duplicate maturities.
func New(points []Point) (Curve, error) {
	if len(points) == 0 {
		return Curve{}, ErrEmptyCurve
	}
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Maturity.LessThan(sorted[j].Maturity)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Maturity.Equal(sorted[i-1].Maturity) {
			return Curve{}, fmt.Errorf("curve.New: %w at %s", ErrDuplicateMaturity, sorted[i].Maturity)
		}
	}
	return Curve{points: sorted}, nil
}

// MustNew is New for curves known to be valid (fixtures, constants).
func MustNew(points []Point) Curve {
	c, err := New(points)
	if err != nil {
		panic(err)
	}
	return c
}

// NewFromDates builds a curve whose maturities are year fractions from
// settlement to each pillar date under the given day count.
func NewFromDates(settlement time.Time, values map[time.Time]decimal.Decimal, convention daycount.Convention) (Curve, error) {
	points := make([]Point, 0, len(values))
	for d, v := range values {
		points = append(points, Point{
			Maturity: daycount.YearFraction(settlement, d, convention),
			Value:    v,
		})
	}
	return New(points)
}

// Interpolate returns the value at t from points sorted by maturity.
//
// Outside the curve the nearest endpoint value is returned (flat
// extrapolation). Inside, values are interpolated linearly between the
// bracketing pair: v1 + (v2-v1)·(t-t1)/(t2-t1). A degenerate bracket with
// t1 == t2 returns v1. An empty slice returns 0.
func Interpolate(points []Point, t decimal.Decimal) decimal.Decimal {
	n := len(points)
	if n == 0 {
		return decimal.Zero
	}
	if !t.GreaterThan(points[0].Maturity) {
		return points[0].Value
	}
	if !t.LessThan(points[n-1].Maturity) {
		return points[n-1].Value
	}

	i := bracket(points, t)
	lo, hi := points[i-1], points[i]
	if hi.Maturity.Equal(t) {
		return hi.Value
	}
	span := hi.Maturity.Sub(lo.Maturity)
	if span.IsZero() {
		return lo.Value
	}
	w := t.Sub(lo.Maturity).DivRound(span, decmath.Places)
	return decmath.Round(lo.Value.Add(hi.Value.Sub(lo.Value).Mul(w)))
}

// bracket returns the index of the first point with maturity >= t.
// Callers guarantee points[0].Maturity < t < points[n-1].Maturity, so the
// result is in [1, n-1].
func bracket(points []Point, t decimal.Decimal) int {
	return sort.Search(len(points), func(i int) bool {
		return !points[i].Maturity.LessThan(t)
	})
}

// At returns the linearly interpolated value at t.
func (c Curve) At(t decimal.Decimal) decimal.Decimal {
	return Interpolate(c.points, t)
}

// LogLinear interpolates a discount factor curve log-linearly:
//
//	D(t) = D1·exp(-f·(t-t1)),  f = ln(D1/D2)/(t2-t1)
//
// which is linear interpolation of ln D. Knot values are returned exactly
// and the ends extrapolate flat. Values must be positive discount factors;
// a non-positive value makes Ln return its 0 sentinel.
func (c Curve) LogLinear(t decimal.Decimal) decimal.Decimal {
	n := len(c.points)
	if n == 0 {
		return decimal.Zero
	}
	if !t.GreaterThan(c.points[0].Maturity) {
		return c.points[0].Value
	}
	if !t.LessThan(c.points[n-1].Maturity) {
		return c.points[n-1].Value
	}

	i := bracket(c.points, t)
	lo, hi := c.points[i-1], c.points[i]
	if hi.Maturity.Equal(t) {
		return hi.Value
	}
	w := t.Sub(lo.Maturity).DivRound(hi.Maturity.Sub(lo.Maturity), decmath.Places)
	ln1 := decmath.Ln(lo.Value)
	ln2 := decmath.Ln(hi.Value)
	return decmath.Exp(ln1.Add(ln2.Sub(ln1).Mul(w)))
}

// Shift returns a copy of the curve with spread added to every value.
func (c Curve) Shift(spread decimal.Decimal) Curve {
	shifted := make([]Point, len(c.points))
	for i, p := range c.points {
		shifted[i] = Point{Maturity: p.Maturity, Value: p.Value.Add(spread)}
	}
	return Curve{points: shifted}
}

// Points returns a copy of the curve's points.
func (c Curve) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}

// Len returns the number of points.
func (c Curve) Len() int {
	return len(c.points)
}

// First returns the shortest-maturity point.
func (c Curve) First() Point {
	return c.points[0]
}

// Last returns the longest-maturity point.
func (c Curve) Last() Point {
	return c.points[len(c.points)-1]
}
