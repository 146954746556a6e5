package curve_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/curve"
	"github.com/meenmo/finkernel/daycount"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pt(m, v string) curve.Point {
	return curve.Point{Maturity: d(m), Value: d(v)}
}

func TestInterpolateBetweenKnots(t *testing.T) {
	t.Parallel()

	crv := curve.MustNew([]curve.Point{pt("1", "0.02"), pt("5", "0.03"), pt("10", "0.04")})

	if got := crv.At(d("3")); !got.Equal(d("0.025")) {
		t.Fatalf("At(3): got %s, want 0.025", got)
	}
	if got := crv.At(d("7.5")); !got.Equal(d("0.035")) {
		t.Fatalf("At(7.5): got %s, want 0.035", got)
	}
}

func TestInterpolateIdempotentAtKnots(t *testing.T) {
	t.Parallel()

	points := []curve.Point{pt("0.25", "0.031"), pt("1", "0.0295"), pt("2", "0.028"), pt("30", "0.041")}
	crv := curve.MustNew(points)
	for _, p := range points {
		if got := crv.At(p.Maturity); !got.Equal(p.Value) {
			t.Fatalf("At(%s): got %s, want %s", p.Maturity, got, p.Value)
		}
	}
}

func TestInterpolateFlatExtrapolation(t *testing.T) {
	t.Parallel()

	crv := curve.MustNew([]curve.Point{pt("1", "0.02"), pt("5", "0.03"), pt("10", "0.04")})

	cases := []struct {
		t, want string
	}{
		{"0", "0.02"},
		{"-3", "0.02"},
		{"1", "0.02"},
		{"10", "0.04"},
		{"50", "0.04"},
	}
	for _, tc := range cases {
		t.Run("t="+tc.t, func(t *testing.T) {
			t.Parallel()

			if got := crv.At(d(tc.t)); !got.Equal(d(tc.want)) {
				t.Fatalf("At(%s): got %s, want %s", tc.t, got, tc.want)
			}
		})
	}
}

func TestInterpolateRawPoints(t *testing.T) {
	t.Parallel()

	if got := curve.Interpolate(nil, d("1")); !got.IsZero() {
		t.Fatalf("empty: got %s", got)
	}

	// Unvalidated input with a repeated maturity must not divide by zero.
	raw := []curve.Point{pt("1", "0.01"), pt("2", "0.02"), pt("2", "0.05"), pt("3", "0.03")}
	if got := curve.Interpolate(raw, d("2.5")); !got.Equal(d("0.04")) {
		t.Fatalf("after repeated knot: got %s, want 0.04", got)
	}
}

func TestNewRejectsInvalidCurves(t *testing.T) {
	t.Parallel()

	if _, err := curve.New(nil); !errors.Is(err, curve.ErrEmptyCurve) {
		t.Fatalf("expected ErrEmptyCurve, got %v", err)
	}
	_, err := curve.New([]curve.Point{pt("1", "0.01"), pt("1.0", "0.02")})
	if !errors.Is(err, curve.ErrDuplicateMaturity) {
		t.Fatalf("expected ErrDuplicateMaturity, got %v", err)
	}
}

func TestNewSortsPoints(t *testing.T) {
	t.Parallel()

	input := []curve.Point{pt("10", "0.04"), pt("1", "0.02"), pt("5", "0.03")}
	crv := curve.MustNew(input)

	if !crv.First().Maturity.Equal(d("1")) || !crv.Last().Maturity.Equal(d("10")) {
		t.Fatalf("unexpected ends: %s..%s", crv.First().Maturity, crv.Last().Maturity)
	}
	if crv.Len() != 3 {
		t.Fatalf("Len: got %d", crv.Len())
	}
	// The input slice must not be reordered.
	if !input[0].Maturity.Equal(d("10")) {
		t.Fatalf("New mutated its input")
	}
}

func TestShift(t *testing.T) {
	t.Parallel()

	crv := curve.MustNew([]curve.Point{pt("1", "0.02"), pt("5", "0.03")})
	shifted := crv.Shift(d("0.0015"))

	if got := shifted.At(d("3")); !got.Equal(d("0.0265")) {
		t.Fatalf("shifted At(3): got %s", got)
	}
	if got := crv.At(d("3")); !got.Equal(d("0.025")) {
		t.Fatalf("original changed: got %s", got)
	}
}

func TestLogLinear(t *testing.T) {
	t.Parallel()

	crv := curve.MustNew([]curve.Point{pt("0", "1"), pt("1", "0.95"), pt("2", "0.9025")})

	if got := crv.LogLinear(d("1")); !got.Equal(d("0.95")) {
		t.Fatalf("knot: got %s", got)
	}
	if got := crv.LogLinear(d("3")); !got.Equal(d("0.9025")) {
		t.Fatalf("flat extrapolation: got %s", got)
	}

	// Constant forward between 1 and 2: D(1.5) = 0.95^1.5.
	want := d("0.925945462756851571149649253990462028429")
	if got := crv.LogLinear(d("1.5")); got.Sub(want).Abs().GreaterThan(d("1e-30")) {
		t.Fatalf("LogLinear(1.5): got %s, want %s", got, want)
	}
}

func TestNewFromDates(t *testing.T) {
	t.Parallel()

	settlement := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	crv, err := curve.NewFromDates(settlement, map[time.Time]decimal.Decimal{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC): d("0.03"),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC): d("0.04"),
	}, daycount.Act365F)
	if err != nil {
		t.Fatalf("NewFromDates: %v", err)
	}
	if !crv.First().Maturity.Equal(d("1")) {
		t.Fatalf("first maturity: got %s", crv.First().Maturity)
	}
	if got := crv.At(d("1")); !got.Equal(d("0.03")) {
		t.Fatalf("At(1): got %s", got)
	}
}
