package daycount

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/decmath"
)

// Convention names a day count basis.
type Convention string

const (
	Act360     Convention = "ACT/360"
	Act365F    Convention = "ACT/365F"
	Thirty360  Convention = "30/360"
	ThirtyE360 Convention = "30E/360"
)

var (
	d360 = decimal.NewFromInt(360)
	d365 = decimal.NewFromInt(365)
)

// Days returns the number of calendar days from start to end, counted on
// the civil dates so that time-of-day and zone offsets do not leak in.
func Days(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s) / (24 * time.Hour))
}

// YearFraction computes the year fraction between two dates.
// Unknown conventions fall back to ACT/365F, the curve time axis convention.
func YearFraction(start, end time.Time, convention Convention) decimal.Decimal {
	switch convention {
	case Act360:
		return decimal.NewFromInt(int64(Days(start, end))).DivRound(d360, decmath.Places)
	case Thirty360, ThirtyE360:
		return decimal.NewFromInt(int64(thirty360Days(start, end, convention))).DivRound(d360, decmath.Places)
	default:
		return decimal.NewFromInt(int64(Days(start, end))).DivRound(d365, decmath.Places)
	}
}

// thirty360Days counts days on a 30-day-month basis.
//
// 30E/360 caps both day-of-month values at 30. 30/360 (bond basis) caps D2
// only when D1 is already 30 or 31.
func thirty360Days(start, end time.Time, convention Convention) int {
	d1, d2 := start.Day(), end.Day()
	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 && (convention == ThirtyE360 || d1 == 30) {
		d2 = 30
	}
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return 360*(y2-y1) + 30*(m2-m1) + (d2 - d1)
}
