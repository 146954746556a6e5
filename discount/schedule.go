package discount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/decmath"
)

var (
	// ErrEmptySchedule is returned for a schedule with no cashflows,
	// including the zero Schedule.
	ErrEmptySchedule = errors.New("schedule has no cashflows")
	// ErrPeriodOrder is returned when periods are negative or not strictly increasing.
	ErrPeriodOrder = errors.New("cashflow periods must be non-negative and strictly increasing")
	// ErrFrequency is returned for fewer than one compounding period per year.
	ErrFrequency = errors.New("frequency must be at least one period per year")
	// ErrAccrued is returned by WithAccrued for an out-of-range fraction.
	ErrAccrued = errors.New("accrued fraction must be in [0, 1) and requires a first period of at least 1")
)

// Cashflow is a single payment Period compounding periods after the
// schedule start.
type Cashflow struct {
	Period int
	Amount decimal.Decimal
}

// Schedule is a validated, immutable cashflow schedule. The zero value is
// empty; every operation on it reports ErrEmptySchedule.
//
// Frequency is the number of compounding periods per year. Accrued is the
// fraction of the first period already elapsed at settlement, so flow i is
// discounted over Period_i - Accrued periods.
type Schedule struct {
	frequency int
	accrued   decimal.Decimal
	flows     []Cashflow
}

// NewSchedule validates and copies flows.
func NewSchedule(frequency int, flows []Cashflow) (Schedule, error) {
	if frequency < 1 {
		return Schedule{}, fmt.Errorf("NewSchedule: %w (got %d)", ErrFrequency, frequency)
	}
	if len(flows) == 0 {
		return Schedule{}, fmt.Errorf("NewSchedule: %w", ErrEmptySchedule)
	}
	prev := -1
	for i, cf := range flows {
		if cf.Period <= prev {
			return Schedule{}, fmt.Errorf("NewSchedule: %w (flow %d at period %d)", ErrPeriodOrder, i, cf.Period)
		}
		prev = cf.Period
	}
	out := make([]Cashflow, len(flows))
	copy(out, flows)
	return Schedule{frequency: frequency, flows: out}, nil
}

// MustSchedule is NewSchedule for schedules known to be valid.
func MustSchedule(frequency int, flows []Cashflow) Schedule {
	s, err := NewSchedule(frequency, flows)
	if err != nil {
		panic(err)
	}
	return s
}

// Bullet builds a fixed-coupon schedule: n periods paying coupon·face/frequency
// with face repaid alongside the last coupon.
func Bullet(face, annualCoupon decimal.Decimal, periods, frequency int) (Schedule, error) {
	if periods < 1 {
		return Schedule{}, fmt.Errorf("Bullet: %w", ErrEmptySchedule)
	}
	if frequency < 1 {
		return Schedule{}, fmt.Errorf("Bullet: %w (got %d)", ErrFrequency, frequency)
	}
	cpn := face.Mul(annualCoupon).DivRound(decimal.NewFromInt(int64(frequency)), decmath.Places)
	flows := make([]Cashflow, periods)
	for i := range flows {
		flows[i] = Cashflow{Period: i + 1, Amount: cpn}
	}
	flows[periods-1].Amount = cpn.Add(face)
	return NewSchedule(frequency, flows)
}

// Validate reports ErrEmptySchedule or ErrFrequency for a schedule not
// built by NewSchedule.
func (s Schedule) Validate() error {
	if len(s.flows) == 0 {
		return ErrEmptySchedule
	}
	if s.frequency < 1 {
		return fmt.Errorf("%w (got %d)", ErrFrequency, s.frequency)
	}
	return nil
}

// WithAccrued returns a copy with the accrued fraction set.
func (s Schedule) WithAccrued(accrued decimal.Decimal) (Schedule, error) {
	if err := s.Validate(); err != nil {
		return Schedule{}, fmt.Errorf("WithAccrued: %w", err)
	}
	if accrued.IsNegative() || !accrued.LessThan(one) {
		return Schedule{}, fmt.Errorf("WithAccrued: %w (got %s)", ErrAccrued, accrued)
	}
	if accrued.IsPositive() && s.flows[0].Period < 1 {
		return Schedule{}, fmt.Errorf("WithAccrued: %w", ErrAccrued)
	}
	s.accrued = accrued
	return s, nil
}

// Frequency returns the compounding periods per year.
func (s Schedule) Frequency() int { return s.frequency }

// Accrued returns the elapsed fraction of the first period.
func (s Schedule) Accrued() decimal.Decimal { return s.accrued }

// Len returns the number of cashflows.
func (s Schedule) Len() int { return len(s.flows) }

// Flows returns a copy of the cashflows.
func (s Schedule) Flows() []Cashflow {
	out := make([]Cashflow, len(s.flows))
	copy(out, s.flows)
	return out
}

// Total is the undiscounted sum of all amounts.
func (s Schedule) Total() decimal.Decimal {
	total := decimal.Zero
	for _, cf := range s.flows {
		total = total.Add(cf.Amount)
	}
	return total
}

// Time returns the discounting time of flow i in periods.
func (s Schedule) Time(i int) decimal.Decimal {
	return decimal.NewFromInt(int64(s.flows[i].Period)).Sub(s.accrued)
}

// Years returns the time to the last cashflow in years, or 0 for an
// invalid schedule.
func (s Schedule) Years() decimal.Decimal {
	if s.Validate() != nil {
		return decimal.Zero
	}
	return s.Time(len(s.flows)-1).DivRound(decimal.NewFromInt(int64(s.frequency)), decmath.Places)
}

// Truncate keeps the flows paid at or before period.
func (s Schedule) Truncate(period int) (Schedule, error) {
	if err := s.Validate(); err != nil {
		return Schedule{}, fmt.Errorf("Truncate: %w", err)
	}
	kept := make([]Cashflow, 0, len(s.flows))
	for _, cf := range s.flows {
		if cf.Period <= period {
			kept = append(kept, cf)
		}
	}
	if len(kept) == 0 {
		return Schedule{}, fmt.Errorf("Truncate: %w (nothing paid by period %d)", ErrEmptySchedule, period)
	}
	s.flows = kept
	return s, nil
}

// Add returns a copy with amount paid at period, merged into an existing
// flow at the same period.
func (s Schedule) Add(period int, amount decimal.Decimal) (Schedule, error) {
	if err := s.Validate(); err != nil {
		return Schedule{}, fmt.Errorf("Add: %w", err)
	}
	if period < 0 {
		return Schedule{}, fmt.Errorf("Add: %w (period %d)", ErrPeriodOrder, period)
	}
	flows := make([]Cashflow, 0, len(s.flows)+1)
	inserted := false
	for _, cf := range s.flows {
		switch {
		case !inserted && cf.Period == period:
			flows = append(flows, Cashflow{Period: period, Amount: cf.Amount.Add(amount)})
			inserted = true
			continue
		case !inserted && cf.Period > period:
			flows = append(flows, Cashflow{Period: period, Amount: amount})
			inserted = true
		}
		flows = append(flows, cf)
	}
	if !inserted {
		flows = append(flows, Cashflow{Period: period, Amount: amount})
	}
	out, err := NewSchedule(s.frequency, flows)
	if err != nil {
		return Schedule{}, err
	}
	if s.accrued.IsPositive() {
		return out.WithAccrued(s.accrued)
	}
	return out, nil
}
