package decmath

import "github.com/shopspring/decimal"

// PeriodicFromAnnual converts an annual survival-type rate (prepayment,
// default, attrition) to the equivalent per-period rate:
//
//	periodic = 1 - (1 - annual)^(1/periods)
//
// periods < 1 returns annual unchanged.
func PeriodicFromAnnual(annual decimal.Decimal, periods int) decimal.Decimal {
	if periods < 1 {
		return annual
	}
	return Round(one.Sub(NthRoot(one.Sub(annual), periods)))
}

// AnnualFromPeriodic is the inverse of PeriodicFromAnnual:
//
//	annual = 1 - (1 - periodic)^periods
func AnnualFromPeriodic(periodic decimal.Decimal, periods int) decimal.Decimal {
	if periods < 1 {
		return periodic
	}
	return Round(one.Sub(PowInt(one.Sub(periodic), int64(periods))))
}

// CPRToSMM converts a conditional prepayment rate to single monthly mortality.
func CPRToSMM(cpr decimal.Decimal) decimal.Decimal {
	return PeriodicFromAnnual(cpr, 12)
}

// SMMToCPR converts single monthly mortality to a conditional prepayment rate.
func SMMToCPR(smm decimal.Decimal) decimal.Decimal {
	return AnnualFromPeriodic(smm, 12)
}
