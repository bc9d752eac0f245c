package timeoff

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// POLICY
// =============================================================================

// DefaultMonthlyAccrual is 0.83 days credited per full month of service.
var DefaultMonthlyAccrual = decimal.RequireFromString("0.83")

// DefaultWaitingMonths is the number of full months before leave may be used.
const DefaultWaitingMonths = 6

// Policy holds the tunable parameters of the accrual engine.
type Policy struct {
	MonthlyAccrual decimal.Decimal
	WaitingMonths  int
	Eligibility    EligibilityRule
}

// DefaultPolicy is 0.83 days/month, a 6 month wait and the hire-month
// eligibility year.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultMonthlyAccrual, DefaultWaitingMonths)
}

// NewPolicy builds a policy whose eligibility year follows the waiting period.
func NewPolicy(monthlyAccrual decimal.Decimal, waitingMonths int) Policy {
	return Policy{
		MonthlyAccrual: monthlyAccrual,
		WaitingMonths:  waitingMonths,
		Eligibility:    HireMonthRule{WaitingMonths: waitingMonths},
	}
}

// accrue converts full months of service into days.
func (p Policy) accrue(fullMonths int) decimal.Decimal {
	return p.MonthlyAccrual.Mul(decimal.NewFromInt(int64(fullMonths)))
}

func (p Policy) eligible(fullMonthsTenure int) bool {
	return fullMonthsTenure >= p.WaitingMonths
}

// =============================================================================
// ELIGIBILITY YEAR
// =============================================================================

// EligibilityRule decides in which calendar year an employee first becomes
// eligible. That year is the one in which pre-eligibility accrual is banked in.
type EligibilityRule interface {
	EligibilityYear(hire generic.TimePoint) int
}

// HireMonthRule derives the eligibility year from the hire month alone:
// with a 6 month wait, Jan-Jun hires are eligible in the hire year and
// Jul-Dec hires in the following year.
type HireMonthRule struct {
	WaitingMonths int
}

func (r HireMonthRule) EligibilityYear(hire generic.TimePoint) int {
	monthIndex := int(hire.Month()) - 1 // 0-11
	return hire.Year() + (monthIndex+r.WaitingMonths)/12
}
