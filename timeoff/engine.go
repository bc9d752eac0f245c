package timeoff

import (
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// ENGINE - Employee records in, enriched records out
// =============================================================================

// Engine evaluates the leave policy for a set of employees at a reference
// date. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	Policy Policy
}

// NewEngine returns an engine for the given policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{Policy: policy}
}

// Compute enriches every record as of asOf. Output order matches input order.
// The inputs are not modified.
func (e *Engine) Compute(employees []EmployeeRecord, asOf generic.TimePoint) []EnrichedEmployeeRecord {
	out := make([]EnrichedEmployeeRecord, len(employees))
	for i, emp := range employees {
		out[i] = e.Enrich(emp, asOf)
	}
	return out
}

// Enrich evaluates one employee.
//
// Decision sequence:
//  1. canUse = full months of tenure ≥ WaitingMonths
//  2. eligibility year from the policy's EligibilityRule
//  3. !canUse                         → available = 0
//     asOf.Year == eligibility year   → available = lifetime balance (bank-in)
//     otherwise                       → available = this year's balance (no carryover)
func (e *Engine) Enrich(emp EmployeeRecord, asOf generic.TimePoint) EnrichedEmployeeRecord {
	p := e.Policy

	tenure := generic.TenureBetween(emp.HireDate, asOf)
	fullMonths := generic.FullMonthsBetween(emp.HireDate, asOf)

	lifetime := p.lifetimeView(emp, asOf)
	year := p.yearView(emp, asOf)

	canUse := p.eligible(fullMonths)
	eligibilityYear := p.Eligibility.EligibilityYear(emp.HireDate)

	totals := Totals{
		LifetimeAccrued: lifetime.accrued,
		LifetimeTaken:   lifetime.taken,
		LifetimeBalance: lifetime.balance(),
		YearAccrued:     year.accrued,
		YearTaken:       year.taken,
		YearBalance:     year.balance(),
		EligibilityYear: eligibilityYear,
	}

	switch {
	case !canUse:
		totals.Basis = BasisWaitingPeriod
	case asOf.Year() == eligibilityYear:
		totals.Basis = BasisBankIn
		totals.Available = totals.LifetimeBalance
	default:
		totals.Basis = BasisCurrentYear
		totals.Available = totals.YearBalance
	}

	return EnrichedEmployeeRecord{
		EmployeeRecord:      emp.clone(),
		TenureDays:          generic.DaysBetween(emp.HireDate, asOf),
		TenureYears:         tenure.Years,
		TenureMonths:        tenure.Months,
		FullMonthsTenure:    fullMonths,
		AccruedLeave:        generic.Display(totals.LifetimeAccrued),
		LeaveTakenTotal:     generic.Display(totals.LifetimeTaken),
		LeaveBalance:        generic.Display(totals.LifetimeBalance),
		CanUseLeave:         canUse,
		AvailableLeaveToUse: generic.Display(totals.Available),
		AccrualYear:         asOf.Year(),
		Raw:                 totals,
	}
}

// Compute enriches records with the default policy.
func Compute(employees []EmployeeRecord, asOf generic.TimePoint) []EnrichedEmployeeRecord {
	return NewEngine(DefaultPolicy()).Compute(employees, asOf)
}
