// Package timeoff implements the leave accrual and eligibility engine.
// It uses the generic date and quantity helpers with a leave-specific policy.
package timeoff

import (
	"slices"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// INPUT RECORDS
// =============================================================================

// LeaveEntry is one taken-leave record. Immutable once created.
type LeaveEntry struct {
	Date generic.TimePoint // zero value = missing date
	Days decimal.Decimal   // positive, fractional allowed
	Type string            // free-form category ("annual", "sick", ...)
	Note string
}

// EmployeeRecord is an employee as supplied by the store. Read-only to the engine.
type EmployeeRecord struct {
	ID       string
	FullName string
	Position string
	HireDate generic.TimePoint

	// StartingBalance is a one-time lifetime adjustment to accrual, e.g.
	// credit carried over from a previous system. May be negative.
	StartingBalance decimal.Decimal

	// LeaveTaken holds entries from all years, in no particular order.
	LeaveTaken []LeaveEntry
}

// clone returns a copy whose LeaveTaken does not alias the receiver's.
func (r EmployeeRecord) clone() EmployeeRecord {
	r.LeaveTaken = slices.Clone(r.LeaveTaken)
	return r
}

// =============================================================================
// OUTPUT RECORDS
// =============================================================================

// EnrichedEmployeeRecord is an EmployeeRecord plus everything derived from it
// for one reference date. Quantities are rounded to generic.DisplayPlaces;
// the unrounded figures live in Raw.
type EnrichedEmployeeRecord struct {
	EmployeeRecord

	TenureDays   int
	TenureYears  int
	TenureMonths int

	// FullMonthsTenure gates eligibility.
	FullMonthsTenure int

	// Lifetime totals since hire.
	AccruedLeave    decimal.Decimal
	LeaveTakenTotal decimal.Decimal
	LeaveBalance    decimal.Decimal

	CanUseLeave         bool
	AvailableLeaveToUse decimal.Decimal

	// AccrualYear is the calendar year the record was evaluated for.
	AccrualYear int

	Raw Totals
}

// Totals are the unrounded intermediate quantities for one employee.
type Totals struct {
	LifetimeAccrued decimal.Decimal
	LifetimeTaken   decimal.Decimal
	LifetimeBalance decimal.Decimal

	YearAccrued decimal.Decimal
	YearTaken   decimal.Decimal
	YearBalance decimal.Decimal

	Available decimal.Decimal

	// EligibilityYear is the year the waiting period is considered to end.
	EligibilityYear int
	Basis           AvailabilityBasis
}

// AvailabilityBasis records which branch of the policy produced Available.
type AvailabilityBasis string

const (
	BasisWaitingPeriod AvailabilityBasis = "waiting_period" // not yet eligible
	BasisBankIn        AvailabilityBasis = "bank_in"        // first eligible year: lifetime balance
	BasisCurrentYear   AvailabilityBasis = "current_year"   // established: this year's balance only
)
