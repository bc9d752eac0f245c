/*
accrual.go - Lifetime and current-year leave aggregation

PURPOSE:
  Computes the two balance views the policy reconciles:

  LIFETIME (since hire, no reset):
    accrued = fullMonths(hire, asOf) × rate + startingBalance
    taken   = Σ days over every entry, whatever its date
    balance = accrued - taken

  CURRENT YEAR (no-carryover view):
    window  = [max(hire, Jan 1 of asOf's year), asOf]
    accrued = fullMonths(window) × rate + startingBalance
    taken   = Σ days over entries dated inside asOf's calendar year
    balance = accrued - taken

STARTING BALANCE:
  The starting balance is folded into whichever view the policy ends up
  using. Only one view feeds Available per employee per year, so it is
  never counted twice.

PRECISION:
  Everything here is raw decimal; rounding happens once in engine.go.

EXAMPLE:
  Hired 2023-08-15, asOf 2024-03-01, rate 0.83:
    lifetime months = 6  → accrued 4.98
    window = [2024-01-01, 2024-03-01] → 2 months → accrued 1.66

SEE ALSO:
  - engine.go: Applies the eligibility policy to these views
  - generic/time.go: FullMonthsBetween
*/
package timeoff

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
)

// view is one balance perspective (lifetime or current year).
type view struct {
	accrued decimal.Decimal
	taken   decimal.Decimal
}

func (v view) balance() decimal.Decimal { return v.accrued.Sub(v.taken) }

// lifetimeView aggregates accrual and usage since hire.
func (p Policy) lifetimeView(emp EmployeeRecord, asOf generic.TimePoint) view {
	months := generic.FullMonthsBetween(emp.HireDate, asOf)
	return view{
		accrued: p.accrue(months).Add(emp.StartingBalance),
		taken:   sumTaken(emp.LeaveTaken, nil),
	}
}

// yearView aggregates accrual and usage inside asOf's calendar year.
// Mid-year hires accrue from their hire date, not Jan 1.
func (p Policy) yearView(emp EmployeeRecord, asOf generic.TimePoint) view {
	year := generic.CalendarYear(asOf.Year())
	window := generic.Period{Start: year.Start, End: asOf}.ClampStart(emp.HireDate)
	return view{
		accrued: p.accrue(window.FullMonths()).Add(emp.StartingBalance),
		taken:   sumTaken(emp.LeaveTaken, &year),
	}
}

// sumTaken adds up entry days. With a period, only entries dated inside it
// count, and entries with a missing date are skipped.
func sumTaken(entries []LeaveEntry, within *generic.Period) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if within != nil && !within.Contains(e.Date) {
			continue
		}
		total = total.Add(e.Days)
	}
	return total
}
