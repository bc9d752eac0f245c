/*
Package generic provides the domain-agnostic building blocks of the leave engine.

PURPOSE:
  Calendar-date arithmetic, inclusive periods, exact day quantities and the
  shared error vocabulary. Nothing in here knows about employees, policies
  or HTTP; the timeoff package composes these pieces into the accrual engine.

KEY CONCEPTS IN THIS FILE (types.go):
  - Days quantities are decimal.Decimal so accrual sums never drift
  - Raw values are kept unrounded; Display rounds to DisplayPlaces at output

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Separation: raw accumulation and display rounding are distinct paths

USAGE:
  accrued := generic.Days(0.83).Mul(decimal.NewFromInt(6))
  shown   := generic.Display(accrued) // 4.98

SEE ALSO:
  - time.go: TimePoint and date math
  - period.go: Period windows
  - errors.go: Sentinel errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of decimal places quantities are rounded to
// when leaving the engine.
const DisplayPlaces = 2

// Days converts a float day count into an exact decimal.
func Days(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// MustParseDecimal parses s, returning zero for malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Display rounds a raw quantity for output (half away from zero).
func Display(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayPlaces)
}

// Float converts a quantity to float64 for JSON output.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
