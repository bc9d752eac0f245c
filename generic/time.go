package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date with no time-of-day and no timezone
// =============================================================================

// DateLayout is the only textual date form accepted at the boundaries.
const DateLayout = "2006-01-02"

// TimePoint is a calendar date. The underlying time is always midnight UTC,
// so two TimePoints compare equal iff they name the same year/month/day.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime drops the clock and zone of t, keeping its wall-clock date.
func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string into a TimePoint.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint  { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddYears(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	if tp.IsZero() {
		return ""
	}
	return tp.Time.Format(DateLayout)
}

// =============================================================================
// DATE ARITHMETIC
// =============================================================================

// DaysBetween returns the whole number of days from `from` to `to`.
// Never negative: a `to` before `from` yields 0.
func DaysBetween(from, to TimePoint) int {
	days := int(to.Time.Sub(from.Time).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// FullMonthsBetween counts complete months from start to end. A month only
// completes once end reaches start's day-of-month. Never negative.
//
//	2023-08-15 → 2024-02-14 = 5
//	2023-08-15 → 2024-02-15 = 6
//	2024-01-31 → 2024-02-29 = 0 (day 29 < day 31)
func FullMonthsBetween(start, end TimePoint) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// Tenure is elapsed calendar time broken into years, months and days.
type Tenure struct {
	Years  int
	Months int
	Days   int
}

// TenureBetween computes a calendar age from hire to asOf.
//
// When the day component goes negative a month is borrowed and the length of
// the month preceding asOf's month is added back; when the month component
// then goes negative a year is borrowed. Not clamped: an asOf before hire
// produces negative components.
func TenureBetween(hire, asOf TimePoint) Tenure {
	years := asOf.Year() - hire.Year()
	months := int(asOf.Month()) - int(hire.Month())
	days := asOf.Day() - hire.Day()

	if days < 0 {
		months--
		prev := asOf.Month() - 1
		prevYear := asOf.Year()
		if prev < time.January {
			prev = time.December
			prevYear--
		}
		days += DaysInMonth(prevYear, prev)
	}

	if months < 0 {
		years--
		months += 12
	}

	return Tenure{Years: years, Months: months, Days: days}
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewTimePoint(year, time.December, 31) }

// DaysInMonth returns 28..31 for the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Later returns whichever of a and b is later.
func Later(a, b TimePoint) TimePoint {
	if a.After(b) {
		return a
	}
	return b
}
