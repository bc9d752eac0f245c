package generic

// =============================================================================
// PERIOD - Inclusive date window
// =============================================================================

// Period is the closed window [Start, End].
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - Accrual window for a mid-year hire: hire date - reference date
type Period struct {
	Start TimePoint
	End   TimePoint
}

// CalendarYear returns Jan 1 - Dec 31 of year.
func CalendarYear(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// Contains returns true if the time point is within the period [Start, End].
// A zero time point is never contained.
func (p Period) Contains(t TimePoint) bool {
	if t.IsZero() {
		return false
	}
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// ClampStart moves Start forward to floor when floor is later.
func (p Period) ClampStart(floor TimePoint) Period {
	return Period{Start: Later(p.Start, floor), End: p.End}
}

// FullMonths counts the complete months elapsed inside the period.
func (p Period) FullMonths() int {
	return FullMonthsBetween(p.Start, p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
