package timeoff_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func date(s string) generic.TimePoint { return generic.MustParseDate(s) }

func leave(on string, days float64) timeoff.LeaveEntry {
	e := timeoff.LeaveEntry{Days: generic.Days(days), Type: "annual"}
	if on != "" {
		e.Date = date(on)
	}
	return e
}

func employee(id, hired string, entries ...timeoff.LeaveEntry) timeoff.EmployeeRecord {
	return timeoff.EmployeeRecord{
		ID:              id,
		FullName:        "Employee " + id,
		Position:        "Engineer",
		HireDate:        date(hired),
		StartingBalance: decimal.Zero,
		LeaveTaken:      entries,
	}
}

func assertDays(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func enrich(emp timeoff.EmployeeRecord, asOf string) timeoff.EnrichedEmployeeRecord {
	return timeoff.NewEngine(timeoff.DefaultPolicy()).Enrich(emp, date(asOf))
}

// =============================================================================
// ELIGIBILITY GATE
// =============================================================================

func TestEngine_WaitingPeriod_NothingAvailable(t *testing.T) {
	// GIVEN: Hired 2023-08-15, one day short of six full months
	emp := employee("e1", "2023-08-15")

	// WHEN: Evaluated on 2024-02-14
	got := enrich(emp, "2024-02-14")

	// THEN: Accrual is shown but none of it is usable yet
	assert.Equal(t, 5, got.FullMonthsTenure)
	assert.False(t, got.CanUseLeave)
	assertDays(t, "4.15", got.AccruedLeave)
	assertDays(t, "0", got.AvailableLeaveToUse)
	assert.Equal(t, timeoff.BasisWaitingPeriod, got.Raw.Basis)
}

func TestEngine_BankIn_FirstEligibleYearUsesLifetimeBalance(t *testing.T) {
	// GIVEN: Hired in August, so eligibility falls in the following year
	emp := employee("e1", "2023-08-15")

	// WHEN: Evaluated once six full months have passed
	got := enrich(emp, "2024-03-01")

	// THEN: Pre-eligibility accrual from 2023 is banked into 2024
	assert.Equal(t, 6, got.FullMonthsTenure)
	assert.True(t, got.CanUseLeave)
	assert.Equal(t, 2024, got.Raw.EligibilityYear)
	assert.Equal(t, timeoff.BasisBankIn, got.Raw.Basis)
	assertDays(t, "4.98", got.AccruedLeave)
	assertDays(t, "4.98", got.AvailableLeaveToUse)

	// The current-year view alone would only give Jan-Mar
	assertDays(t, "1.66", got.Raw.YearAccrued)
}

func TestEngine_Established_NoCarryover(t *testing.T) {
	// GIVEN: A long-tenured employee with leave in two years
	emp := employee("e1", "2020-01-10",
		leave("2023-05-05", 2),
		leave("2024-02-01", 3),
	)

	// WHEN: Evaluated mid 2024
	got := enrich(emp, "2024-06-01")

	// THEN: Lifetime figures cover everything
	assert.Equal(t, 52, got.FullMonthsTenure)
	assertDays(t, "43.16", got.AccruedLeave)
	assertDays(t, "5", got.LeaveTakenTotal)
	assertDays(t, "38.16", got.LeaveBalance)

	// AND: Only this year's accrual minus this year's usage is available
	assert.Equal(t, timeoff.BasisCurrentYear, got.Raw.Basis)
	assertDays(t, "4.15", got.Raw.YearAccrued)
	assertDays(t, "3", got.Raw.YearTaken)
	assertDays(t, "1.15", got.AvailableLeaveToUse)
	assert.Equal(t, 2024, got.AccrualYear)
}

func TestEngine_NegativeBalanceIsNotFloored(t *testing.T) {
	// GIVEN: An employee who took more leave than accrued
	emp := employee("e1", "2024-01-01", leave("2024-03-04", 7))

	// WHEN: Evaluated at six months
	got := enrich(emp, "2024-07-01")

	// THEN: Balances go negative
	assert.True(t, got.CanUseLeave)
	assertDays(t, "-2.02", got.LeaveBalance)
	assertDays(t, "-2.02", got.AvailableLeaveToUse)
}

func TestEngine_HiredToday(t *testing.T) {
	// GIVEN: An employee with no history hired on the reference date
	emp := employee("e1", "2024-05-20")

	got := enrich(emp, "2024-05-20")

	// THEN: Zero everywhere, not eligible
	assert.Equal(t, 0, got.TenureDays)
	assert.Equal(t, 0, got.TenureYears)
	assert.Equal(t, 0, got.TenureMonths)
	assert.Equal(t, 0, got.FullMonthsTenure)
	assert.False(t, got.CanUseLeave)
	assertDays(t, "0", got.AccruedLeave)
	assertDays(t, "0", got.LeaveTakenTotal)
	assertDays(t, "0", got.LeaveBalance)
	assertDays(t, "0", got.AvailableLeaveToUse)
}

func TestEngine_StartingBalance(t *testing.T) {
	// GIVEN: An established employee migrated with 2.5 days of credit
	emp := employee("e1", "2019-03-01")
	emp.StartingBalance = decimal.RequireFromString("2.5")

	got := enrich(emp, "2024-03-15")

	// THEN: The credit is added to both lifetime and current-year accrual
	assertDays(t, "52.3", got.AccruedLeave)         // 60 × 0.83 + 2.5
	assertDays(t, "4.16", got.AvailableLeaveToUse) // 2 × 0.83 + 2.5
}

func TestEngine_EntriesWithoutDate_CountOnlyInLifetime(t *testing.T) {
	emp := employee("e1", "2020-01-10",
		leave("", 1.5),
		leave("2024-02-01", 1),
	)

	got := enrich(emp, "2024-06-01")

	assertDays(t, "2.5", got.LeaveTakenTotal)
	assertDays(t, "1", got.Raw.YearTaken)
}

func TestEngine_OutOfRangeEntries_CountInLifetimeAsIs(t *testing.T) {
	// GIVEN: One entry before hire and one in the future
	emp := employee("e1", "2022-03-01",
		leave("2021-12-01", 1),
		leave("2030-01-01", 2),
	)

	got := enrich(emp, "2024-06-01")

	// THEN: Lifetime counts both; the current year counts neither
	assertDays(t, "3", got.LeaveTakenTotal)
	assertDays(t, "0", got.Raw.YearTaken)
}

func TestEngine_FractionalDays_DisplayRounding(t *testing.T) {
	emp := employee("e1", "2020-01-10",
		leave("2024-01-15", 0.333),
		leave("2024-01-16", 0.333),
	)

	got := enrich(emp, "2024-06-01")

	// Raw keeps full precision, display rounds to 2 places
	assertDays(t, "0.666", got.Raw.YearTaken)
	assertDays(t, "3.484", got.Raw.Available)
	assertDays(t, "3.48", got.AvailableLeaveToUse)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestEngine_BalanceIdentity(t *testing.T) {
	emps := []timeoff.EmployeeRecord{
		employee("a", "2020-01-10", leave("2024-02-01", 3), leave("2023-01-02", 4.5)),
		employee("b", "2023-08-15"),
		employee("c", "2024-01-01", leave("2024-03-04", 7)),
	}

	for _, got := range timeoff.Compute(emps, date("2024-06-01")) {
		assert.True(t, got.Raw.LifetimeAccrued.Sub(got.Raw.LifetimeTaken).Equal(got.Raw.LifetimeBalance), got.ID)
		assert.True(t, got.Raw.YearAccrued.Sub(got.Raw.YearTaken).Equal(got.Raw.YearBalance), got.ID)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	emps := []timeoff.EmployeeRecord{
		employee("a", "2020-01-10", leave("2024-02-01", 3)),
		employee("b", "2023-08-15"),
	}
	asOf := date("2024-03-01")

	first := timeoff.Compute(emps, asOf)
	second := timeoff.Compute(emps, asOf)

	assert.Equal(t, first, second)
}

func TestEngine_PreservesOrder(t *testing.T) {
	emps := []timeoff.EmployeeRecord{
		employee("z", "2021-01-01"),
		employee("a", "2022-01-01"),
		employee("m", "2023-01-01"),
	}

	got := timeoff.Compute(emps, date("2024-01-01"))

	require.Len(t, got, 3)
	assert.Equal(t, []string{"z", "a", "m"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestEngine_DoesNotMutateInput(t *testing.T) {
	// GIVEN: An input record
	emps := []timeoff.EmployeeRecord{
		employee("a", "2020-01-10", leave("2024-02-01", 3)),
	}

	// WHEN: Computing and then scribbling on the output
	got := timeoff.Compute(emps, date("2024-06-01"))
	got[0].LeaveTaken[0].Days = generic.Days(99)
	got[0].FullName = "changed"

	// THEN: The input is untouched
	assertDays(t, "3", emps[0].LeaveTaken[0].Days)
	assert.Equal(t, "Employee a", emps[0].FullName)
}

func TestEngine_AvailabilityFlipsAtSixthMonthBoundary(t *testing.T) {
	emp := employee("e1", "2024-01-20")

	before := enrich(emp, "2024-07-19")
	on := enrich(emp, "2024-07-20")

	assert.False(t, before.CanUseLeave)
	assertDays(t, "0", before.AvailableLeaveToUse)

	assert.True(t, on.CanUseLeave)
	assert.Greater(t, on.FullMonthsTenure, before.FullMonthsTenure)
	assertDays(t, "4.98", on.AvailableLeaveToUse)
}

func TestEngine_AccrualStepsAtMonthBoundary(t *testing.T) {
	// GIVEN: A hire on the 31st, so short months exercise the day borrow
	hire := date("2023-01-31")
	emp := employee("e1", hire.String())
	step := decimal.RequireFromString("0.83")

	prev := enrich(emp, hire.String())
	for d := hire.AddDays(1); d.Before(hire.AddDays(800)); d = d.AddDays(1) {
		// WHEN: Evaluated one day later
		got := enrich(emp, d.String())
		diff := got.AccruedLeave.Sub(prev.AccruedLeave)

		// THEN: Accrual rises by one month's rate exactly when a full month completes
		if got.FullMonthsTenure > prev.FullMonthsTenure {
			require.Truef(t, diff.Equal(step), "%s: want +0.83, got %s", d, diff)
			require.Equal(t, prev.FullMonthsTenure+1, got.FullMonthsTenure, d.String())
		} else {
			require.Truef(t, diff.IsZero(), "%s: want no change, got %s", d, diff)
		}
		prev = got
	}
	assert.Equal(t, 26, prev.FullMonthsTenure)
}

func TestEngine_SecondEligibleYearStopsBankingIn(t *testing.T) {
	// GIVEN: Hired in August 2023, eligible (banking in) during 2024
	emp := employee("e1", "2023-08-15", leave("2024-04-01", 2))

	// WHEN: Evaluated in 2025
	got := enrich(emp, "2025-03-01")

	// THEN: 2024 leftovers are gone; only 2025 accrual counts
	assert.Equal(t, timeoff.BasisCurrentYear, got.Raw.Basis)
	assertDays(t, "1.66", got.AvailableLeaveToUse)
	assertDays(t, "12.94", got.LeaveBalance) // 18 × 0.83 - 2
}

// =============================================================================
// POLICY
// =============================================================================

func TestHireMonthRule_EligibilityYear(t *testing.T) {
	rule := timeoff.HireMonthRule{WaitingMonths: timeoff.DefaultWaitingMonths}

	tests := []struct {
		hired string
		want  int
	}{
		{"2023-01-01", 2023},
		{"2023-06-30", 2023},
		{"2023-07-01", 2024},
		{"2023-12-31", 2024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rule.EligibilityYear(date(tt.hired)), tt.hired)
	}
}

func TestEngine_CustomPolicy(t *testing.T) {
	// GIVEN: 1.5 days a month with a three month wait
	engine := timeoff.NewEngine(timeoff.NewPolicy(decimal.RequireFromString("1.5"), 3))
	emp := employee("e1", "2024-10-05")

	// WHEN: Evaluated after three full months
	got := engine.Enrich(emp, date("2025-01-05"))

	// THEN: October hire with a 3 month wait is eligible in 2025 and banks in
	assert.True(t, got.CanUseLeave)
	assert.Equal(t, 2025, got.Raw.EligibilityYear)
	assertDays(t, "4.5", got.AvailableLeaveToUse)
}
