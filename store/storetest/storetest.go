// Package storetest holds behaviour every timeoff.Store must share. Each
// backend's tests call Run with a constructor for a fresh, empty store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// Run exercises the full timeoff.Store contract.
func Run(t *testing.T, newStore func(t *testing.T) timeoff.Store) {
	t.Run("CreateAndGetEmployee", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("DuplicateEmployee", func(t *testing.T) { testDuplicate(t, newStore(t)) })
	t.Run("UnknownEmployee", func(t *testing.T) { testUnknownEmployee(t, newStore(t)) })
	t.Run("ListEmployeesByName", func(t *testing.T) { testListByName(t, newStore(t)) })
	t.Run("AppendLeave", func(t *testing.T) { testAppendLeave(t, newStore(t)) })
	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) { testCopies(t, newStore(t)) })
	t.Run("PendingRequestsOldestFirst", func(t *testing.T) { testPendingOrder(t, newStore(t)) })
	t.Run("ApproveAppendsEntry", func(t *testing.T) { testApprove(t, newStore(t)) })
	t.Run("RejectLeavesHistoryAlone", func(t *testing.T) { testReject(t, newStore(t)) })
	t.Run("DecideTwice", func(t *testing.T) { testDecideTwice(t, newStore(t)) })
	t.Run("UnknownRequest", func(t *testing.T) { testUnknownRequest(t, newStore(t)) })
}

// =============================================================================
// FIXTURES
// =============================================================================

var now = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func entry(on string, days string) timeoff.LeaveEntry {
	return timeoff.LeaveEntry{
		Date: generic.MustParseDate(on),
		Days: decimal.RequireFromString(days),
		Type: "annual",
	}
}

func record(id, name string, entries ...timeoff.LeaveEntry) timeoff.EmployeeRecord {
	return timeoff.EmployeeRecord{
		ID:              id,
		FullName:        name,
		Position:        "Engineer",
		HireDate:        generic.MustParseDate("2022-04-11"),
		StartingBalance: decimal.RequireFromString("1.25"),
		LeaveTaken:      entries,
	}
}

func totalDays(entries []timeoff.LeaveEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Days)
	}
	return total
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func testCreateAndGet(t *testing.T, s timeoff.Store) {
	ctx := context.Background()

	// GIVEN: An employee created with history
	in := record("e1", "Ada Lovelace", entry("2024-01-08", "1"), entry("2023-11-20", "0.5"))
	in.LeaveTaken[1].Note = "half day"
	require.NoError(t, s.CreateEmployee(ctx, in))

	// WHEN: Reading it back
	got, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)

	// THEN: Every field survives, quantities exactly
	assert.Equal(t, "Ada Lovelace", got.FullName)
	assert.Equal(t, "Engineer", got.Position)
	assert.Equal(t, "2022-04-11", got.HireDate.String())
	assert.True(t, decimal.RequireFromString("1.25").Equal(got.StartingBalance))
	require.Len(t, got.LeaveTaken, 2)
	assert.True(t, decimal.RequireFromString("1.5").Equal(totalDays(got.LeaveTaken)))

	var notes []string
	for _, e := range got.LeaveTaken {
		notes = append(notes, e.Note)
	}
	assert.ElementsMatch(t, []string{"", "half day"}, notes)
}

func testDuplicate(t *testing.T, s timeoff.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, record("e1", "Ada")))

	err := s.CreateEmployee(ctx, record("e1", "Someone Else"))

	assert.ErrorIs(t, err, generic.ErrDuplicateEmployee)
	got, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FullName)
}

func testUnknownEmployee(t *testing.T, s timeoff.Store) {
	ctx := context.Background()

	_, err := s.GetEmployee(ctx, "ghost")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)

	err = s.AppendLeave(ctx, "ghost", entry("2024-01-01", "1"))
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
}

func testListByName(t *testing.T, s timeoff.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, record("e1", "Grace Hopper")))
	require.NoError(t, s.CreateEmployee(ctx, record("e2", "Ada Lovelace", entry("2024-02-02", "2"))))
	require.NoError(t, s.CreateEmployee(ctx, record("e3", "Barbara Liskov")))

	got, err := s.ListEmployees(ctx)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"e2", "e3", "e1"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Len(t, got[0].LeaveTaken, 1)
	assert.Empty(t, got[1].LeaveTaken)
}

func testAppendLeave(t *testing.T, s timeoff.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, record("e1", "Ada")))

	require.NoError(t, s.AppendLeave(ctx, "e1", entry("2024-03-04", "1")))
	require.NoError(t, s.AppendLeave(ctx, "e1", entry("2024-03-05", "0.75")))

	got, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, got.LeaveTaken, 2)
	assert.True(t, decimal.RequireFromString("1.75").Equal(totalDays(got.LeaveTaken)))
}

func testCopies(t *testing.T, s timeoff.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, record("e1", "Ada", entry("2024-03-04", "1"))))

	first, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	first.LeaveTaken[0].Days = decimal.NewFromInt(42)

	second, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(second.LeaveTaken[0].Days))
}

// =============================================================================
// REQUESTS
// =============================================================================

func testPendingOrder(t *testing.T, s timeoff.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, record("e1", "Ada")))

	later := timeoff.NewLeaveRequest("e1", entry("2024-07-01", "1"), "Ada", now.Add(time.Hour))
	earlier := timeoff.NewLeaveRequest("e1", entry("2024-07-02", "1"), "Ada", now)
	require.NoError(t, s.SaveRequest(ctx, later))
	require.NoError(t, s.SaveRequest(ctx, earlier))

	got, err := s.PendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, earlier.ID, got[0].ID)
	assert.Equal(t, later.ID, got[1].ID)
	assert.Equal(t, timeoff.StatusPending, got[0].Status)
	assert.True(t, got[0].CreatedAt.Equal(now))

	fetched, err := s.GetRequest(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", fetched.Entry.Date.String())
	assert.Equal(t, "Ada", fetched.RequestedBy)
}

func testApprove(t *testing.T, s timeoff.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, record("e1", "Ada")))
	req := timeoff.NewLeaveRequest("e1", entry("2024-07-01", "2.5"), "Ada", now)
	require.NoError(t, s.SaveRequest(ctx, req))

	// WHEN: An admin approves
	decided, err := s.DecideRequest(ctx, req.ID, timeoff.Decision{Approve: true, By: "Admin", At: now.Add(time.Hour)})
	require.NoError(t, err)

	// THEN: The request is approved and the entry joins the history
	assert.Equal(t, timeoff.StatusApproved, decided.Status)
	assert.Equal(t, "Admin", decided.DecidedBy)
	require.NotNil(t, decided.DecidedAt)
	assert.True(t, decided.DecidedAt.Equal(now.Add(time.Hour)))

	emp, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, emp.LeaveTaken, 1)
	assert.True(t, decimal.RequireFromString("2.5").Equal(emp.LeaveTaken[0].Days))

	pending, err := s.PendingRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	stored, err := s.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, timeoff.StatusApproved, stored.Status)
}

func testReject(t *testing.T, s timeoff.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, record("e1", "Ada")))
	req := timeoff.NewLeaveRequest("e1", entry("2024-07-01", "1"), "Ada", now)
	require.NoError(t, s.SaveRequest(ctx, req))

	decided, err := s.DecideRequest(ctx, req.ID, timeoff.Decision{By: "Admin", At: now, Reason: "coverage"})
	require.NoError(t, err)

	assert.Equal(t, timeoff.StatusRejected, decided.Status)
	assert.Equal(t, "coverage", decided.RejectionReason)

	emp, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Empty(t, emp.LeaveTaken)
}

func testDecideTwice(t *testing.T, s timeoff.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, record("e1", "Ada")))
	req := timeoff.NewLeaveRequest("e1", entry("2024-07-01", "1"), "Ada", now)
	require.NoError(t, s.SaveRequest(ctx, req))

	_, err := s.DecideRequest(ctx, req.ID, timeoff.Decision{Approve: true, By: "Admin", At: now})
	require.NoError(t, err)

	_, err = s.DecideRequest(ctx, req.ID, timeoff.Decision{Approve: true, By: "Admin", At: now})
	assert.ErrorIs(t, err, generic.ErrRequestNotPending)

	// The entry was appended once
	emp, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, emp.LeaveTaken, 1)
}

func testUnknownRequest(t *testing.T, s timeoff.Store) {
	ctx := context.Background()

	_, err := s.GetRequest(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrRequestNotFound)

	_, err = s.DecideRequest(ctx, "missing", timeoff.Decision{Approve: true, At: now})
	assert.ErrorIs(t, err, generic.ErrRequestNotFound)
}
