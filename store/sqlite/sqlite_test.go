package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/store/sqlite"
	"github.com/warp/leave-engine/store/storetest"
	"github.com/warp/leave-engine/timeoff"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) timeoff.Store {
		return newTestStore(t)
	})
}

func TestSQLiteStore_Ping(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestSQLiteStore_PingAfterClose(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.Error(t, store.Ping(context.Background()))
}

func TestSQLiteStore_HistorySurvivesReopen(t *testing.T) {
	// GIVEN: A file-backed database with one employee and one entry
	path := filepath.Join(t.TempDir(), "leave.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.CreateEmployee(ctx, timeoff.EmployeeRecord{
		ID:              "e1",
		FullName:        "Ada Lovelace",
		HireDate:        generic.MustParseDate("2021-09-01"),
		StartingBalance: decimal.RequireFromString("-0.5"),
	}))
	require.NoError(t, store.AppendLeave(ctx, "e1", timeoff.LeaveEntry{
		Date: generic.MustParseDate("2024-02-01"),
		Days: decimal.RequireFromString("0.33"),
		Type: "sick",
	}))
	require.NoError(t, store.Close())

	// WHEN: Reopening it
	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	// THEN: Records and exact quantities are still there
	emp, err := reopened.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-0.5").Equal(emp.StartingBalance))
	require.Len(t, emp.LeaveTaken, 1)
	assert.Equal(t, "sick", emp.LeaveTaken[0].Type)
	assert.True(t, decimal.RequireFromString("0.33").Equal(emp.LeaveTaken[0].Days))
}

func TestSQLiteStore_HistoryOrderedByDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, timeoff.EmployeeRecord{
		ID:       "e1",
		FullName: "Ada",
		HireDate: generic.MustParseDate("2021-09-01"),
	}))

	for _, d := range []string{"2024-03-01", "2023-12-24", "2024-01-15"} {
		require.NoError(t, store.AppendLeave(ctx, "e1", timeoff.LeaveEntry{
			Date: generic.MustParseDate(d),
			Days: decimal.NewFromInt(1),
			Type: "annual",
		}))
	}

	emp, err := store.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, emp.LeaveTaken, 3)
	assert.Equal(t, "2023-12-24", emp.LeaveTaken[0].Date.String())
	assert.Equal(t, "2024-03-01", emp.LeaveTaken[2].Date.String())
}
