/*
Package sqlite provides a SQLite-backed implementation of timeoff.Store.

PURPOSE:
  Persists employees, their append-only leave history and the approval
  queue. The accrual engine never touches this package; the HTTP layer
  loads EmployeeRecords from here and hands them to the engine.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on leave_entries
  - No DELETE statements on leave_entries
  - Corrections are new entries

KEY TABLES:
  employees:       Employee records with starting balance
  leave_entries:   Immutable history of taken leave
  leave_requests:  Member submissions awaiting approval

QUANTITIES:
  Days and starting balances are stored as decimal TEXT, never REAL, so a
  round trip through the database is exact.

CONCURRENCY:
  Uses sync.RWMutex plus a single open connection. That also keeps
  ":memory:" databases coherent, since every connection to ":memory:" is a
  separate database.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - timeoff/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// Store implements timeoff.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ timeoff.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		hire_date TEXT NOT NULL,
		starting_balance TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	-- Leave history (append-only)
	CREATE TABLE IF NOT EXISTS leave_entries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL DEFAULT '',
		days TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_entries_employee_date
		ON leave_entries(employee_id, date);

	-- Approval queue
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		days TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		requested_by TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		decided_by TEXT NOT NULL DEFAULT '',
		decided_at TEXT,
		rejection_reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// EMPLOYEES (timeoff.EmployeeStore)
// =============================================================================

// CreateEmployee inserts an employee and any leave history it carries.
func (s *Store) CreateEmployee(ctx context.Context, emp timeoff.EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO employees (id, full_name, position, hire_date, starting_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, emp.ID, emp.FullName, emp.Position, emp.HireDate.String(), emp.StartingBalance.String(), now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateEmployee
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}

	for _, entry := range emp.LeaveTaken {
		if err := insertLeave(ctx, sqlTx, emp.ID, entry); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

// GetEmployee retrieves an employee with its leave history.
func (s *Store) GetEmployee(ctx context.Context, id string) (timeoff.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp timeoff.EmployeeRecord
	var hireDate, startingBalance string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, full_name, position, hire_date, starting_balance FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.FullName, &emp.Position, &hireDate, &startingBalance)

	if errors.Is(err, sql.ErrNoRows) {
		return timeoff.EmployeeRecord{}, generic.ErrEmployeeNotFound
	}
	if err != nil {
		return timeoff.EmployeeRecord{}, fmt.Errorf("failed to get employee: %w", err)
	}
	emp.HireDate = parseDate(hireDate)
	emp.StartingBalance = generic.MustParseDecimal(startingBalance)

	history, err := s.queryLeave(ctx, "WHERE employee_id = ?", id)
	if err != nil {
		return timeoff.EmployeeRecord{}, err
	}
	emp.LeaveTaken = history[id]
	return emp, nil
}

// ListEmployees returns all employees ordered by name, each with its history.
func (s *Store) ListEmployees(ctx context.Context) ([]timeoff.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, full_name, position, hire_date, starting_balance FROM employees ORDER BY full_name, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	var employees []timeoff.EmployeeRecord
	for rows.Next() {
		var emp timeoff.EmployeeRecord
		var hireDate, startingBalance string
		if err := rows.Scan(&emp.ID, &emp.FullName, &emp.Position, &hireDate, &startingBalance); err != nil {
			rows.Close()
			return nil, err
		}
		emp.HireDate = parseDate(hireDate)
		emp.StartingBalance = generic.MustParseDecimal(startingBalance)
		employees = append(employees, emp)
	}
	// Single connection: rows must be released before the next query.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	history, err := s.queryLeave(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range employees {
		employees[i].LeaveTaken = history[employees[i].ID]
	}
	return employees, nil
}

// =============================================================================
// LEAVE HISTORY (timeoff.LeaveStore)
// =============================================================================

// AppendLeave adds an entry to an employee's history.
func (s *Store) AppendLeave(ctx context.Context, employeeID string, entry timeoff.LeaveEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := requireEmployee(ctx, sqlTx, employeeID); err != nil {
		return err
	}
	if err := insertLeave(ctx, sqlTx, employeeID, entry); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func requireEmployee(ctx context.Context, db execer, employeeID string) error {
	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM employees WHERE id = ?", employeeID,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to check employee: %w", err)
	}
	if count == 0 {
		return generic.ErrEmployeeNotFound
	}
	return nil
}

func insertLeave(ctx context.Context, db execer, employeeID string, entry timeoff.LeaveEntry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO leave_entries (id, employee_id, date, days, leave_type, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		employeeID,
		entry.Date.String(),
		entry.Days.String(),
		entry.Type,
		entry.Note,
		time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to append leave: %w", err)
	}
	return nil
}

// queryLeave loads leave entries grouped by employee id.
func (s *Store) queryLeave(ctx context.Context, where string, args ...any) (map[string][]timeoff.LeaveEntry, error) {
	query := "SELECT employee_id, date, days, leave_type, note FROM leave_entries " +
		where + " ORDER BY date ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave: %w", err)
	}
	defer rows.Close()

	history := make(map[string][]timeoff.LeaveEntry)
	for rows.Next() {
		var employeeID, date, days string
		var entry timeoff.LeaveEntry
		if err := rows.Scan(&employeeID, &date, &days, &entry.Type, &entry.Note); err != nil {
			return nil, err
		}
		entry.Date = parseDate(date)
		entry.Days = generic.MustParseDecimal(days)
		history[employeeID] = append(history[employeeID], entry)
	}
	return history, rows.Err()
}

// =============================================================================
// REQUESTS (timeoff.RequestStore)
// =============================================================================

// SaveRequest inserts or replaces a request.
func (s *Store) SaveRequest(ctx context.Context, r timeoff.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveRequest(ctx, s.db, r)
}

func saveRequest(ctx context.Context, db execer, r timeoff.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (id, employee_id, date, days, leave_type, note, requested_by,
			status, decided_by, decided_at, rejection_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			decided_by = excluded.decided_by,
			decided_at = excluded.decided_at,
			rejection_reason = excluded.rejection_reason
	`

	var decidedAt sql.NullString
	if r.DecidedAt != nil {
		decidedAt = sql.NullString{String: r.DecidedAt.Format(time.RFC3339), Valid: true}
	}

	_, err := db.ExecContext(ctx, query,
		r.ID, r.EmployeeID, r.Entry.Date.String(), r.Entry.Days.String(), r.Entry.Type, r.Entry.Note,
		r.RequestedBy, string(r.Status), r.DecidedBy, decidedAt, r.RejectionReason,
		r.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

const requestColumns = `id, employee_id, date, days, leave_type, note, requested_by,
	status, decided_by, decided_at, rejection_reason, created_at`

// GetRequest retrieves a request by ID.
func (s *Store) GetRequest(ctx context.Context, id string) (timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getRequest(ctx, s.db, id)
}

func getRequest(ctx context.Context, db execer, id string) (timeoff.LeaveRequest, error) {
	row := db.QueryRowContext(ctx, "SELECT "+requestColumns+" FROM leave_requests WHERE id = ?", id)
	r, err := scanRequest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return timeoff.LeaveRequest{}, generic.ErrRequestNotFound
	}
	return r, err
}

// PendingRequests returns all pending requests, oldest first.
func (s *Store) PendingRequests(ctx context.Context) ([]timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM leave_requests WHERE status = ? ORDER BY created_at ASC",
		string(timeoff.StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []timeoff.LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// DecideRequest approves or rejects a pending request in one transaction.
func (s *Store) DecideRequest(ctx context.Context, id string, d timeoff.Decision) (timeoff.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return timeoff.LeaveRequest{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	r, err := getRequest(ctx, sqlTx, id)
	if err != nil {
		return timeoff.LeaveRequest{}, err
	}
	if r.Status != timeoff.StatusPending {
		return timeoff.LeaveRequest{}, generic.ErrRequestNotPending
	}

	if d.Approve {
		if err := requireEmployee(ctx, sqlTx, r.EmployeeID); err != nil {
			return timeoff.LeaveRequest{}, err
		}
		if err := insertLeave(ctx, sqlTx, r.EmployeeID, r.Entry); err != nil {
			return timeoff.LeaveRequest{}, err
		}
	}

	r = d.Apply(r)
	if err := saveRequest(ctx, sqlTx, r); err != nil {
		return timeoff.LeaveRequest{}, err
	}

	if err := sqlTx.Commit(); err != nil {
		return timeoff.LeaveRequest{}, fmt.Errorf("failed to commit decision: %w", err)
	}
	return r, nil
}

func scanRequest(scan func(dest ...any) error) (timeoff.LeaveRequest, error) {
	var r timeoff.LeaveRequest
	var date, days, status, createdAt string
	var decidedAt sql.NullString

	if err := scan(
		&r.ID, &r.EmployeeID, &date, &days, &r.Entry.Type, &r.Entry.Note, &r.RequestedBy,
		&status, &r.DecidedBy, &decidedAt, &r.RejectionReason, &createdAt,
	); err != nil {
		return timeoff.LeaveRequest{}, err
	}

	r.Entry.Date = parseDate(date)
	r.Entry.Days = generic.MustParseDecimal(days)
	r.Status = timeoff.RequestStatus(status)
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if decidedAt.Valid {
		t, _ := time.Parse(time.RFC3339, decidedAt.String)
		r.DecidedAt = &t
	}
	return r, nil
}

// Helper functions

// timestampLayout has a fixed-width fraction so stored timestamps sort
// lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// parseDate maps stored text to a TimePoint; empty or malformed text is a
// missing date.
func parseDate(s string) generic.TimePoint {
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}
	}
	return tp
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY"))
}
