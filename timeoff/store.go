/*
store.go - Persistence contract for employees, leave history and requests

PURPOSE:
  The engine itself never reads or writes storage. This is the interface
  the HTTP layer uses to fetch EmployeeRecords and to record new leave.

APPEND-ONLY LEAVE HISTORY:
  - AppendLeave(): the only write to an employee's history
  - NO update or delete of leave entries
  - Corrections are recorded as new entries by an admin

APPROVAL WORKFLOW:
  Members submit LeaveRequests. DecideRequest() marks a pending request
  approved or rejected; on approval the entry is appended to the leave
  history in the same atomic step.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/memory: In-memory for tests and local runs

SEE ALSO:
  - generic/errors.go: Sentinel errors returned by implementations
*/
package timeoff

import "context"

// EmployeeStore reads and creates employee records.
type EmployeeStore interface {
	// ListEmployees returns every employee with its full leave history.
	ListEmployees(ctx context.Context) ([]EmployeeRecord, error)

	// GetEmployee returns one employee or generic.ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, id string) (EmployeeRecord, error)

	// CreateEmployee fails with generic.ErrDuplicateEmployee if the id is taken.
	// Any LeaveTaken entries on the record are stored too.
	CreateEmployee(ctx context.Context, emp EmployeeRecord) error
}

// LeaveStore appends to an employee's leave history.
type LeaveStore interface {
	// AppendLeave fails with generic.ErrEmployeeNotFound for unknown employees.
	AppendLeave(ctx context.Context, employeeID string, entry LeaveEntry) error
}

// RequestStore persists the approval queue.
type RequestStore interface {
	SaveRequest(ctx context.Context, r LeaveRequest) error

	// GetRequest returns generic.ErrRequestNotFound for unknown ids.
	GetRequest(ctx context.Context, id string) (LeaveRequest, error)

	// PendingRequests returns pending requests, oldest first.
	PendingRequests(ctx context.Context) ([]LeaveRequest, error)

	// DecideRequest atomically applies d to a pending request and, on
	// approval, appends its entry to the leave history. Returns the updated
	// request, or generic.ErrRequestNotPending if it was already decided.
	DecideRequest(ctx context.Context, id string, d Decision) (LeaveRequest, error)
}

// Store is everything the HTTP layer needs.
type Store interface {
	EmployeeStore
	LeaveStore
	RequestStore
}
