/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Stores return these (possibly wrapped) so the HTTP layer can map them to
  status codes without knowing which backend produced them.

ERROR CATEGORIES:
  1. Lookup errors - Missing employees or requests
  2. Validation errors - Malformed input rejected at the boundary
  3. Workflow errors - Illegal request state transitions

USAGE:
    if errors.Is(err, generic.ErrEmployeeNotFound) {
        // 404
    }

SEE ALSO:
  - timeoff/store.go: Store contract that returns these
  - api/handlers.go: Maps them to HTTP statuses
*/
package generic

import (
	"errors"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrDuplicateEmployee is returned when creating an employee whose id is taken.
	ErrDuplicateEmployee = errors.New("employee already exists")

	// ErrRequestNotFound is returned when a leave request id is unknown.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrRequestNotPending is returned when deciding a request that was
	// already approved or rejected.
	ErrRequestNotPending = errors.New("leave request is not pending")

	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date (use YYYY-MM-DD)")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrDuplicateEmployee) ||
		errors.Is(err, ErrRequestNotPending)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}

// IsConflict returns true if the error is a state conflict (HTTP 409).
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEmployee) ||
		errors.Is(err, ErrRequestNotPending)
}
