package timeoff

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// LEAVE REQUESTS - Entries queued for approval
// =============================================================================

// RequestStatus is the lifecycle state of a LeaveRequest.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// LeaveRequest is a leave entry submitted by a non-privileged user. It only
// reaches the employee's leave history once approved.
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	Entry       LeaveEntry
	RequestedBy string
	Status      RequestStatus

	DecidedBy       string
	DecidedAt       *time.Time
	RejectionReason string

	CreatedAt time.Time
}

// NewLeaveRequest creates a pending request with a fresh id.
func NewLeaveRequest(employeeID string, entry LeaveEntry, requestedBy string, now time.Time) LeaveRequest {
	return LeaveRequest{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		Entry:       entry,
		RequestedBy: requestedBy,
		Status:      StatusPending,
		CreatedAt:   now.UTC(),
	}
}

// Decision approves or rejects a pending request.
type Decision struct {
	Approve bool
	By      string
	At      time.Time
	Reason  string // rejection reason, ignored on approval
}

// Apply returns the request as it looks after the decision.
// Callers must check the request is pending first.
func (d Decision) Apply(r LeaveRequest) LeaveRequest {
	at := d.At.UTC()
	r.DecidedBy = d.By
	r.DecidedAt = &at
	if d.Approve {
		r.Status = StatusApproved
		r.RejectionReason = ""
	} else {
		r.Status = StatusRejected
		r.RejectionReason = d.Reason
	}
	return r
}
