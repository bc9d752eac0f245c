/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's records (decimal quantities, TimePoint dates) from the
  external contract (float numbers, YYYY-MM-DD strings).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry `validate` tags checked in validation.go before any
  value reaches the engine. The engine itself assumes well-formed input.

SEE ALSO:
  - handlers.go: Uses these types
  - timeoff/types.go: Domain records
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AddLeaveRequest is the body of POST /api/employees/{id}/leave.
// Days is a pointer so a missing value is distinguishable from zero.
type AddLeaveRequest struct {
	Date string   `json:"date" validate:"required,datetime=2006-01-02"`
	Days *float64 `json:"days" validate:"required,gt=0"`
	Type string   `json:"type" validate:"required"`
	Note string   `json:"note,omitempty"`
}

// CreateEmployeeRequest is the body of POST /api/employees.
type CreateEmployeeRequest struct {
	ID              string            `json:"id" validate:"required"`
	FullName        string            `json:"full_name" validate:"required"`
	Position        string            `json:"position"`
	HireDate        string            `json:"hire_date" validate:"required,datetime=2006-01-02"`
	StartingBalance float64           `json:"starting_balance"`
	LeaveTaken      []AddLeaveRequest `json:"leave_taken" validate:"dive"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DecideRequestDTO is the optional body of approve/reject.
type DecideRequestDTO struct {
	Reason string `json:"reason,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// LeaveEntryDTO represents one leave entry.
type LeaveEntryDTO struct {
	Date string  `json:"date"`
	Days float64 `json:"days"`
	Type string  `json:"type"`
	Note string  `json:"note,omitempty"`
}

// EmployeeDTO is an enriched employee as returned to clients.
type EmployeeDTO struct {
	ID              string          `json:"id"`
	FullName        string          `json:"full_name"`
	Position        string          `json:"position"`
	HireDate        string          `json:"hire_date"`
	StartingBalance float64         `json:"starting_balance"`
	LeaveTaken      []LeaveEntryDTO `json:"leave_taken"`

	TenureDays       int `json:"tenure_days"`
	TenureYears      int `json:"tenure_years"`
	TenureMonths     int `json:"tenure_months"`
	FullMonthsTenure int `json:"full_months_tenure"`

	AccruedLeave    float64 `json:"accrued_leave"`
	LeaveTakenTotal float64 `json:"leave_taken_total"`
	LeaveBalance    float64 `json:"leave_balance"`

	CanUseLeave         bool    `json:"can_use_leave"`
	AvailableLeaveToUse float64 `json:"available_leave_to_use"`
	AccrualYear         int     `json:"accrual_year"`

	EligibilityYear   int    `json:"eligibility_year"`
	AvailabilityBasis string `json:"availability_basis"`
}

// LeaveRequestDTO represents a queued leave request.
type LeaveRequestDTO struct {
	ID              string        `json:"id"`
	EmployeeID      string        `json:"employee_id"`
	Entry           LeaveEntryDTO `json:"entry"`
	RequestedBy     string        `json:"requested_by"`
	Status          string        `json:"status"`
	DecidedBy       string        `json:"decided_by,omitempty"`
	DecidedAt       string        `json:"decided_at,omitempty"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	CreatedAt       string        `json:"created_at"`
}

// MessageResponse acknowledges a write, optionally with the recomputed list.
type MessageResponse struct {
	Message   string           `json:"message"`
	Employees []EmployeeDTO    `json:"employees,omitempty"`
	Request   *LeaveRequestDTO `json:"request,omitempty"`
}

// SessionDTO describes the authenticated caller.
type SessionDTO struct {
	Username   string `json:"username"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string     `json:"token"`
	User  SessionDTO `json:"user"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func (req AddLeaveRequest) toEntry() (timeoff.LeaveEntry, error) {
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		return timeoff.LeaveEntry{}, err
	}
	return timeoff.LeaveEntry{
		Date: date,
		Days: generic.Days(*req.Days),
		Type: req.Type,
		Note: req.Note,
	}, nil
}

func (req CreateEmployeeRequest) toRecord() (timeoff.EmployeeRecord, error) {
	hireDate, err := generic.ParseDate(req.HireDate)
	if err != nil {
		return timeoff.EmployeeRecord{}, err
	}
	rec := timeoff.EmployeeRecord{
		ID:              req.ID,
		FullName:        req.FullName,
		Position:        req.Position,
		HireDate:        hireDate,
		StartingBalance: generic.Days(req.StartingBalance),
	}
	for _, l := range req.LeaveTaken {
		entry, err := l.toEntry()
		if err != nil {
			return timeoff.EmployeeRecord{}, err
		}
		rec.LeaveTaken = append(rec.LeaveTaken, entry)
	}
	return rec, nil
}

func toLeaveEntryDTO(e timeoff.LeaveEntry) LeaveEntryDTO {
	return LeaveEntryDTO{
		Date: e.Date.String(),
		Days: generic.Float(e.Days),
		Type: e.Type,
		Note: e.Note,
	}
}

func toEmployeeDTO(e timeoff.EnrichedEmployeeRecord) EmployeeDTO {
	leave := make([]LeaveEntryDTO, len(e.LeaveTaken))
	for i, l := range e.LeaveTaken {
		leave[i] = toLeaveEntryDTO(l)
	}
	return EmployeeDTO{
		ID:                  e.ID,
		FullName:            e.FullName,
		Position:            e.Position,
		HireDate:            e.HireDate.String(),
		StartingBalance:     generic.Float(e.StartingBalance),
		LeaveTaken:          leave,
		TenureDays:          e.TenureDays,
		TenureYears:         e.TenureYears,
		TenureMonths:        e.TenureMonths,
		FullMonthsTenure:    e.FullMonthsTenure,
		AccruedLeave:        generic.Float(e.AccruedLeave),
		LeaveTakenTotal:     generic.Float(e.LeaveTakenTotal),
		LeaveBalance:        generic.Float(e.LeaveBalance),
		CanUseLeave:         e.CanUseLeave,
		AvailableLeaveToUse: generic.Float(e.AvailableLeaveToUse),
		AccrualYear:         e.AccrualYear,
		EligibilityYear:     e.Raw.EligibilityYear,
		AvailabilityBasis:   string(e.Raw.Basis),
	}
}

func toEmployeeDTOs(records []timeoff.EnrichedEmployeeRecord) []EmployeeDTO {
	dtos := make([]EmployeeDTO, len(records))
	for i, rec := range records {
		dtos[i] = toEmployeeDTO(rec)
	}
	return dtos
}

func toLeaveRequestDTO(r timeoff.LeaveRequest) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		Entry:           toLeaveEntryDTO(r.Entry),
		RequestedBy:     r.RequestedBy,
		Status:          string(r.Status),
		DecidedBy:       r.DecidedBy,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		dto.DecidedAt = r.DecidedAt.Format(time.RFC3339)
	}
	return dto
}
