/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the accrual engine and the employee store via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Session:
    POST   /api/auth/login               Exchange credentials for a token
    GET    /api/auth/me                  Describe the current session

  Employees:
    GET    /api/employees[?as_of=]       Enriched employees visible to caller
    POST   /api/employees                Create employee (admin)
    GET    /api/employees/{id}[?as_of=]  One enriched employee
    POST   /api/employees/{id}/leave     Record leave (admin) or request it

  Requests (admin):
    GET    /api/requests/pending         Approval queue
    POST   /api/requests/{id}/approve    Approve and append to history
    POST   /api/requests/{id}/reject     Reject with optional reason

REFERENCE DATE:
  Every computation is evaluated at a single reference date: the as_of
  query parameter when present, otherwise today in UTC from Handler.Now.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or invalid session
  - 403: Caller may not act for the employee
  - 404: Resource not found
  - 409: Conflict (duplicate id, request already decided)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - middleware.go: Session, role and rate-limit middleware
  - server.go: Router setup
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

const (
	msgLeaveAdded       = "Leave added and balance updated."
	msgLeaveSubmitted   = "Leave request submitted for approval."
	msgInvalidLeave     = "Invalid leave payload."
	msgRequestApproved  = "Leave request approved and balance updated."
	msgRequestRejected  = "Leave request rejected."
	msgUnauthorized     = "Unauthorized"
	msgForbidden        = "Forbidden"
	msgEmployeeNotFound = "Employee not found"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  timeoff.Store
	Engine *timeoff.Engine
	Auth   *auth.Authenticator
	Logger *zap.Logger

	// Now supplies the default reference date. Tests pin it.
	Now func() time.Time
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(store timeoff.Store, engine *timeoff.Engine, authn *auth.Authenticator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:  store,
		Engine: engine,
		Auth:   authn,
		Logger: logger.Named("api"),
		Now:    time.Now,
	}
}

// asOf resolves the reference date for a request.
func (h *Handler) asOf(r *http.Request) (generic.TimePoint, error) {
	if s := r.URL.Query().Get("as_of"); s != "" {
		return generic.ParseDate(s)
	}
	return generic.FromTime(h.Now()), nil
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// Login exchanges credentials for a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req, false); err != nil {
		writeValidationError(w, "Invalid login payload", err)
		return
	}

	token, p, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.Logger.Info("login rejected", zap.String("username", req.Username))
			writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
			return
		}
		h.internalError(w, "Failed to issue session", err)
		return
	}

	h.Logger.Info("login", zap.String("username", p.Username), zap.String("role", string(p.Role)))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: toSessionDTO(p)})
}

// Me describes the current session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	writeJSON(w, http.StatusOK, toSessionDTO(p))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns every employee the caller may see, enriched at the
// reference date. Admins see all; members see only their linked employee.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", err)
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	employees, err := h.visibleEmployees(r, p)
	if err != nil {
		h.internalError(w, "Failed to list employees", err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTOs(h.Engine.Compute(employees, asOf)))
}

// GetEmployee returns a single enriched employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, _ := auth.PrincipalFrom(r.Context())
	if !p.CanAccess(id) {
		writeError(w, http.StatusForbidden, msgForbidden, nil)
		return
	}

	asOf, err := h.asOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", err)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.storeError(w, "Failed to get employee", err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(h.Engine.Enrich(emp, asOf)))
}

// CreateEmployee creates a new employee with optional initial history.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := decodeAndValidate(r, &req, false); err != nil {
		writeValidationError(w, "Invalid employee payload", err)
		return
	}

	emp, err := req.toRecord()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee payload", err)
		return
	}

	if err := h.Store.CreateEmployee(r.Context(), emp); err != nil {
		h.storeError(w, "Failed to create employee", err)
		return
	}

	h.Logger.Info("employee created", zap.String("employee_id", emp.ID))
	writeJSON(w, http.StatusCreated, toEmployeeDTO(h.Engine.Enrich(emp, generic.FromTime(h.Now()))))
}

// AddLeave records a leave entry for an employee.
//
// Admins append directly and receive the recomputed employee list. Members
// may only act for their own employee; their entry is queued as a pending
// request and the balance is unchanged until an admin approves it.
func (h *Handler) AddLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, _ := auth.PrincipalFrom(r.Context())
	if !p.CanAccess(id) {
		writeError(w, http.StatusForbidden, msgForbidden, nil)
		return
	}

	var req AddLeaveRequest
	if err := decodeAndValidate(r, &req, false); err != nil {
		writeValidationError(w, msgInvalidLeave, err)
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidLeave, err)
		return
	}

	ctx := r.Context()
	if !p.IsAdmin() {
		if _, err := h.Store.GetEmployee(ctx, id); err != nil {
			h.storeError(w, "Failed to submit leave request", err)
			return
		}
		lr := timeoff.NewLeaveRequest(id, entry, p.DisplayName(), h.Now())
		if err := h.Store.SaveRequest(ctx, lr); err != nil {
			h.internalError(w, "Failed to submit leave request", err)
			return
		}
		h.Logger.Info("leave requested",
			zap.String("request_id", lr.ID),
			zap.String("employee_id", id),
			zap.String("requested_by", lr.RequestedBy))
		dto := toLeaveRequestDTO(lr)
		writeJSON(w, http.StatusOK, MessageResponse{Message: msgLeaveSubmitted, Request: &dto})
		return
	}

	if err := h.Store.AppendLeave(ctx, id, entry); err != nil {
		h.storeError(w, "Failed to add leave", err)
		return
	}
	h.Logger.Info("leave added",
		zap.String("employee_id", id),
		zap.String("days", entry.Days.String()),
		zap.String("type", entry.Type))

	h.respondWithEmployees(w, r, p, msgLeaveAdded)
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListPendingRequests returns the approval queue, oldest first.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Store.PendingRequests(r.Context())
	if err != nil {
		h.internalError(w, "Failed to list pending requests", err)
		return
	}

	dtos := make([]LeaveRequestDTO, len(reqs))
	for i, lr := range reqs {
		dtos[i] = toLeaveRequestDTO(lr)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveRequest approves a pending request; its entry joins the history.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// RejectRequest rejects a pending request.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	id := chi.URLParam(r, "id")
	p, _ := auth.PrincipalFrom(r.Context())

	var body DecideRequestDTO
	if err := decodeAndValidate(r, &body, true); err != nil {
		writeValidationError(w, "Invalid decision payload", err)
		return
	}

	lr, err := h.Store.DecideRequest(r.Context(), id, timeoff.Decision{
		Approve: approve,
		By:      p.DisplayName(),
		At:      h.Now(),
		Reason:  body.Reason,
	})
	if err != nil {
		h.storeError(w, "Failed to decide request", err)
		return
	}

	h.Logger.Info("leave request decided",
		zap.String("request_id", lr.ID),
		zap.String("employee_id", lr.EmployeeID),
		zap.String("status", string(lr.Status)),
		zap.String("decided_by", lr.DecidedBy))

	if !approve {
		dto := toLeaveRequestDTO(lr)
		writeJSON(w, http.StatusOK, MessageResponse{Message: msgRequestRejected, Request: &dto})
		return
	}
	h.respondWithEmployees(w, r, p, msgRequestApproved)
}

// pinger is implemented by stores backed by a database connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness, and 503 when the store cannot be reached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			h.Logger.Error("store unavailable", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) visibleEmployees(r *http.Request, p auth.Principal) ([]timeoff.EmployeeRecord, error) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		return nil, err
	}
	if p.IsAdmin() {
		return employees, nil
	}
	visible := employees[:0]
	for _, e := range employees {
		if p.CanAccess(e.ID) {
			visible = append(visible, e)
		}
	}
	return visible, nil
}

// respondWithEmployees recomputes the caller's view after a write.
func (h *Handler) respondWithEmployees(w http.ResponseWriter, r *http.Request, p auth.Principal, message string) {
	employees, err := h.visibleEmployees(r, p)
	if err != nil {
		h.internalError(w, "Failed to list employees", err)
		return
	}
	enriched := h.Engine.Compute(employees, generic.FromTime(h.Now()))
	writeJSON(w, http.StatusOK, MessageResponse{Message: message, Employees: toEmployeeDTOs(enriched)})
}

// storeError maps domain errors to HTTP status codes.
func (h *Handler) storeError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, generic.ErrEmployeeNotFound):
		writeError(w, http.StatusNotFound, msgEmployeeNotFound, err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.internalError(w, message, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, message string, err error) {
	h.Logger.Error(message, zap.Error(err))
	writeError(w, http.StatusInternalServerError, message, nil)
}

func toSessionDTO(p auth.Principal) SessionDTO {
	return SessionDTO{
		Username:   p.Username,
		Name:       p.Name,
		Role:       string(p.Role),
		EmployeeID: p.EmployeeID,
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeValidationError(w http.ResponseWriter, message string, err error) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   message,
		Code:    "validation_failed",
		Details: validationDetails(err),
	})
}
