// Package memory provides an in-memory timeoff.Store (for testing/dev).
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[string]timeoff.EmployeeRecord
	order     []string // insertion order of employee ids
	requests  map[string]timeoff.LeaveRequest
}

var _ timeoff.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		employees: make(map[string]timeoff.EmployeeRecord),
		requests:  make(map[string]timeoff.LeaveRequest),
	}
}

func (m *Memory) ListEmployees(_ context.Context) ([]timeoff.EmployeeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]timeoff.EmployeeRecord, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, copyRecord(m.employees[id]))
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (m *Memory) GetEmployee(_ context.Context, id string) (timeoff.EmployeeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return timeoff.EmployeeRecord{}, generic.ErrEmployeeNotFound
	}
	return copyRecord(emp), nil
}

func (m *Memory) CreateEmployee(_ context.Context, emp timeoff.EmployeeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[emp.ID]; ok {
		return generic.ErrDuplicateEmployee
	}
	m.employees[emp.ID] = copyRecord(emp)
	m.order = append(m.order, emp.ID)
	return nil
}

// AppendLeave adds an entry to the employee's history. Append-only.
func (m *Memory) AppendLeave(_ context.Context, employeeID string, entry timeoff.LeaveEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(employeeID, entry)
}

func (m *Memory) appendLocked(employeeID string, entry timeoff.LeaveEntry) error {
	emp, ok := m.employees[employeeID]
	if !ok {
		return generic.ErrEmployeeNotFound
	}
	emp.LeaveTaken = append(slices.Clone(emp.LeaveTaken), entry)
	m.employees[employeeID] = emp
	return nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) SaveRequest(_ context.Context, r timeoff.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests[r.ID] = r
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id string) (timeoff.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return timeoff.LeaveRequest{}, generic.ErrRequestNotFound
	}
	return r, nil
}

func (m *Memory) PendingRequests(_ context.Context) ([]timeoff.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []timeoff.LeaveRequest
	for _, r := range m.requests {
		if r.Status == timeoff.StatusPending {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// DecideRequest applies the decision under a single lock, so the status
// change and the appended entry are visible together.
func (m *Memory) DecideRequest(_ context.Context, id string, d timeoff.Decision) (timeoff.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return timeoff.LeaveRequest{}, generic.ErrRequestNotFound
	}
	if r.Status != timeoff.StatusPending {
		return timeoff.LeaveRequest{}, generic.ErrRequestNotPending
	}

	if d.Approve {
		if err := m.appendLocked(r.EmployeeID, r.Entry); err != nil {
			return timeoff.LeaveRequest{}, err
		}
	}

	r = d.Apply(r)
	m.requests[id] = r
	return r, nil
}

func copyRecord(emp timeoff.EmployeeRecord) timeoff.EmployeeRecord {
	emp.LeaveTaken = slices.Clone(emp.LeaveTaken)
	return emp
}
