// Package store provides an in-memory training.Store implementation
// for tests and development.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lifeline/training-engine/catalog"
	"github.com/lifeline/training-engine/training"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds all entities under a single mutex, so every Store method
// is one atomic step. This matches the serialization the SQLite store
// gets from its transactions.
type Memory struct {
	mu            sync.RWMutex
	requests      map[training.RequestID]*training.TrainingRequest
	sessions      map[training.SessionID]*training.TrainingSession
	registrations map[training.RegistrationID]*training.SessionRegistration
}

func NewMemory() *Memory {
	return &Memory{
		requests:      make(map[training.RequestID]*training.TrainingRequest),
		sessions:      make(map[training.SessionID]*training.TrainingSession),
		registrations: make(map[training.RegistrationID]*training.SessionRegistration),
	}
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) SaveRequest(_ context.Context, r *training.TrainingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = cloneRequest(r)
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id training.RequestID) (*training.TrainingRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, &training.NotFoundError{Kind: "request", ID: string(id)}
	}
	return cloneRequest(r), nil
}

func (m *Memory) ListRequests(_ context.Context, f training.RequestFilter) ([]*training.TrainingRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(f.Search)
	var out []*training.TrainingRequest
	for _, r := range m.requests {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if needle != "" && !matchesRequest(r, needle) {
			continue
		}
		out = append(out, cloneRequest(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matchesRequest(r *training.TrainingRequest, needle string) bool {
	if strings.Contains(strings.ToLower(r.ContactPerson), needle) ||
		strings.Contains(strings.ToLower(r.TrainingProgram), needle) ||
		strings.Contains(strings.ToLower(r.Email), needle) {
		return true
	}
	// The stored program is a catalog key; search also covers its
	// display name, so "first aid" finds first_aid_basic.
	if p, ok := catalog.ProgramByKey(r.TrainingProgram); ok {
		return strings.Contains(strings.ToLower(p.Name), needle)
	}
	return false
}

func (m *Memory) ReviewRequest(_ context.Context, id training.RequestID, decision training.RequestStatus, adminNotes string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return &training.NotFoundError{Kind: "request", ID: string(id)}
	}
	if r.Status != training.RequestPending {
		return &training.InvalidStateError{Kind: "request", ID: string(id), Status: string(r.Status), Op: "review"}
	}

	r.Status = decision
	r.AdminNotes = adminNotes
	r.ReviewedDate = &at
	return nil
}

func (m *Memory) CompleteElapsedRequests(_ context.Context, asOf time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Date precision: a session ending today is still live.
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	count := 0
	for _, r := range m.requests {
		if r.Status != training.RequestScheduled || r.CreatedSessionID == nil {
			continue
		}
		s, ok := m.sessions[*r.CreatedSessionID]
		if !ok {
			continue
		}
		end := s.SessionEndDate
		if end.IsZero() {
			end = s.SessionDate
		}
		if end.Before(day) {
			r.Status = training.RequestCompleted
			count++
		}
	}
	return count, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

func (m *Memory) SaveSession(_ context.Context, s *training.TrainingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *Memory) GetSession(_ context.Context, id training.SessionID) (*training.TrainingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, &training.NotFoundError{Kind: "session", ID: string(id)}
	}
	return cloneSession(s), nil
}

func (m *Memory) UpdateSession(_ context.Context, s *training.TrainingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return &training.NotFoundError{Kind: "session", ID: string(s.ID)}
	}
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *Memory) SetSessionArchived(_ context.Context, id training.SessionID, archived bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return &training.NotFoundError{Kind: "session", ID: string(id)}
	}
	if s.Archived != archived {
		s.Archived = archived
		s.UpdatedAt = at
	}
	return nil
}

func (m *Memory) DeleteSessionCascade(_ context.Context, id training.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return &training.NotFoundError{Kind: "session", ID: string(id)}
	}
	if !s.Archived {
		return &training.InvalidStateError{Kind: "session", ID: string(id), Status: "active", Op: "permanently delete"}
	}

	for regID, reg := range m.registrations {
		if reg.SessionID == id {
			delete(m.registrations, regID)
		}
	}
	delete(m.sessions, id)
	return nil
}

func (m *Memory) ListSessions(_ context.Context, f training.SessionFilter) ([]*training.TrainingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scope := f.Scope
	if scope == "" {
		scope = training.ScopeActive
	}
	needle := strings.ToLower(f.Search)

	var out []*training.TrainingSession
	for _, s := range m.sessions {
		if scope == training.ScopeActive && s.Archived {
			continue
		}
		if scope == training.ScopeArchived && !s.Archived {
			continue
		}
		if f.Service != "" && s.MajorService != f.Service {
			continue
		}
		if needle != "" && !matchesSession(s, needle) {
			continue
		}
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SessionDate.Equal(out[j].SessionDate) {
			return out[i].SessionDate.Before(out[j].SessionDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchesSession(s *training.TrainingSession, needle string) bool {
	return strings.Contains(strings.ToLower(s.Title), needle) ||
		strings.Contains(strings.ToLower(s.Venue), needle) ||
		strings.Contains(strings.ToLower(s.Instructor), needle)
}

func (m *Memory) CountRegistrations(_ context.Context, id training.SessionID) (training.RegistrationCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countLocked(id), nil
}

func (m *Memory) countLocked(id training.SessionID) training.RegistrationCounts {
	var counts training.RegistrationCounts
	for _, reg := range m.registrations {
		if reg.SessionID != id {
			continue
		}
		switch reg.Status {
		case training.RegistrationApproved:
			counts.Approved++
		case training.RegistrationPending:
			counts.Pending++
		}
	}
	return counts
}

func (m *Memory) CountAllRegistrations(_ context.Context) (map[training.SessionID]training.RegistrationCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[training.SessionID]training.RegistrationCounts)
	for _, reg := range m.registrations {
		counts := out[reg.SessionID]
		switch reg.Status {
		case training.RegistrationApproved:
			counts.Approved++
		case training.RegistrationPending:
			counts.Pending++
		}
		out[reg.SessionID] = counts
	}
	return out, nil
}

// =============================================================================
// SCHEDULER BRIDGE
// =============================================================================

// CreateSessionFromRequest performs the insert and the request update
// under one lock, so two concurrent calls on the same request yield
// exactly one session.
func (m *Memory) CreateSessionFromRequest(_ context.Context, requestID training.RequestID, s *training.TrainingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[requestID]
	if !ok {
		return &training.NotFoundError{Kind: "request", ID: string(requestID)}
	}
	if r.CreatedSessionID != nil {
		return &training.AlreadyScheduledError{RequestID: requestID, SessionID: *r.CreatedSessionID}
	}
	if r.Status != training.RequestApproved {
		return &training.InvalidStateError{Kind: "request", ID: string(requestID), Status: string(r.Status), Op: "schedule"}
	}

	m.sessions[s.ID] = cloneSession(s)
	sessionID := s.ID
	r.Status = training.RequestScheduled
	r.CreatedSessionID = &sessionID
	return nil
}

// =============================================================================
// REGISTRATIONS
// =============================================================================

func (m *Memory) SaveRegistration(_ context.Context, r *training.SessionRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[r.SessionID]; !ok {
		return &training.NotFoundError{Kind: "session", ID: string(r.SessionID)}
	}
	m.registrations[r.ID] = cloneRegistration(r)
	return nil
}

func (m *Memory) GetRegistration(_ context.Context, id training.RegistrationID) (*training.SessionRegistration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.registrations[id]
	if !ok {
		return nil, &training.NotFoundError{Kind: "registration", ID: string(id)}
	}
	return cloneRegistration(r), nil
}

// ApproveRegistration checks capacity and writes the status under one
// lock: the enforcement point for the capacity invariant.
func (m *Memory) ApproveRegistration(_ context.Context, id training.RegistrationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[id]
	if !ok {
		return &training.NotFoundError{Kind: "registration", ID: string(id)}
	}
	if reg.Status != training.RegistrationPending {
		return &training.InvalidStateError{Kind: "registration", ID: string(id), Status: string(reg.Status), Op: "approve"}
	}

	session, ok := m.sessions[reg.SessionID]
	if !ok {
		return &training.NotFoundError{Kind: "session", ID: string(reg.SessionID)}
	}
	if session.Capacity > 0 {
		approved := m.countLocked(session.ID).Approved
		if approved >= session.Capacity {
			return &training.CapacityExceededError{SessionID: session.ID, Capacity: session.Capacity, Approved: approved}
		}
	}

	reg.Status = training.RegistrationApproved
	return nil
}

func (m *Memory) RejectRegistration(_ context.Context, id training.RegistrationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[id]
	if !ok {
		return &training.NotFoundError{Kind: "registration", ID: string(id)}
	}
	if reg.Status != training.RegistrationPending {
		return &training.InvalidStateError{Kind: "registration", ID: string(id), Status: string(reg.Status), Op: "reject"}
	}
	reg.Status = training.RegistrationRejected
	return nil
}

func (m *Memory) DeleteRegistration(_ context.Context, id training.RegistrationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.registrations[id]; !ok {
		return &training.NotFoundError{Kind: "registration", ID: string(id)}
	}
	delete(m.registrations, id)
	return nil
}

func (m *Memory) ListRegistrationsBySession(_ context.Context, id training.SessionID) ([]*training.SessionRegistration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*training.SessionRegistration
	for _, reg := range m.registrations {
		if reg.SessionID == id {
			out = append(out, cloneRegistration(reg))
		}
	}
	sortRegistrations(out)
	return out, nil
}

func (m *Memory) ListRegistrationsByEmail(_ context.Context, email string) ([]*training.SessionRegistration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*training.SessionRegistration
	for _, reg := range m.registrations {
		if strings.EqualFold(reg.Email, email) {
			out = append(out, cloneRegistration(reg))
		}
	}
	sortRegistrations(out)
	return out, nil
}

func sortRegistrations(regs []*training.SessionRegistration) {
	sort.Slice(regs, func(i, j int) bool {
		if !regs[i].RegistrationDate.Equal(regs[j].RegistrationDate) {
			return regs[i].RegistrationDate.Before(regs[j].RegistrationDate)
		}
		return regs[i].ID < regs[j].ID
	})
}

// =============================================================================
// UTILITIES
// =============================================================================

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[training.RequestID]*training.TrainingRequest)
	m.sessions = make(map[training.SessionID]*training.TrainingSession)
	m.registrations = make(map[training.RegistrationID]*training.SessionRegistration)
	return nil
}

func cloneRequest(r *training.TrainingRequest) *training.TrainingRequest {
	out := *r
	out.NotificationPrefs = append([]training.NotificationChannel(nil), r.NotificationPrefs...)
	out.AdditionalDocs = append([]training.DocumentRef(nil), r.AdditionalDocs...)
	if r.ReviewedDate != nil {
		t := *r.ReviewedDate
		out.ReviewedDate = &t
	}
	if r.CreatedSessionID != nil {
		id := *r.CreatedSessionID
		out.CreatedSessionID = &id
	}
	return &out
}

func cloneSession(s *training.TrainingSession) *training.TrainingSession {
	out := *s
	return &out
}

func cloneRegistration(r *training.SessionRegistration) *training.SessionRegistration {
	out := *r
	return &out
}
