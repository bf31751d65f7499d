/*
store.go - Persistence interface for the training lifecycle

PURPOSE:
  Defines the interface between the domain services and the database.
  Implementations: store/sqlite (production) and training/store (memory,
  for tests and dev).

ATOMICITY CONTRACT:
  Each method is a single synchronous transaction boundary. Concurrent
  operations on the same entity must be serialized by the implementation
  so that:

  - ApproveRegistration re-reads capacity and approved count in the same
    transaction as the status write. Two simultaneous approvals against
    one remaining slot must not both succeed.
  - CreateSessionFromRequest inserts the session and flips the request to
    scheduled in one transaction, guarded by a conditional update on
    (status = approved AND created_session_id IS NULL). The second of two
    simultaneous calls observes ErrAlreadyScheduled and the insert is
    rolled back - no orphaned session is left behind.
  - DeleteSessionCascade re-checks the archived flag inside the delete
    transaction.

ERROR CONTRACT:
  Implementations return the structured errors from errors.go directly
  (NotFoundError, InvalidStateError, CapacityExceededError,
  AlreadyScheduledError). Infrastructure failures are returned wrapped
  with context via fmt.Errorf("...: %w", err).

SEE ALSO:
  - store/sqlite/sqlite.go: SQLite implementation
  - training/store/memory.go: In-memory implementation
*/
package training

import (
	"context"
	"io"
	"time"
)

// =============================================================================
// FILTERS
// =============================================================================

// RequestFilter narrows ListRequests. Zero value lists everything.
type RequestFilter struct {
	// Status filters to one status; empty means all.
	Status RequestStatus
	// Search matches (case-insensitively) contact person, program key,
	// or email.
	Search string
}

// SessionScope selects which lifecycle tier of sessions to list.
type SessionScope string

const (
	ScopeActive   SessionScope = "active"
	ScopeArchived SessionScope = "archived"
	ScopeAll      SessionScope = "all"
)

// SessionFilter narrows ListSessions. Zero value lists active sessions.
type SessionFilter struct {
	Scope SessionScope
	// Service filters by major service key; empty means all.
	Service string
	// Search matches title, venue, or instructor.
	Search string
}

// =============================================================================
// STORE
// =============================================================================

// Store persists the three entity kinds. Get* methods return a
// NotFoundError for unknown ids.
type Store interface {
	// --- Requests ---

	SaveRequest(ctx context.Context, r *TrainingRequest) error
	GetRequest(ctx context.Context, id RequestID) (*TrainingRequest, error)
	ListRequests(ctx context.Context, f RequestFilter) ([]*TrainingRequest, error)

	// ReviewRequest sets the decision and reviewed date. Permitted only
	// while the request is pending; otherwise InvalidStateError.
	ReviewRequest(ctx context.Context, id RequestID, decision RequestStatus, adminNotes string, at time.Time) error

	// CompleteElapsedRequests moves scheduled requests whose linked
	// session end date is before asOf to completed. Idempotent; returns
	// the number of requests transitioned.
	CompleteElapsedRequests(ctx context.Context, asOf time.Time) (int, error)

	// --- Sessions ---

	SaveSession(ctx context.Context, s *TrainingSession) error
	GetSession(ctx context.Context, id SessionID) (*TrainingSession, error)
	UpdateSession(ctx context.Context, s *TrainingSession) error

	// SetSessionArchived toggles the archived flag. Idempotent: archiving
	// an archived session (or restoring an active one) is a no-op success.
	SetSessionArchived(ctx context.Context, id SessionID, archived bool, at time.Time) error

	// DeleteSessionCascade permanently deletes an archived session and all
	// its registrations. InvalidStateError while the session is active.
	DeleteSessionCascade(ctx context.Context, id SessionID) error

	ListSessions(ctx context.Context, f SessionFilter) ([]*TrainingSession, error)

	// CountRegistrations returns a session's occupancy by status.
	CountRegistrations(ctx context.Context, id SessionID) (RegistrationCounts, error)

	// CountAllRegistrations returns occupancy for every session that has
	// registrations, for the list read path.
	CountAllRegistrations(ctx context.Context) (map[SessionID]RegistrationCounts, error)

	// --- Scheduler bridge ---

	// CreateSessionFromRequest atomically inserts the session and marks
	// the request scheduled with the back-link. See the atomicity
	// contract above.
	CreateSessionFromRequest(ctx context.Context, requestID RequestID, s *TrainingSession) error

	// --- Registrations ---

	SaveRegistration(ctx context.Context, r *SessionRegistration) error
	GetRegistration(ctx context.Context, id RegistrationID) (*SessionRegistration, error)

	// ApproveRegistration is the single enforcement point for the
	// capacity invariant. Pending registrations only.
	ApproveRegistration(ctx context.Context, id RegistrationID) error

	// RejectRegistration is permitted from pending only.
	RejectRegistration(ctx context.Context, id RegistrationID) error

	// DeleteRegistration hard-deletes from any status.
	DeleteRegistration(ctx context.Context, id RegistrationID) error

	ListRegistrationsBySession(ctx context.Context, id SessionID) ([]*SessionRegistration, error)
	ListRegistrationsByEmail(ctx context.Context, email string) ([]*SessionRegistration, error)

	// Reset clears all data (for testing/demo scenarios).
	Reset(ctx context.Context) error
}

// =============================================================================
// DOCUMENT STORE - External collaborator
// =============================================================================

// DocumentStore persists uploaded files and returns stable references.
// The core only stores and forwards these references; content validation
// (size, type) lives entirely at this boundary.
type DocumentStore interface {
	// Store persists the content and returns its reference.
	Store(ctx context.Context, filename string, content io.Reader) (DocumentRef, error)

	// Open returns the stored content. NotFoundError for unknown refs.
	Open(ctx context.Context, ref DocumentRef) (io.ReadCloser, error)

	// URLFor returns the serving URL for a reference.
	URLFor(ref DocumentRef) string
}
