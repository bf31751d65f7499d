/*
errors.go - Centralized error types for the training lifecycle

PURPOSE:
  All error kinds in one place. Every failure in this package is a
  deterministic, caller-correctable condition returned as a structured
  error (kind + human-readable message), never silently swallowed and
  never retried automatically.

ERROR KINDS:
  ValidationError        One or more required/malformed fields. Always
                         enumerates every violation, not just the first.
  NotFoundError          Unknown id for any entity.
  InvalidStateError      Operation attempted from a status that does not
                         permit it.
  SessionArchivedError   Registration attempted against an archived
                         session. A specialization callers may treat
                         distinctly from generic invalid-state.
  CapacityExceededError  Approval would exceed session capacity.
  AlreadyScheduledError  Duplicate scheduling attempt on a request.

USAGE:
  Structured errors unwrap to sentinels for errors.Is checks:

    if errors.Is(err, training.ErrCapacityExceeded) { ... }

SEE ALSO:
  - validate.go: Builds ValidationError from validator output
  - store.go: Store implementations return these kinds directly
*/
package training

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all field-validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is attempted from a
	// status that does not permit it.
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrSessionArchived is returned when a registration targets an
	// archived session.
	ErrSessionArchived = errors.New("session is archived")

	// ErrCapacityExceeded is returned when approving a registration would
	// push approved_count past the session capacity.
	ErrCapacityExceeded = errors.New("session capacity exceeded")

	// ErrAlreadyScheduled is returned on a duplicate scheduling attempt
	// (e.g. a double click on an already-converted request).
	ErrAlreadyScheduled = errors.New("request already scheduled")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError is a single violated field within a ValidationError.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError enumerates every violated field so the caller can
// render all errors at once.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add appends a violation. Returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// Has reports whether any violation was recorded.
func (e *ValidationError) Has() bool { return len(e.Fields) > 0 }

// NotFoundError identifies the missing entity.
type NotFoundError struct {
	Kind string // "request", "session", "registration", "document"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidStateError carries the entity's current status and the
// attempted operation.
type InvalidStateError struct {
	Kind   string
	ID     string
	Status string
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %s: current status is %q", e.Op, e.Kind, e.ID, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// SessionArchivedError is raised when registering against an archived session.
type SessionArchivedError struct {
	SessionID SessionID
}

func (e *SessionArchivedError) Error() string {
	return fmt.Sprintf("session %s is archived and does not accept registrations", e.SessionID)
}

func (e *SessionArchivedError) Unwrap() error { return ErrSessionArchived }

// CapacityExceededError reports the session's occupancy at refusal time.
type CapacityExceededError struct {
	SessionID SessionID
	Capacity  int
	Approved  int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("session %s is at capacity (%d of %d approved)", e.SessionID, e.Approved, e.Capacity)
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

// AlreadyScheduledError reports the session the request was already
// converted into.
type AlreadyScheduledError struct {
	RequestID RequestID
	SessionID SessionID
}

func (e *AlreadyScheduledError) Error() string {
	return fmt.Sprintf("request %s already scheduled as session %s", e.RequestID, e.SessionID)
}

func (e *AlreadyScheduledError) Unwrap() error { return ErrAlreadyScheduled }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError reports whether the error is a deterministic,
// caller-correctable condition (as opposed to an infrastructure failure).
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrSessionArchived) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrAlreadyScheduled)
}
