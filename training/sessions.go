/*
sessions.go - Session Registry: the TrainingSession lifecycle

PURPOSE:
  Owns TrainingSession rows: creation, full-replace updates, the
  archive/restore soft-delete tier, permanent deletion (archived
  sessions only, cascading to registrations), listings with derived
  occupancy fields, and aggregate stats.

DERIVED FIELDS:
  approved_count, pending_count, is_past, is_upcoming, duration_days
  and is_full are computed on the read path (TrainingSession.View) from
  the Registration Ledger's rows, never stored. Centralizing this here
  keeps every consumer's numbers consistent.

SAFETY RAIL:
  PermanentlyDelete refuses active sessions. A session must be archived
  first, so nothing still visible to trainees can be destroyed.
*/
package training

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SessionInput is the validated input for creating or updating a session.
type SessionInput struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	MajorService string `json:"major_service" validate:"required"`

	SessionDate    time.Time `json:"session_date" validate:"required"`
	SessionEndDate time.Time `json:"session_end_date"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`

	Venue    string          `json:"venue" validate:"required"`
	Capacity int             `json:"capacity" validate:"gte=0"`
	Fee      decimal.Decimal `json:"fee"`

	Requirements          string `json:"requirements"`
	Instructor            string `json:"instructor"`
	InstructorBio         string `json:"instructor_bio"`
	InstructorCredentials string `json:"instructor_credentials"`
}

// SessionStats is the aggregate view for the staff dashboard.
type SessionStats struct {
	Total     int            `json:"total"`
	Upcoming  int            `json:"upcoming"`
	Completed int            `json:"completed"`
	Services  []ServiceCount `json:"services"`
}

// ServiceCount is a per-service session tally.
type ServiceCount struct {
	MajorService string `json:"major_service"`
	Count        int    `json:"count"`
}

// SessionRegistry orchestrates the TrainingSession lifecycle.
type SessionRegistry struct {
	Store Store

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// NewSessionRegistry creates a registry over the given store.
func NewSessionRegistry(store Store) *SessionRegistry {
	return &SessionRegistry{Store: store, now: time.Now}
}

// Create validates and records a new active session.
// session_end_date defaults to session_date; capacity and fee default
// to zero (unlimited, free).
func (sr *SessionRegistry) Create(ctx context.Context, in SessionInput) (*TrainingSession, error) {
	if verr := checkStruct(in); verr != nil {
		return nil, verr
	}

	now := sr.now().UTC()
	s := sessionFromInput(in)
	s.ID = NewSessionID()
	s.CreatedAt = now
	s.UpdatedAt = now

	if err := sr.Store.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s, nil
}

// Update replaces all editable fields of an existing session.
func (sr *SessionRegistry) Update(ctx context.Context, id SessionID, in SessionInput) error {
	if verr := checkStruct(in); verr != nil {
		return verr
	}

	existing, err := sr.Store.GetSession(ctx, id)
	if err != nil {
		return err
	}

	s := sessionFromInput(in)
	s.ID = existing.ID
	s.Archived = existing.Archived
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = sr.now().UTC()

	return sr.Store.UpdateSession(ctx, s)
}

func sessionFromInput(in SessionInput) *TrainingSession {
	endDate := in.SessionEndDate
	if endDate.IsZero() {
		endDate = in.SessionDate
	}
	return &TrainingSession{
		Title:                 in.Title,
		Description:           in.Description,
		MajorService:          in.MajorService,
		SessionDate:           in.SessionDate,
		SessionEndDate:        endDate,
		StartTime:             in.StartTime,
		EndTime:               in.EndTime,
		Venue:                 in.Venue,
		Capacity:              in.Capacity,
		Fee:                   in.Fee,
		Requirements:          in.Requirements,
		Instructor:            in.Instructor,
		InstructorBio:         in.InstructorBio,
		InstructorCredentials: in.InstructorCredentials,
	}
}

// Archive soft-removes a session from active listings. Registrations
// are untouched. Archiving an archived session is a no-op success.
func (sr *SessionRegistry) Archive(ctx context.Context, id SessionID) error {
	return sr.Store.SetSessionArchived(ctx, id, true, sr.now().UTC())
}

// Restore returns an archived session to the active listing, with all
// prior registrations intact and unchanged in status.
func (sr *SessionRegistry) Restore(ctx context.Context, id SessionID) error {
	return sr.Store.SetSessionArchived(ctx, id, false, sr.now().UTC())
}

// PermanentlyDelete destroys an archived session and cascades deletion
// of its registrations. Fails with InvalidStateError while active.
func (sr *SessionRegistry) PermanentlyDelete(ctx context.Context, id SessionID) error {
	return sr.Store.DeleteSessionCascade(ctx, id)
}

// Get returns a session with derived fields.
func (sr *SessionRegistry) Get(ctx context.Context, id SessionID) (*SessionView, error) {
	s, err := sr.Store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := sr.Store.CountRegistrations(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.View(counts, sr.now()), nil
}

// List returns sessions with derived fields, filtered by lifecycle
// scope, service, and free-text search.
func (sr *SessionRegistry) List(ctx context.Context, f SessionFilter) ([]*SessionView, error) {
	sessions, err := sr.Store.ListSessions(ctx, f)
	if err != nil {
		return nil, err
	}
	counts, err := sr.Store.CountAllRegistrations(ctx)
	if err != nil {
		return nil, err
	}

	today := sr.now()
	views := make([]*SessionView, len(sessions))
	for i, s := range sessions {
		views[i] = s.View(counts[s.ID], today)
	}
	return views, nil
}

// Stats aggregates active sessions for the dashboard.
func (sr *SessionRegistry) Stats(ctx context.Context) (*SessionStats, error) {
	views, err := sr.List(ctx, SessionFilter{Scope: ScopeActive})
	if err != nil {
		return nil, err
	}

	stats := &SessionStats{Total: len(views)}
	perService := make(map[string]int)
	for _, v := range views {
		if v.IsPast {
			stats.Completed++
		}
		if v.IsUpcoming {
			stats.Upcoming++
		}
		perService[v.MajorService]++
	}
	for service, count := range perService {
		stats.Services = append(stats.Services, ServiceCount{MajorService: service, Count: count})
	}
	sort.Slice(stats.Services, func(i, j int) bool {
		return stats.Services[i].MajorService < stats.Services[j].MajorService
	})
	return stats, nil
}
