/*
types.go - Core entities of the training lifecycle

PURPOSE:
  Defines the three persistent entities and their status domains:

  TrainingRequest      A citizen-submitted ask for a program to be scheduled.
  TrainingSession      A concrete, dated instance trainees register for.
  SessionRegistration  A trainee's enrollment record against a session.

LIFECYCLE:
  ┌──────────────────────────────────────────────────────────────┐
  │                                                              │
  │  Request: pending ──▶ approved ──▶ scheduled ──▶ completed   │
  │              │                                               │
  │              └──────▶ rejected                               │
  │                                                              │
  │  Session: active ◀──▶ archived ──▶ (permanently deleted)     │
  │                                                              │
  │  Registration: pending ──▶ approved | rejected               │
  │                                                              │
  └──────────────────────────────────────────────────────────────┘

STATUS AS CLOSED ENUMS:
  Statuses are typed string constants with Valid() checks so illegal
  transitions are rejected at validation time, never compared ad hoc.

DERIVED SESSION FIELDS:
  Occupancy and date-derived fields (approved/pending counts, is_past,
  is_full, duration_days) are NOT stored. They are computed on the read
  path via TrainingSession.View so every consumer sees the same values.

SEE ALSO:
  - errors.go: Error kinds raised by lifecycle operations
  - store.go: Persistence interface over these entities
*/
package training

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type RequestID string

type SessionID string

type RegistrationID string

// DocumentRef is an opaque reference returned by the document store.
// The core never inspects the referenced content.
type DocumentRef string

func NewRequestID() RequestID           { return RequestID("req-" + uuid.NewString()) }
func NewSessionID() SessionID           { return SessionID("ses-" + uuid.NewString()) }
func NewRegistrationID() RegistrationID { return RegistrationID("reg-" + uuid.NewString()) }

// =============================================================================
// STATUS DOMAINS
// =============================================================================

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestScheduled RequestStatus = "scheduled"
	RequestCompleted RequestStatus = "completed"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestScheduled, RequestCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further status edits are permitted.
// Scheduled is terminal with respect to staff review; only the linked
// session (and the external completion sweep) changes it thereafter.
func (s RequestStatus) Terminal() bool {
	return s == RequestRejected || s == RequestCompleted || s == RequestScheduled
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		return true
	}
	return false
}

type RegistrationType string

const (
	RegistrationIndividual   RegistrationType = "individual"
	RegistrationOrganization RegistrationType = "organization"
)

type NotificationChannel string

const (
	NotifyEmail NotificationChannel = "email"
	NotifySMS   NotificationChannel = "sms"
	NotifyPhone NotificationChannel = "phone"
)

// =============================================================================
// TRAINING REQUEST
// =============================================================================

// TrainingRequest is a citizen-submitted ask for a training program.
// Requests are never physically deleted; rejected and completed requests
// remain as an audit trail.
type TrainingRequest struct {
	ID RequestID

	ServiceType     string
	TrainingProgram string // catalog key
	TrainingType    string
	Urgency         Urgency

	PreferredStartDate time.Time
	PreferredEndDate   time.Time
	PreferredStartTime string
	PreferredEndTime   string
	DurationDays       int // derived from the date range, minimum 1

	ParticipantCount int
	OrganizationName string // required when ParticipantCount >= 5
	ContactPerson    string
	ContactNumber    string
	Email            string

	NotificationPrefs []NotificationChannel

	LocationPreference     string
	VenueRequirements      string
	EquipmentNeeded        string
	Purpose                string
	AdditionalRequirements string

	ValidID         DocumentRef
	ParticipantList DocumentRef
	AdditionalDocs  []DocumentRef

	AdminNotes string
	Status     RequestStatus

	CreatedAt    time.Time
	ReviewedDate *time.Time

	// Non-nil iff Status is scheduled or completed.
	CreatedSessionID *SessionID
}

// =============================================================================
// TRAINING SESSION
// =============================================================================

// TrainingSession is a concrete, dated instance of training.
// Capacity 0 means unlimited; Fee 0 means free.
type TrainingSession struct {
	ID SessionID

	Title        string
	Description  string
	MajorService string // catalog.Service key

	SessionDate    time.Time
	SessionEndDate time.Time // defaults to SessionDate; inclusive span
	StartTime      string
	EndTime        string

	Venue    string
	Capacity int
	Fee      decimal.Decimal

	Requirements          string
	Instructor            string
	InstructorBio         string
	InstructorCredentials string

	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RegistrationCounts aggregates a session's registrations by status.
type RegistrationCounts struct {
	Approved int
	Pending  int
}

// SessionView is a TrainingSession with its derived read-path fields.
type SessionView struct {
	TrainingSession

	ApprovedCount int
	PendingCount  int
	DurationDays  int
	IsPast        bool
	IsUpcoming    bool
	IsFull        bool
}

// View computes the derived fields for a session as of today.
// This is the single place occupancy and date flags are derived;
// all consumers (listings, stats, capacity display) go through it.
func (s *TrainingSession) View(counts RegistrationCounts, today time.Time) *SessionView {
	end := s.SessionEndDate
	if end.IsZero() {
		end = s.SessionDate
	}
	day := dateOnly(today)
	return &SessionView{
		TrainingSession: *s,
		ApprovedCount:   counts.Approved,
		PendingCount:    counts.Pending,
		DurationDays:    InclusiveDays(s.SessionDate, end),
		IsPast:          dateOnly(end).Before(day),
		IsUpcoming:      !dateOnly(s.SessionDate).Before(day),
		IsFull:          s.Capacity > 0 && counts.Approved >= s.Capacity,
	}
}

// InclusiveDays returns the inclusive day span between two dates, minimum 1.
func InclusiveDays(start, end time.Time) int {
	if end.IsZero() || end.Before(start) {
		return 1
	}
	days := int(dateOnly(end).Sub(dateOnly(start)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// SESSION REGISTRATION
// =============================================================================

// SessionRegistration is a trainee's enrollment record against a session.
type SessionRegistration struct {
	ID        RegistrationID
	SessionID SessionID

	Type             RegistrationType
	FullName         string
	Email            string
	Age              int
	Location         string
	RCYStatus        string
	OrganizationName string // organization-type registrations only
	PaymentMode      string

	ValidID        DocumentRef
	Requirements   DocumentRef
	PaymentReceipt DocumentRef

	Status           RegistrationStatus
	RegistrationDate time.Time
}

// RegistrationView joins a registration with its session's display fields,
// used for "my registrations" listings.
type RegistrationView struct {
	SessionRegistration

	SessionTitle string
	SessionDate  time.Time
	SessionVenue string
	SessionFee   decimal.Decimal
}
