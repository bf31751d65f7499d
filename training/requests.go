/*
requests.go - Request Ledger: the TrainingRequest lifecycle

PURPOSE:
  Owns TrainingRequest rows and their status transitions:

    pending ──▶ approved ──▶ scheduled ──▶ completed
       │
       └──────▶ rejected

  Requests are created by citizen submissions and mutated only by staff
  review, by the Scheduler Bridge (scheduled + back-link) and by the
  completion sweep. They are never physically deleted (audit trail).

INVARIANTS:
  - created_session_id is non-nil iff status is scheduled or completed.
  - A request enters scheduled only from approved, exactly once.
  - Review is permitted from pending only.

SEE ALSO:
  - scheduler.go: Converts approved requests into sessions
  - validate.go: Submission validation rules
*/
package training

import (
	"context"
	"fmt"
	"time"
)

// RequestSubmission is the validated input for a new training request.
// Document references are produced by the DocumentStore collaborator
// before submission; the ledger only records them.
type RequestSubmission struct {
	ServiceType     string  `json:"service_type" validate:"required"`
	TrainingProgram string  `json:"training_program" validate:"required"`
	TrainingType    string  `json:"training_type"`
	Urgency         Urgency `json:"urgency"`

	PreferredStartDate time.Time `json:"preferred_start_date" validate:"required"`
	PreferredEndDate   time.Time `json:"preferred_end_date"`
	PreferredStartTime string    `json:"preferred_start_time" validate:"required"`
	PreferredEndTime   string    `json:"preferred_end_time"`

	ParticipantCount int    `json:"participant_count" validate:"required,gte=1"`
	OrganizationName string `json:"organization_name"`
	ContactPerson    string `json:"contact_person" validate:"required"`
	ContactNumber    string `json:"contact_number" validate:"required"`
	Email            string `json:"email" validate:"required,email"`

	NotificationPrefs []NotificationChannel `json:"notification_preferences"`

	LocationPreference     string `json:"location_preference"`
	VenueRequirements      string `json:"venue_requirements"`
	EquipmentNeeded        string `json:"equipment_needed"`
	Purpose                string `json:"purpose"`
	AdditionalRequirements string `json:"additional_requirements"`

	ValidID         DocumentRef   `json:"valid_id"`
	ParticipantList DocumentRef   `json:"participant_list"`
	AdditionalDocs  []DocumentRef `json:"additional_docs"`
}

// RequestLedger orchestrates the TrainingRequest lifecycle.
type RequestLedger struct {
	Store Store
}

// NewRequestLedger creates a ledger over the given store.
func NewRequestLedger(store Store) *RequestLedger {
	return &RequestLedger{Store: store}
}

// Submit validates and records a new request with status pending.
// Returns a ValidationError enumerating every violated field.
func (rl *RequestLedger) Submit(ctx context.Context, sub RequestSubmission) (*TrainingRequest, error) {
	if verr := checkStruct(sub); verr != nil {
		return nil, verr
	}

	urgency := sub.Urgency
	if urgency == "" {
		urgency = UrgencyNormal
	}
	endDate := sub.PreferredEndDate
	if endDate.IsZero() {
		endDate = sub.PreferredStartDate
	}

	now := time.Now().UTC()
	req := &TrainingRequest{
		ID:                     NewRequestID(),
		ServiceType:            sub.ServiceType,
		TrainingProgram:        sub.TrainingProgram,
		TrainingType:           sub.TrainingType,
		Urgency:                urgency,
		PreferredStartDate:     sub.PreferredStartDate,
		PreferredEndDate:       endDate,
		PreferredStartTime:     sub.PreferredStartTime,
		PreferredEndTime:       sub.PreferredEndTime,
		DurationDays:           InclusiveDays(sub.PreferredStartDate, endDate),
		ParticipantCount:       sub.ParticipantCount,
		OrganizationName:       sub.OrganizationName,
		ContactPerson:          sub.ContactPerson,
		ContactNumber:          sub.ContactNumber,
		Email:                  sub.Email,
		NotificationPrefs:      sub.NotificationPrefs,
		LocationPreference:     sub.LocationPreference,
		VenueRequirements:      sub.VenueRequirements,
		EquipmentNeeded:        sub.EquipmentNeeded,
		Purpose:                sub.Purpose,
		AdditionalRequirements: sub.AdditionalRequirements,
		ValidID:                sub.ValidID,
		ParticipantList:        sub.ParticipantList,
		AdditionalDocs:         sub.AdditionalDocs,
		Status:                 RequestPending,
		CreatedAt:              now,
	}

	if err := rl.Store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}
	return req, nil
}

// Review decides a pending request. Decision must be approved or
// rejected; any other starting status fails with InvalidStateError.
func (rl *RequestLedger) Review(ctx context.Context, id RequestID, decision RequestStatus, adminNotes string) error {
	if decision != RequestApproved && decision != RequestRejected {
		verr := &ValidationError{}
		return verr.Add("decision", "must be approved or rejected")
	}
	return rl.Store.ReviewRequest(ctx, id, decision, adminNotes, time.Now().UTC())
}

// Get returns a request by id.
func (rl *RequestLedger) Get(ctx context.Context, id RequestID) (*TrainingRequest, error) {
	return rl.Store.GetRequest(ctx, id)
}

// ListByStatus returns requests filtered by status ("" or "all" for
// every status) and free-text search over contact person, program key,
// and email.
func (rl *RequestLedger) ListByStatus(ctx context.Context, status string, search string) ([]*TrainingRequest, error) {
	f := RequestFilter{Search: search}
	if status != "" && status != "all" {
		st := RequestStatus(status)
		if !st.Valid() {
			verr := &ValidationError{}
			return nil, verr.Add("status", "is not a known request status")
		}
		f.Status = st
	}
	return rl.Store.ListRequests(ctx, f)
}

// CompleteElapsed moves scheduled requests whose linked session has
// ended before asOf into the terminal completed status. Idempotent.
func (rl *RequestLedger) CompleteElapsed(ctx context.Context, asOf time.Time) (int, error) {
	return rl.Store.CompleteElapsedRequests(ctx, asOf)
}
