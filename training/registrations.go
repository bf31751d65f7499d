/*
registrations.go - Registration Ledger: the SessionRegistration workflow

PURPOSE:
  Owns SessionRegistration rows and their approval workflow:

    pending ──▶ approved   (guarded by session capacity)
       │
       └──────▶ rejected   (unguarded)

  Both decided states are terminal; deletion is a side channel open to
  staff from every state.

CAPACITY:
  The capacity invariant is enforced exactly once, at approval time, by
  Store.ApproveRegistration: the capacity read and the status write
  happen in one storage transaction. Pending registrations may
  accumulate past capacity; only approved_count is capped.

ADMISSION:
  Register refuses unknown sessions (NotFoundError) and archived
  sessions (SessionArchivedError) before validating registrant fields.
  A payment receipt is required when the session charges a fee and the
  payment mode is not "free".
*/
package training

import (
	"context"
	"fmt"
	"time"
)

// RegistrationSubmission is the validated input for registering a
// trainee against a session.
type RegistrationSubmission struct {
	SessionID SessionID        `json:"session_id" validate:"required"`
	Type      RegistrationType `json:"registration_type"`

	FullName         string `json:"full_name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Age              int    `json:"age" validate:"omitempty,gte=0"`
	Location         string `json:"location" validate:"required"`
	RCYStatus        string `json:"rcy_status"`
	OrganizationName string `json:"organization_name"`
	PaymentMode      string `json:"payment_mode"`

	ValidID        DocumentRef `json:"valid_id" validate:"required"`
	Requirements   DocumentRef `json:"requirements"`
	PaymentReceipt DocumentRef `json:"payment_receipt"`
}

// RegistrationLedger orchestrates the SessionRegistration workflow.
type RegistrationLedger struct {
	Store Store
}

// NewRegistrationLedger creates a ledger over the given store.
func NewRegistrationLedger(store Store) *RegistrationLedger {
	return &RegistrationLedger{Store: store}
}

// Register admits a new pending registration against an active session.
func (rg *RegistrationLedger) Register(ctx context.Context, sub RegistrationSubmission) (*SessionRegistration, error) {
	session, err := rg.Store.GetSession(ctx, sub.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Archived {
		return nil, &SessionArchivedError{SessionID: session.ID}
	}

	verr := checkStruct(sub)
	if verr == nil {
		verr = &ValidationError{}
	}
	if session.Fee.IsPositive() && sub.PaymentMode != "free" && sub.PaymentReceipt == "" {
		verr.Add("payment_receipt", "is required for paid sessions")
	}
	if verr.Has() {
		return nil, verr
	}

	regType := sub.Type
	if regType == "" {
		regType = RegistrationIndividual
	}

	reg := &SessionRegistration{
		ID:               NewRegistrationID(),
		SessionID:        session.ID,
		Type:             regType,
		FullName:         sub.FullName,
		Email:            sub.Email,
		Age:              sub.Age,
		Location:         sub.Location,
		RCYStatus:        sub.RCYStatus,
		OrganizationName: sub.OrganizationName,
		PaymentMode:      sub.PaymentMode,
		ValidID:          sub.ValidID,
		Requirements:     sub.Requirements,
		PaymentReceipt:   sub.PaymentReceipt,
		Status:           RegistrationPending,
		RegistrationDate: time.Now().UTC(),
	}

	if err := rg.Store.SaveRegistration(ctx, reg); err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}
	return reg, nil
}

// Approve moves a pending registration to approved, unless the owning
// session is already at capacity (CapacityExceededError, no mutation).
func (rg *RegistrationLedger) Approve(ctx context.Context, id RegistrationID) error {
	return rg.Store.ApproveRegistration(ctx, id)
}

// Reject moves a pending registration to rejected.
func (rg *RegistrationLedger) Reject(ctx context.Context, id RegistrationID) error {
	return rg.Store.RejectRegistration(ctx, id)
}

// Delete hard-deletes a registration from any status.
func (rg *RegistrationLedger) Delete(ctx context.Context, id RegistrationID) error {
	return rg.Store.DeleteRegistration(ctx, id)
}

// Get returns a registration by id.
func (rg *RegistrationLedger) Get(ctx context.Context, id RegistrationID) (*SessionRegistration, error) {
	return rg.Store.GetRegistration(ctx, id)
}

// ListForSession returns a session's registrations.
func (rg *RegistrationLedger) ListForSession(ctx context.Context, id SessionID) ([]*SessionRegistration, error) {
	if _, err := rg.Store.GetSession(ctx, id); err != nil {
		return nil, err
	}
	return rg.Store.ListRegistrationsBySession(ctx, id)
}

// ListForRegistrant returns a registrant's registrations joined with
// session display fields, for "my registrations" views.
func (rg *RegistrationLedger) ListForRegistrant(ctx context.Context, email string) ([]*RegistrationView, error) {
	regs, err := rg.Store.ListRegistrationsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	views := make([]*RegistrationView, 0, len(regs))
	for _, reg := range regs {
		view := &RegistrationView{SessionRegistration: *reg}
		if session, err := rg.Store.GetSession(ctx, reg.SessionID); err == nil {
			view.SessionTitle = session.Title
			view.SessionDate = session.SessionDate
			view.SessionVenue = session.Venue
			view.SessionFee = session.Fee
		}
		views = append(views, view)
	}
	return views, nil
}
