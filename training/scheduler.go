/*
scheduler.go - Scheduler Bridge: approved request to concrete session

PURPOSE:
  The single operation that materializes an approved TrainingRequest
  into a new TrainingSession and permanently links the two:

    request (approved) ──▶ session created ──▶ request (scheduled,
                                                created_session_id set)

FIELD MAPPING:
  title          catalog program name for training_program
  major_service  service_type
  dates/times    preferred start/end date and time
  capacity       participant_count
  venue          location_preference
  description    purpose

IDEMPOTENCY:
  A request with created_session_id already set fails with
  AlreadyScheduledError before any write, and the storage layer
  re-checks the same guard inside its transaction, so a double click
  (or two concurrent calls) yields exactly one session.

PARTIAL FAILURE:
  Store.CreateSessionFromRequest commits the session insert and the
  request update together; a failed request update rolls the insert
  back. If a store implementation ever surfaces a committed session
  with a failed back-link, the error is logged here as a
  reconciliation task instead of reporting a misleading scheduling
  failure to the user.
*/
package training

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lifeline/training-engine/catalog"
)

// ErrOrphanedSession signals that a session was created but the request
// back-link could not be written. Store implementations return this
// wrapped when their storage cannot make the two writes atomic.
var ErrOrphanedSession = errors.New("session created but request link failed; reconciliation required")

// SchedulerBridge converts approved requests into sessions.
type SchedulerBridge struct {
	Store Store
}

// NewSchedulerBridge creates a bridge over the given store.
func NewSchedulerBridge(store Store) *SchedulerBridge {
	return &SchedulerBridge{Store: store}
}

// CreateSessionFromRequest materializes an approved request into a new
// session and advances the request to scheduled.
func (sb *SchedulerBridge) CreateSessionFromRequest(ctx context.Context, id RequestID) (*TrainingSession, error) {
	req, err := sb.Store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CreatedSessionID != nil {
		return nil, &AlreadyScheduledError{RequestID: req.ID, SessionID: *req.CreatedSessionID}
	}
	if req.Status != RequestApproved {
		return nil, &InvalidStateError{Kind: "request", ID: string(req.ID), Status: string(req.Status), Op: "schedule"}
	}

	now := time.Now().UTC()
	session := sessionFromRequest(req, now)

	if err := sb.Store.CreateSessionFromRequest(ctx, req.ID, session); err != nil {
		if errors.Is(err, ErrOrphanedSession) {
			log.Printf("[scheduler] reconciliation required: request %s, orphaned session %s: %v",
				req.ID, session.ID, err)
		}
		return nil, err
	}
	return session, nil
}

// sessionFromRequest maps request fields onto a new session.
func sessionFromRequest(req *TrainingRequest, now time.Time) *TrainingSession {
	title := req.TrainingProgram
	if program, ok := catalog.ProgramByKey(req.TrainingProgram); ok {
		title = program.Name
	}

	endDate := req.PreferredEndDate
	if endDate.IsZero() {
		endDate = req.PreferredStartDate
	}

	return &TrainingSession{
		ID:             NewSessionID(),
		Title:          title,
		Description:    req.Purpose,
		MajorService:   req.ServiceType,
		SessionDate:    req.PreferredStartDate,
		SessionEndDate: endDate,
		StartTime:      req.PreferredStartTime,
		EndTime:        req.PreferredEndTime,
		Venue:          req.LocationPreference,
		Capacity:       req.ParticipantCount,
		Requirements:   req.VenueRequirements,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
