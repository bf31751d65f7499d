/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario walks the real domain flows
	(submit, review, schedule, register, approve) so the seeded data obeys
	every lifecycle invariant.

AVAILABLE SCENARIOS:

	community-first-aid: Org request approved and scheduled into a
	                     session, plus a pending walk-in request
	near-capacity:       Session at its capacity cap with overflow
	                     pending registrations
	archived-history:    Past session archived with its registrations,
	                     plus a completed request

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Drive the public service layer, never raw inserts
 3. Leave the data mid-lifecycle so every UI state has an example

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "near-capacity"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - catalog/catalog.go: Service and program keys used in the seeds
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lifeline/training-engine/catalog"
	"github.com/lifeline/training-engine/training"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "community-first-aid",
		Name:        "Community First Aid",
		Description: "Organization request approved and scheduled into a session, plus a pending walk-in request",
		Category:    "requests",
	},
	{
		ID:          "near-capacity",
		Name:        "Near Capacity",
		Description: "Session at its capacity cap with overflow pending registrations",
		Category:    "registrations",
	},
	{
		ID:          "archived-history",
		Name:        "Archived History",
		Description: "Past session archived with registrations intact, plus a completed request",
		Category:    "sessions",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "community-first-aid":
		err = h.loadCommunityFirstAidScenario(ctx)
	case "near-capacity":
		err = h.loadNearCapacityScenario(ctx)
	case "archived-history":
		err = h.loadArchivedHistoryScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadCommunityFirstAidScenario(ctx context.Context) error {
	nextMonth := time.Now().UTC().AddDate(0, 1, 0)

	// Organization request: approved, then scheduled into a session.
	// The date range spans the program's typical duration.
	program, _ := catalog.ProgramByKey("first_aid_standard")
	req, err := h.Requests.Submit(ctx, training.RequestSubmission{
		ServiceType:        "health_services",
		TrainingProgram:    program.Key,
		Urgency:            training.UrgencyNormal,
		PreferredStartDate: nextMonth,
		PreferredEndDate:   nextMonth.AddDate(0, 0, program.TypicalDays-1),
		PreferredStartTime: "08:00",
		PreferredEndTime:   "17:00",
		ParticipantCount:   25,
		OrganizationName:   "San Isidro National High School",
		ContactPerson:      "Maria Santos",
		ContactNumber:      "0917-555-0101",
		Email:              "m.santos@sinhs.edu.ph",
		NotificationPrefs:  []training.NotificationChannel{training.NotifyEmail, training.NotifySMS},
		LocationPreference: "School covered court",
		Purpose:            "Standard first aid certification for faculty and staff",
	})
	if err != nil {
		return err
	}
	if err := h.Requests.Review(ctx, req.ID, training.RequestApproved, "Venue confirmed with the principal's office"); err != nil {
		return err
	}
	session, err := h.Scheduler.CreateSessionFromRequest(ctx, req.ID)
	if err != nil {
		return err
	}

	// Two walk-in registrations against the scheduled session.
	reg, err := h.Registrations.Register(ctx, training.RegistrationSubmission{
		SessionID: session.ID,
		FullName:  "Ana Reyes",
		Email:     "ana.reyes@example.com",
		Age:       29,
		Location:  "Barangay San Isidro",
		ValidID:   "seed-valid-id-1.png",
	})
	if err != nil {
		return err
	}
	if err := h.Registrations.Approve(ctx, reg.ID); err != nil {
		return err
	}
	if _, err := h.Registrations.Register(ctx, training.RegistrationSubmission{
		SessionID: session.ID,
		FullName:  "Carlo Dizon",
		Email:     "carlo.dizon@example.com",
		Age:       34,
		Location:  "Barangay Poblacion",
		ValidID:   "seed-valid-id-2.png",
	}); err != nil {
		return err
	}

	// A second request left pending for the review queue.
	_, err = h.Requests.Submit(ctx, training.RequestSubmission{
		ServiceType:        "disaster_management",
		TrainingProgram:    "disaster_preparedness",
		Urgency:            training.UrgencyHigh,
		PreferredStartDate: nextMonth.AddDate(0, 0, 14),
		PreferredStartTime: "09:00",
		ParticipantCount:   3,
		ContactPerson:      "Jun Villanueva",
		ContactNumber:      "0917-555-0102",
		Email:              "jun.v@example.com",
		Purpose:            "Family disaster preparedness orientation",
	})
	return err
}

func (h *Handler) loadNearCapacityScenario(ctx context.Context) error {
	nextWeek := time.Now().UTC().AddDate(0, 0, 7)

	session, err := h.Sessions.Create(ctx, training.SessionInput{
		Title:        "Basic Life Support with CPR",
		Description:  "Hands-on BLS and CPR practice with manikins",
		MajorService: "health_services",
		SessionDate:  nextWeek,
		StartTime:    "08:00",
		EndTime:      "16:00",
		Venue:        "Chapter Training Hall",
		Capacity:     3,
		Instructor:   "Nurse Liza Mendoza",
	})
	if err != nil {
		return err
	}

	names := []struct {
		name, email string
	}{
		{"Paolo Garcia", "paolo.g@example.com"},
		{"Bea Lim", "bea.lim@example.com"},
		{"Ramon Cruz", "ramon.cruz@example.com"},
		{"Tina Flores", "tina.f@example.com"},
		{"Miguel Tan", "miguel.tan@example.com"},
	}

	// First three approved fill the session; the rest stay pending to
	// show the overflow queue.
	for i, n := range names {
		reg, err := h.Registrations.Register(ctx, training.RegistrationSubmission{
			SessionID: session.ID,
			FullName:  n.name,
			Email:     n.email,
			Age:       20 + i,
			Location:  "Barangay Poblacion",
			ValidID:   training.DocumentRef(fmt.Sprintf("seed-valid-id-%d.png", i+10)),
		})
		if err != nil {
			return err
		}
		if i < 3 {
			if err := h.Registrations.Approve(ctx, reg.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) loadArchivedHistoryScenario(ctx context.Context) error {
	lastMonth := time.Now().UTC().AddDate(0, -1, 0)

	// A past session, now archived with its roster intact.
	session, err := h.Sessions.Create(ctx, training.SessionInput{
		Title:        "Blood Donor Orientation",
		MajorService: "blood_services",
		SessionDate:  lastMonth,
		StartTime:    "13:00",
		EndTime:      "16:00",
		Venue:        "Municipal Gymnasium",
		Capacity:     50,
	})
	if err != nil {
		return err
	}
	reg, err := h.Registrations.Register(ctx, training.RegistrationSubmission{
		SessionID: session.ID,
		FullName:  "Grace Aquino",
		Email:     "grace.a@example.com",
		Age:       41,
		Location:  "Barangay San Roque",
		ValidID:   "seed-valid-id-20.png",
	})
	if err != nil {
		return err
	}
	if err := h.Registrations.Approve(ctx, reg.ID); err != nil {
		return err
	}
	if err := h.Sessions.Archive(ctx, session.ID); err != nil {
		return err
	}

	// A request that ran its full lifecycle to completed.
	req, err := h.Requests.Submit(ctx, training.RequestSubmission{
		ServiceType:        "safety_services",
		TrainingProgram:    "emergency_response",
		PreferredStartDate: lastMonth.AddDate(0, 0, 3),
		PreferredStartTime: "08:00",
		ParticipantCount:   15,
		OrganizationName:   "Poblacion Market Vendors Association",
		ContactPerson:      "Edgar Ramos",
		ContactNumber:      "0917-555-0103",
		Email:              "edgar.r@example.com",
	})
	if err != nil {
		return err
	}
	if err := h.Requests.Review(ctx, req.ID, training.RequestApproved, ""); err != nil {
		return err
	}
	if _, err := h.Scheduler.CreateSessionFromRequest(ctx, req.ID); err != nil {
		return err
	}
	// Session dates are in the past, so the sweep completes the request.
	if _, err := h.Requests.CompleteElapsed(ctx, time.Now().UTC()); err != nil {
		return err
	}
	return nil
}
