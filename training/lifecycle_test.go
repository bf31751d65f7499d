package training_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeline/training-engine/training"
	"github.com/lifeline/training-engine/training/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fixture struct {
	store         *store.Memory
	requests      *training.RequestLedger
	sessions      *training.SessionRegistry
	registrations *training.RegistrationLedger
	scheduler     *training.SchedulerBridge
}

func newFixture() *fixture {
	m := store.NewMemory()
	return &fixture{
		store:         m,
		requests:      training.NewRequestLedger(m),
		sessions:      training.NewSessionRegistry(m),
		registrations: training.NewRegistrationLedger(m),
		scheduler:     training.NewSchedulerBridge(m),
	}
}

func validSubmission() training.RequestSubmission {
	return training.RequestSubmission{
		ServiceType:        "health_services",
		TrainingProgram:    "first_aid_basic",
		PreferredStartDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		PreferredStartTime: "08:00",
		ParticipantCount:   3,
		ContactPerson:      "Maria Santos",
		ContactNumber:      "0917-555-0101",
		Email:              "m.santos@example.com",
	}
}

func validSessionInput() training.SessionInput {
	return training.SessionInput{
		Title:        "Basic Life Support with CPR",
		MajorService: "health_services",
		SessionDate:  time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
		Venue:        "Chapter Training Hall",
		Capacity:     20,
	}
}

func validRegistration(sessionID training.SessionID) training.RegistrationSubmission {
	return training.RegistrationSubmission{
		SessionID: sessionID,
		FullName:  "Ana Reyes",
		Email:     "ana.reyes@example.com",
		Age:       29,
		Location:  "Barangay San Isidro",
		ValidID:   "ref-valid-id.png",
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	verr, ok := err.(*training.ValidationError)
	require.True(t, ok, "expected *ValidationError, got %T: %v", err, err)
	names := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		names[i] = f.Field
	}
	return names
}

// =============================================================================
// REQUEST SUBMISSION
// =============================================================================

func TestSubmitRequest_DefaultsApplied(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.requests.Submit(ctx, validSubmission())
	require.NoError(t, err)

	assert.Equal(t, training.RequestPending, req.Status)
	assert.Equal(t, training.UrgencyNormal, req.Urgency)
	assert.Equal(t, req.PreferredStartDate, req.PreferredEndDate, "end date defaults to start date")
	assert.Equal(t, 1, req.DurationDays)
	assert.Nil(t, req.CreatedSessionID)
	assert.Nil(t, req.ReviewedDate)
}

func TestSubmitRequest_MultiDayDuration(t *testing.T) {
	f := newFixture()
	sub := validSubmission()
	sub.PreferredEndDate = sub.PreferredStartDate.AddDate(0, 0, 2)

	req, err := f.requests.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 3, req.DurationDays, "inclusive span")
}

func TestSubmitRequest_EnumeratesAllViolations(t *testing.T) {
	f := newFixture()

	_, err := f.requests.Submit(context.Background(), training.RequestSubmission{})
	require.Error(t, err)

	names := fieldNames(t, err)
	for _, want := range []string{
		"service_type", "training_program", "preferred_start_date",
		"preferred_start_time", "participant_count", "contact_person",
		"contact_number", "email",
	} {
		assert.Contains(t, names, want)
	}
}

func TestSubmitRequest_OrganizationRequiredForFiveOrMore(t *testing.T) {
	f := newFixture()
	sub := validSubmission()
	sub.ParticipantCount = 5
	sub.OrganizationName = ""

	_, err := f.requests.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.Contains(t, fieldNames(t, err), "organization_name")

	sub.OrganizationName = "San Isidro National High School"
	_, err = f.requests.Submit(context.Background(), sub)
	assert.NoError(t, err)
}

func TestSubmitRequest_RejectsUnknownCatalogKeysAndBadDates(t *testing.T) {
	f := newFixture()
	sub := validSubmission()
	sub.ServiceType = "space_services"
	sub.TrainingProgram = "rocketry"
	sub.Urgency = "apocalyptic"
	sub.PreferredEndDate = sub.PreferredStartDate.AddDate(0, 0, -1)

	_, err := f.requests.Submit(context.Background(), sub)
	require.Error(t, err)

	names := fieldNames(t, err)
	assert.Contains(t, names, "service_type")
	assert.Contains(t, names, "training_program")
	assert.Contains(t, names, "urgency")
	assert.Contains(t, names, "preferred_end_date")
}

func TestListRequests_SearchMatchesProgramName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.requests.Submit(ctx, validSubmission())
	require.NoError(t, err)

	other := validSubmission()
	other.ServiceType = "disaster_management"
	other.TrainingProgram = "disaster_preparedness"
	other.ContactPerson = "Jun Villanueva"
	other.Email = "jun.v@example.com"
	_, err = f.requests.Submit(ctx, other)
	require.NoError(t, err)

	// The display name matches even though the row stores the key.
	got, err := f.requests.ListByStatus(ctx, "", "first aid")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first_aid_basic", got[0].TrainingProgram)

	// Key fragments keep matching too.
	got, err = f.requests.ListByStatus(ctx, "", "disaster_prep")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "disaster_preparedness", got[0].TrainingProgram)
}

// =============================================================================
// REQUEST REVIEW
// =============================================================================

func TestReviewRequest_ApproveAndReject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	approved, err := f.requests.Submit(ctx, validSubmission())
	require.NoError(t, err)
	rejected, err := f.requests.Submit(ctx, validSubmission())
	require.NoError(t, err)

	require.NoError(t, f.requests.Review(ctx, approved.ID, training.RequestApproved, "venue confirmed"))
	require.NoError(t, f.requests.Review(ctx, rejected.ID, training.RequestRejected, "no instructor available"))

	got, err := f.requests.Get(ctx, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, training.RequestApproved, got.Status)
	assert.Equal(t, "venue confirmed", got.AdminNotes)
	require.NotNil(t, got.ReviewedDate)

	got, err = f.requests.Get(ctx, rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, training.RequestRejected, got.Status)
}

func TestReviewRequest_InvalidDecision(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.requests.Submit(ctx, validSubmission())
	require.NoError(t, err)

	err = f.requests.Review(ctx, req.ID, "scheduled", "")
	require.Error(t, err)
	assert.Contains(t, fieldNames(t, err), "decision")
}

func TestReviewRequest_OnlyFromPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.requests.Submit(ctx, validSubmission())
	require.NoError(t, err)
	require.NoError(t, f.requests.Review(ctx, req.ID, training.RequestRejected, ""))

	err = f.requests.Review(ctx, req.ID, training.RequestApproved, "")
	assert.ErrorIs(t, err, training.ErrInvalidState)
}

func TestReviewRequest_UnknownID(t *testing.T) {
	f := newFixture()
	err := f.requests.Review(context.Background(), "req-missing", training.RequestApproved, "")
	assert.ErrorIs(t, err, training.ErrNotFound)
}

// =============================================================================
// SCHEDULER BRIDGE
// =============================================================================

func TestSchedule_ConvertsApprovedRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sub := validSubmission()
	sub.ParticipantCount = 25
	sub.OrganizationName = "San Isidro National High School"
	sub.LocationPreference = "School covered court"
	sub.Purpose = "Faculty certification"
	req, err := f.requests.Submit(ctx, sub)
	require.NoError(t, err)
	require.NoError(t, f.requests.Review(ctx, req.ID, training.RequestApproved, ""))

	session, err := f.scheduler.CreateSessionFromRequest(ctx, req.ID)
	require.NoError(t, err)

	// Field mapping
	assert.Equal(t, "Basic First Aid", session.Title, "catalog program name")
	assert.Equal(t, "health_services", session.MajorService)
	assert.Equal(t, sub.PreferredStartDate, session.SessionDate)
	assert.Equal(t, 25, session.Capacity)
	assert.Equal(t, "School covered court", session.Venue)
	assert.Equal(t, "Faculty certification", session.Description)

	// Back-link and status
	got, err := f.requests.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, training.RequestScheduled, got.Status)
	require.NotNil(t, got.CreatedSessionID)
	assert.Equal(t, session.ID, *got.CreatedSessionID)
}

func TestSchedule_SecondAttemptFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.requests.Submit(ctx, validSubmission())
	require.NoError(t, err)
	require.NoError(t, f.requests.Review(ctx, req.ID, training.RequestApproved, ""))

	first, err := f.scheduler.CreateSessionFromRequest(ctx, req.ID)
	require.NoError(t, err)

	_, err = f.scheduler.CreateSessionFromRequest(ctx, req.ID)
	assert.ErrorIs(t, err, training.ErrAlreadyScheduled)

	// Exactly one session exists.
	views, err := f.sessions.List(ctx, training.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, first.ID, views[0].ID)
}

func TestSchedule_RequiresApprovedStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.requests.Submit(ctx, validSubmission())
	require.NoError(t, err)

	_, err = f.scheduler.CreateSessionFromRequest(ctx, req.ID)
	assert.ErrorIs(t, err, training.ErrInvalidState)
}

func TestSchedule_ConcurrentCallsYieldOneSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.requests.Submit(ctx, validSubmission())
	require.NoError(t, err)
	require.NoError(t, f.requests.Review(ctx, req.ID, training.RequestApproved, ""))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.scheduler.CreateSessionFromRequest(ctx, req.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, training.ErrAlreadyScheduled)
		}
	}
	assert.Equal(t, 1, succeeded)

	views, err := f.sessions.List(ctx, training.SessionFilter{})
	require.NoError(t, err)
	assert.Len(t, views, 1, "no orphaned sessions")
}

// =============================================================================
// COMPLETION SWEEP
// =============================================================================

func TestCompleteElapsed_FlipsScheduledWithPastSessions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sub := validSubmission()
	sub.PreferredStartDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	req, err := f.requests.Submit(ctx, sub)
	require.NoError(t, err)
	require.NoError(t, f.requests.Review(ctx, req.ID, training.RequestApproved, ""))
	_, err = f.scheduler.CreateSessionFromRequest(ctx, req.ID)
	require.NoError(t, err)

	// Before the session ends: nothing to do.
	n, err := f.requests.CompleteElapsed(ctx, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// After: exactly one transition, then idempotent.
	n, err = f.requests.CompleteElapsed(ctx, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.requests.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, training.RequestCompleted, got.Status)
	assert.NotNil(t, got.CreatedSessionID, "link survives completion")

	n, err = f.requests.CompleteElapsed(ctx, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCompleteElapsed_SameDayEndStaysLive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sub := validSubmission()
	sub.PreferredStartDate = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	req, err := f.requests.Submit(ctx, sub)
	require.NoError(t, err)
	require.NoError(t, f.requests.Review(ctx, req.ID, training.RequestApproved, ""))
	_, err = f.scheduler.CreateSessionFromRequest(ctx, req.ID)
	require.NoError(t, err)

	// A mid-day sweep on the end date itself leaves the request live.
	n, err := f.requests.CompleteElapsed(ctx, time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, err := f.requests.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, training.RequestScheduled, got.Status)

	// The first sweep of the next day completes it.
	n, err = f.requests.CompleteElapsed(ctx, time.Date(2026, 8, 29, 0, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// =============================================================================
// REGISTRATIONS AND CAPACITY
// =============================================================================

func TestRegister_PendingByDefault(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session, err := f.sessions.Create(ctx, validSessionInput())
	require.NoError(t, err)

	reg, err := f.registrations.Register(ctx, validRegistration(session.ID))
	require.NoError(t, err)
	assert.Equal(t, training.RegistrationPending, reg.Status)
	assert.Equal(t, training.RegistrationIndividual, reg.Type)
}

func TestRegister_ArchivedSessionRefused(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session, err := f.sessions.Create(ctx, validSessionInput())
	require.NoError(t, err)
	require.NoError(t, f.sessions.Archive(ctx, session.ID))

	_, err = f.registrations.Register(ctx, validRegistration(session.ID))
	assert.ErrorIs(t, err, training.ErrSessionArchived)
}

func TestRegister_UnknownSession(t *testing.T) {
	f := newFixture()
	_, err := f.registrations.Register(context.Background(), validRegistration("ses-missing"))
	assert.ErrorIs(t, err, training.ErrNotFound)
}

func TestRegister_PaidSessionRequiresReceipt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := validSessionInput()
	in.Fee = decimal.NewFromInt(350)
	session, err := f.sessions.Create(ctx, in)
	require.NoError(t, err)

	sub := validRegistration(session.ID)
	sub.PaymentMode = "gcash"
	_, err = f.registrations.Register(ctx, sub)
	require.Error(t, err)
	assert.Contains(t, fieldNames(t, err), "payment_receipt")

	// "free" payment mode waives the receipt.
	sub.PaymentMode = "free"
	_, err = f.registrations.Register(ctx, sub)
	assert.NoError(t, err)

	// And so does attaching one.
	sub.PaymentMode = "gcash"
	sub.PaymentReceipt = "ref-receipt.png"
	sub.Email = "second@example.com"
	_, err = f.registrations.Register(ctx, sub)
	assert.NoError(t, err)
}

func TestApprove_CapacityEnforcedAtApprovalOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := validSessionInput()
	in.Capacity = 2
	session, err := f.sessions.Create(ctx, in)
	require.NoError(t, err)

	// Pending registrations may exceed capacity freely.
	var regs []*training.SessionRegistration
	for i := 0; i < 4; i++ {
		sub := validRegistration(session.ID)
		sub.Email = string(rune('a'+i)) + "@example.com"
		reg, err := f.registrations.Register(ctx, sub)
		require.NoError(t, err)
		regs = append(regs, reg)
	}

	require.NoError(t, f.registrations.Approve(ctx, regs[0].ID))
	require.NoError(t, f.registrations.Approve(ctx, regs[1].ID))

	err = f.registrations.Approve(ctx, regs[2].ID)
	assert.ErrorIs(t, err, training.ErrCapacityExceeded)

	// The refused registration is unchanged.
	got, err := f.registrations.Get(ctx, regs[2].ID)
	require.NoError(t, err)
	assert.Equal(t, training.RegistrationPending, got.Status)

	view, err := f.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.ApprovedCount)
	assert.Equal(t, 2, view.PendingCount)
	assert.True(t, view.IsFull)
}

func TestApprove_ZeroCapacityUnlimited(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := validSessionInput()
	in.Capacity = 0
	session, err := f.sessions.Create(ctx, in)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		sub := validRegistration(session.ID)
		sub.Email = string(rune('a'+i)) + "@example.com"
		reg, err := f.registrations.Register(ctx, sub)
		require.NoError(t, err)
		require.NoError(t, f.registrations.Approve(ctx, reg.ID))
	}

	view, err := f.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, view.ApprovedCount)
	assert.False(t, view.IsFull)
}

func TestApprove_ConcurrentForLastSlot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := validSessionInput()
	in.Capacity = 1
	session, err := f.sessions.Create(ctx, in)
	require.NoError(t, err)

	const workers = 8
	ids := make([]training.RegistrationID, workers)
	for i := 0; i < workers; i++ {
		sub := validRegistration(session.ID)
		sub.Email = string(rune('a'+i)) + "@example.com"
		reg, err := f.registrations.Register(ctx, sub)
		require.NoError(t, err)
		ids[i] = reg.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.registrations.Approve(ctx, ids[i])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, training.ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 1, succeeded, "one slot, one winner")
}

func TestApproveReject_OnlyFromPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session, err := f.sessions.Create(ctx, validSessionInput())
	require.NoError(t, err)
	reg, err := f.registrations.Register(ctx, validRegistration(session.ID))
	require.NoError(t, err)

	require.NoError(t, f.registrations.Reject(ctx, reg.ID))
	assert.ErrorIs(t, f.registrations.Approve(ctx, reg.ID), training.ErrInvalidState)
	assert.ErrorIs(t, f.registrations.Reject(ctx, reg.ID), training.ErrInvalidState)

	// Deletion is allowed from any status.
	require.NoError(t, f.registrations.Delete(ctx, reg.ID))
	_, err = f.registrations.Get(ctx, reg.ID)
	assert.ErrorIs(t, err, training.ErrNotFound)
}

func TestListForRegistrant_JoinsSessionFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session, err := f.sessions.Create(ctx, validSessionInput())
	require.NoError(t, err)
	_, err = f.registrations.Register(ctx, validRegistration(session.ID))
	require.NoError(t, err)

	views, err := f.registrations.ListForRegistrant(ctx, "ana.reyes@example.com")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Basic Life Support with CPR", views[0].SessionTitle)
	assert.Equal(t, "Chapter Training Hall", views[0].SessionVenue)
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

func TestArchiveRestore_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session, err := f.sessions.Create(ctx, validSessionInput())
	require.NoError(t, err)
	reg, err := f.registrations.Register(ctx, validRegistration(session.ID))
	require.NoError(t, err)
	require.NoError(t, f.registrations.Approve(ctx, reg.ID))

	require.NoError(t, f.sessions.Archive(ctx, session.ID))
	require.NoError(t, f.sessions.Archive(ctx, session.ID), "archive is idempotent")

	active, err := f.sessions.List(ctx, training.SessionFilter{Scope: training.ScopeActive})
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := f.sessions.List(ctx, training.SessionFilter{Scope: training.ScopeArchived})
	require.NoError(t, err)
	require.Len(t, archived, 1)

	require.NoError(t, f.sessions.Restore(ctx, session.ID))
	require.NoError(t, f.sessions.Restore(ctx, session.ID), "restore is idempotent")

	// Registrations survive the round trip untouched.
	view, err := f.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, view.Archived)
	assert.Equal(t, 1, view.ApprovedCount)
}

func TestPermanentDelete_ArchivedOnlyAndCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session, err := f.sessions.Create(ctx, validSessionInput())
	require.NoError(t, err)
	reg, err := f.registrations.Register(ctx, validRegistration(session.ID))
	require.NoError(t, err)

	// Active sessions cannot be destroyed.
	err = f.sessions.PermanentlyDelete(ctx, session.ID)
	assert.ErrorIs(t, err, training.ErrInvalidState)

	require.NoError(t, f.sessions.Archive(ctx, session.ID))
	require.NoError(t, f.sessions.PermanentlyDelete(ctx, session.ID))

	_, err = f.sessions.Get(ctx, session.ID)
	assert.ErrorIs(t, err, training.ErrNotFound)
	_, err = f.registrations.Get(ctx, reg.ID)
	assert.ErrorIs(t, err, training.ErrNotFound, "registrations cascade")
}

func TestSessionUpdate_PreservesArchivedAndCreatedAt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session, err := f.sessions.Create(ctx, validSessionInput())
	require.NoError(t, err)
	require.NoError(t, f.sessions.Archive(ctx, session.ID))

	in := validSessionInput()
	in.Title = "Standard First Aid"
	in.Venue = "Municipal Gymnasium"
	require.NoError(t, f.sessions.Update(ctx, session.ID, in))

	views, err := f.sessions.List(ctx, training.SessionFilter{Scope: training.ScopeArchived})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Standard First Aid", views[0].Title)
	assert.True(t, views[0].Archived)
	assert.Equal(t, session.CreatedAt, views[0].CreatedAt)
}

func TestSessionStats_CountsByServiceAndTime(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	past := validSessionInput()
	past.SessionDate = time.Now().UTC().AddDate(0, 0, -30)
	_, err := f.sessions.Create(ctx, past)
	require.NoError(t, err)

	upcoming := validSessionInput()
	upcoming.MajorService = "disaster_management"
	upcoming.SessionDate = time.Now().UTC().AddDate(0, 0, 30)
	_, err = f.sessions.Create(ctx, upcoming)
	require.NoError(t, err)

	stats, err := f.sessions.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Upcoming)
	assert.Equal(t, 1, stats.Completed)
	require.Len(t, stats.Services, 2)
	assert.Equal(t, "disaster_management", stats.Services[0].MajorService)
	assert.Equal(t, "health_services", stats.Services[1].MajorService)
}
