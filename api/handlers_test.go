/*
handlers_test.go - HTTP-level tests for API handlers

Tests for:
- Request submission and the validation error envelope
- The full request-to-session lifecycle over HTTP
- Capacity and archival conflicts mapped to 409 with stable kinds
- Document upload and serving
- Demo scenario loading
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lifeline/training-engine/docstore"
	"github.com/lifeline/training-engine/training/store"
)

func newTestRouter() http.Handler {
	return NewRouter(NewHandler(store.NewMemory(), docstore.NewMemory()))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v (body: %s)", err, w.Body.String())
	}
	return v
}

func submitBody() map[string]any {
	return map[string]any{
		"service_type":         "health_services",
		"training_program":     "first_aid_basic",
		"preferred_start_date": "2026-09-14",
		"preferred_start_time": "08:00",
		"participant_count":    3,
		"contact_person":       "Maria Santos",
		"contact_number":       "0917-555-0101",
		"email":                "m.santos@example.com",
	}
}

func TestSubmitRequest_HTTP(t *testing.T) {
	// GIVEN: A fresh router
	router := newTestRouter()

	// WHEN: Submitting a valid request
	w := doJSON(t, router, http.MethodPost, "/api/requests", submitBody())

	// THEN: 201 with defaults applied
	if w.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}
	dto := decode[RequestDTO](t, w)
	if dto.Status != "pending" {
		t.Errorf("Status = %q, want pending", dto.Status)
	}
	if dto.Urgency != "normal" {
		t.Errorf("Urgency = %q, want normal", dto.Urgency)
	}
	if dto.PreferredEndDate != "2026-09-14" {
		t.Errorf("PreferredEndDate = %q, want the start date", dto.PreferredEndDate)
	}

	// And it shows up in the pending listing
	w = doJSON(t, router, http.MethodGet, "/api/requests?status=pending", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	list := decode[[]RequestDTO](t, w)
	if len(list) != 1 || list[0].ID != dto.ID {
		t.Errorf("Pending listing = %d entries", len(list))
	}
}

func TestSubmitRequest_ValidationEnvelope(t *testing.T) {
	// GIVEN: A submission missing almost everything
	router := newTestRouter()

	// WHEN: Submitting it
	w := doJSON(t, router, http.MethodPost, "/api/requests", map[string]any{
		"email": "not-an-email",
	})

	// THEN: 400 with kind=validation and every violated field listed
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want 400", w.Code)
	}
	resp := decode[ErrorResponse](t, w)
	if resp.Kind != "validation" {
		t.Errorf("Kind = %q, want validation", resp.Kind)
	}
	if len(resp.Fields) < 5 {
		t.Errorf("Fields = %d violations, want the full enumeration: %+v", len(resp.Fields), resp.Fields)
	}
	found := false
	for _, f := range resp.Fields {
		if f.Field == "email" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected an email violation in %+v", resp.Fields)
	}
}

func TestRequestLifecycle_HTTP(t *testing.T) {
	// GIVEN: A submitted request
	router := newTestRouter()
	req := decode[RequestDTO](t, doJSON(t, router, http.MethodPost, "/api/requests", submitBody()))

	// WHEN: Approving and scheduling it
	w := doJSON(t, router, http.MethodPost, "/api/requests/"+req.ID+"/review",
		map[string]string{"decision": "approved", "admin_notes": "ok"})
	if w.Code != http.StatusOK {
		t.Fatalf("Review status = %d (body: %s)", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/requests/"+req.ID+"/schedule", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Schedule status = %d (body: %s)", w.Code, w.Body.String())
	}
	session := decode[SessionDTO](t, w)

	// THEN: The request carries the back-link
	got := decode[RequestDTO](t, doJSON(t, router, http.MethodGet, "/api/requests/"+req.ID, nil))
	if got.Status != "scheduled" {
		t.Errorf("Status = %q, want scheduled", got.Status)
	}
	if got.CreatedSessionID == nil || *got.CreatedSessionID != session.ID {
		t.Errorf("CreatedSessionID = %v, want %s", got.CreatedSessionID, session.ID)
	}

	// A second schedule click is a 409 already_scheduled
	w = doJSON(t, router, http.MethodPost, "/api/requests/"+req.ID+"/schedule", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("Second schedule status = %d, want 409", w.Code)
	}
	if resp := decode[ErrorResponse](t, w); resp.Kind != "already_scheduled" {
		t.Errorf("Kind = %q, want already_scheduled", resp.Kind)
	}
}

func TestRegistrationConflicts_HTTP(t *testing.T) {
	// GIVEN: A session with capacity 1
	router := newTestRouter()
	w := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]any{
		"title":         "Basic Life Support with CPR",
		"major_service": "health_services",
		"session_date":  "2026-10-05",
		"venue":         "Chapter Training Hall",
		"capacity":      1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Create session status = %d (body: %s)", w.Code, w.Body.String())
	}
	session := decode[SessionDTO](t, w)

	register := func(email string) RegistrationDTO {
		w := doJSON(t, router, http.MethodPost, "/api/sessions/"+session.ID+"/registrations", map[string]any{
			"full_name": "Ana Reyes",
			"email":     email,
			"location":  "Barangay San Isidro",
			"valid_id":  "ref-valid-id.png",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("Register status = %d (body: %s)", w.Code, w.Body.String())
		}
		return decode[RegistrationDTO](t, w)
	}

	first := register("first@example.com")
	second := register("second@example.com")

	// WHEN: Approving past capacity
	w = doJSON(t, router, http.MethodPost, "/api/registrations/"+first.ID+"/approve", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("First approve status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/registrations/"+second.ID+"/approve", nil)

	// THEN: 409 capacity_exceeded
	if w.Code != http.StatusConflict {
		t.Fatalf("Second approve status = %d, want 409", w.Code)
	}
	if resp := decode[ErrorResponse](t, w); resp.Kind != "capacity_exceeded" {
		t.Errorf("Kind = %q, want capacity_exceeded", resp.Kind)
	}

	// Archiving closes the session to new registrations with 409
	w = doJSON(t, router, http.MethodPost, "/api/sessions/"+session.ID+"/archive", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Archive status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/sessions/"+session.ID+"/registrations", map[string]any{
		"full_name": "Late Comer",
		"email":     "late@example.com",
		"location":  "Barangay Poblacion",
		"valid_id":  "ref-valid-id.png",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("Archived register status = %d, want 409", w.Code)
	}
	if resp := decode[ErrorResponse](t, w); resp.Kind != "session_archived" {
		t.Errorf("Kind = %q, want session_archived", resp.Kind)
	}

	// Permanent delete requires DELETE on the archived session
	w = doJSON(t, router, http.MethodDelete, "/api/sessions/"+session.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Delete status = %d, want 204", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/sessions/"+session.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Get after delete status = %d, want 404", w.Code)
	}
}

func TestDocumentUploadAndServe(t *testing.T) {
	// GIVEN: A multipart upload
	router := newTestRouter()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "valid-id.png")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	fmt.Fprint(fw, "fake image bytes")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// THEN: 201 with a reference and serving URL
	if w.Code != http.StatusCreated {
		t.Fatalf("Upload status = %d (body: %s)", w.Code, w.Body.String())
	}
	doc := decode[DocumentDTO](t, w)
	if doc.Ref == "" || doc.URL != "/api/documents/"+doc.Ref {
		t.Fatalf("Unexpected document response: %+v", doc)
	}

	// AND the content is served back
	w = doJSON(t, router, http.MethodGet, doc.URL, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Serve status = %d", w.Code)
	}
	if w.Body.String() != "fake image bytes" {
		t.Errorf("Served body = %q", w.Body.String())
	}

	// Unknown refs are 404
	w = doJSON(t, router, http.MethodGet, "/api/documents/nope.png", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Unknown ref status = %d, want 404", w.Code)
	}
}

func TestScenarios_NearCapacity(t *testing.T) {
	// GIVEN: The near-capacity demo scenario
	router := newTestRouter()
	w := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		map[string]string{"scenario_id": "near-capacity"})
	if w.Code != http.StatusOK {
		t.Fatalf("Load status = %d (body: %s)", w.Code, w.Body.String())
	}

	// THEN: One full session with overflow pending registrations
	sessions := decode[[]SessionDTO](t, doJSON(t, router, http.MethodGet, "/api/sessions", nil))
	if len(sessions) != 1 {
		t.Fatalf("Sessions = %d, want 1", len(sessions))
	}
	s := sessions[0]
	if s.ApprovedCount != 3 || !s.IsFull {
		t.Errorf("ApprovedCount = %d, IsFull = %v; want 3/full", s.ApprovedCount, s.IsFull)
	}
	if s.PendingCount == 0 {
		t.Error("Expected overflow pending registrations")
	}

	// Current scenario is tracked
	w = doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil)
	current := decode[ScenarioDTO](t, w)
	if current.ID != "near-capacity" {
		t.Errorf("Current scenario = %q", current.ID)
	}
}

func TestCompleteElapsed_HTTP(t *testing.T) {
	// GIVEN: The archived-history scenario already ran the sweep
	router := newTestRouter()
	w := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		map[string]string{"scenario_id": "archived-history"})
	if w.Code != http.StatusOK {
		t.Fatalf("Load status = %d (body: %s)", w.Code, w.Body.String())
	}

	// WHEN: Triggering the manual sweep again
	w = doJSON(t, router, http.MethodPost, "/api/admin/complete-elapsed", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Sweep status = %d", w.Code)
	}
	result := decode[map[string]int](t, w)
	if result["completed"] != 0 {
		t.Errorf("completed = %d, want 0 (idempotent)", result["completed"])
	}

	// THEN: The completed request is visible in the listing
	completed := decode[[]RequestDTO](t, doJSON(t, router, http.MethodGet, "/api/requests?status=completed", nil))
	if len(completed) != 1 {
		t.Fatalf("Completed requests = %d, want 1", len(completed))
	}
	if completed[0].CreatedSessionID == nil {
		t.Error("Completed request lost its session link")
	}
}
