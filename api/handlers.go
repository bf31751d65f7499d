/*
handlers.go - HTTP API handlers for the training portal

PURPOSE:
  Exposes the training lifecycle via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Requests:
    GET    /api/requests                 List requests (?status=&search=)
    POST   /api/requests                 Submit a training request
    GET    /api/requests/{id}            Get request details
    POST   /api/requests/{id}/review     Approve or reject (staff)
    POST   /api/requests/{id}/schedule   Convert to a session (staff)

  Sessions:
    GET    /api/sessions                 List sessions (?scope=&service=&search=)
    POST   /api/sessions                 Create session (staff)
    GET    /api/sessions/stats           Aggregate dashboard stats
    GET    /api/sessions/{id}            Get session with occupancy
    PUT    /api/sessions/{id}            Update session (staff)
    POST   /api/sessions/{id}/archive    Soft-remove from listings
    POST   /api/sessions/{id}/restore    Return to active listings
    DELETE /api/sessions/{id}            Permanent delete (archived only)
    GET    /api/sessions/{id}/registrations  List a session's registrations
    POST   /api/sessions/{id}/registrations  Register a trainee

  Registrations:
    GET    /api/registrations            My registrations (?email=)
    GET    /api/registrations/{id}       Get registration
    POST   /api/registrations/{id}/approve   Approve (capacity-guarded)
    POST   /api/registrations/{id}/reject    Reject
    DELETE /api/registrations/{id}       Delete

  Documents:
    POST   /api/documents                Upload (multipart "file")
    GET    /api/documents/{ref}          Serve stored document

ERROR HANDLING:
  Domain errors map to JSON envelopes with a stable kind:
  - 400 validation          (fields array enumerates every violation)
  - 404 not_found
  - 409 invalid_state, session_archived, capacity_exceeded,
        already_scheduled
  - 500 internal

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lifeline/training-engine/training"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         training.Store
	Requests      *training.RequestLedger
	Sessions      *training.SessionRegistry
	Registrations *training.RegistrationLedger
	Scheduler     *training.SchedulerBridge
	Documents     training.DocumentStore

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the given store and document store.
func NewHandler(store training.Store, documents training.DocumentStore) *Handler {
	return &Handler{
		Store:         store,
		Requests:      training.NewRequestLedger(store),
		Sessions:      training.NewSessionRegistry(store),
		Registrations: training.NewRegistrationLedger(store),
		Scheduler:     training.NewSchedulerBridge(store),
		Documents:     documents,
	}
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// SubmitRequest records a new citizen training request.
// POST /api/requests
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sub, verr := toRequestSubmission(body)
	if verr != nil {
		writeDomainError(w, verr)
		return
	}

	req, err := h.Requests.Submit(r.Context(), sub)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

// ListRequests returns requests filtered by status and search text.
// GET /api/requests?status=pending&search=cruz
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	requests, err := h.Requests.ListByStatus(r.Context(), status, search)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]RequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRequest returns a single request.
// GET /api/requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := training.RequestID(chi.URLParam(r, "id"))

	req, err := h.Requests.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// ReviewRequest approves or rejects a pending request.
// POST /api/requests/{id}/review
func (h *Handler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	id := training.RequestID(chi.URLParam(r, "id"))

	var body ReviewRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Requests.Review(r.Context(), id, training.RequestStatus(body.Decision), body.AdminNotes); err != nil {
		writeDomainError(w, err)
		return
	}

	req, err := h.Requests.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// ScheduleRequest converts an approved request into a session.
// POST /api/requests/{id}/schedule
func (h *Handler) ScheduleRequest(w http.ResponseWriter, r *http.Request) {
	id := training.RequestID(chi.URLParam(r, "id"))

	session, err := h.Scheduler.CreateSessionFromRequest(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	view, err := h.Sessions.Get(r.Context(), session.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(view))
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// CreateSession creates a new session directly (staff).
// POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, verr := toSessionInput(body)
	if verr != nil {
		writeDomainError(w, verr)
		return
	}

	session, err := h.Sessions.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	view, err := h.Sessions.Get(r.Context(), session.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(view))
}

// ListSessions returns sessions with derived occupancy fields.
// GET /api/sessions?scope=archived&service=health_services&search=cpr
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	f := training.SessionFilter{
		Scope:   training.SessionScope(r.URL.Query().Get("scope")),
		Service: r.URL.Query().Get("service"),
		Search:  r.URL.Query().Get("search"),
	}

	views, err := h.Sessions.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]SessionDTO, len(views))
	for i, v := range views {
		dtos[i] = toSessionDTO(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSession returns a single session with derived fields.
// GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := training.SessionID(chi.URLParam(r, "id"))

	view, err := h.Sessions.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(view))
}

// UpdateSession replaces a session's editable fields.
// PUT /api/sessions/{id}
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id := training.SessionID(chi.URLParam(r, "id"))

	var body SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, verr := toSessionInput(body)
	if verr != nil {
		writeDomainError(w, verr)
		return
	}

	if err := h.Sessions.Update(r.Context(), id, in); err != nil {
		writeDomainError(w, err)
		return
	}

	view, err := h.Sessions.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(view))
}

// ArchiveSession soft-removes a session from active listings.
// POST /api/sessions/{id}/archive
func (h *Handler) ArchiveSession(w http.ResponseWriter, r *http.Request) {
	id := training.SessionID(chi.URLParam(r, "id"))

	if err := h.Sessions.Archive(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

// RestoreSession returns an archived session to active listings.
// POST /api/sessions/{id}/restore
func (h *Handler) RestoreSession(w http.ResponseWriter, r *http.Request) {
	id := training.SessionID(chi.URLParam(r, "id"))

	if err := h.Sessions.Restore(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

// DeleteSession permanently deletes an archived session and its
// registrations.
// DELETE /api/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := training.SessionID(chi.URLParam(r, "id"))

	if err := h.Sessions.PermanentlyDelete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSessionStats returns aggregate counts for the staff dashboard.
// GET /api/sessions/stats
func (h *Handler) GetSessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Sessions.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// =============================================================================
// REGISTRATION HANDLERS
// =============================================================================

// RegisterForSession admits a new pending registration.
// POST /api/sessions/{id}/registrations
func (h *Handler) RegisterForSession(w http.ResponseWriter, r *http.Request) {
	sessionID := training.SessionID(chi.URLParam(r, "id"))

	var body RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	reg, err := h.Registrations.Register(r.Context(), training.RegistrationSubmission{
		SessionID:        sessionID,
		Type:             training.RegistrationType(body.RegistrationType),
		FullName:         body.FullName,
		Email:            body.Email,
		Age:              body.Age,
		Location:         body.Location,
		RCYStatus:        body.RCYStatus,
		OrganizationName: body.OrganizationName,
		PaymentMode:      body.PaymentMode,
		ValidID:          training.DocumentRef(body.ValidID),
		Requirements:     training.DocumentRef(body.Requirements),
		PaymentReceipt:   training.DocumentRef(body.PaymentReceipt),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRegistrationDTO(reg))
}

// ListSessionRegistrations returns a session's registrations (staff).
// GET /api/sessions/{id}/registrations
func (h *Handler) ListSessionRegistrations(w http.ResponseWriter, r *http.Request) {
	sessionID := training.SessionID(chi.URLParam(r, "id"))

	regs, err := h.Registrations.ListForSession(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]RegistrationDTO, len(regs))
	for i, reg := range regs {
		dtos[i] = toRegistrationDTO(reg)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListMyRegistrations returns a registrant's registrations with session
// display fields.
// GET /api/registrations?email=ana@example.com
func (h *Handler) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		verr := &training.ValidationError{}
		writeDomainError(w, verr.Add("email", "query parameter is required"))
		return
	}

	views, err := h.Registrations.ListForRegistrant(r.Context(), email)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]RegistrationDTO, len(views))
	for i, v := range views {
		dtos[i] = toRegistrationViewDTO(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRegistration returns a single registration.
// GET /api/registrations/{id}
func (h *Handler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	id := training.RegistrationID(chi.URLParam(r, "id"))

	reg, err := h.Registrations.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationDTO(reg))
}

// ApproveRegistration approves a pending registration, capacity permitting.
// POST /api/registrations/{id}/approve
func (h *Handler) ApproveRegistration(w http.ResponseWriter, r *http.Request) {
	id := training.RegistrationID(chi.URLParam(r, "id"))

	if err := h.Registrations.Approve(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// RejectRegistration rejects a pending registration.
// POST /api/registrations/{id}/reject
func (h *Handler) RejectRegistration(w http.ResponseWriter, r *http.Request) {
	id := training.RegistrationID(chi.URLParam(r, "id"))

	if err := h.Registrations.Reject(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// DeleteRegistration removes a registration from any status.
// DELETE /api/registrations/{id}
func (h *Handler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	id := training.RegistrationID(chi.URLParam(r, "id"))

	if err := h.Registrations.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DOCUMENT HANDLERS
// =============================================================================

// UploadDocument stores a supporting document and returns its reference.
// POST /api/documents (multipart, field "file")
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart body", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field", err)
		return
	}
	defer file.Close()

	ref, err := h.Documents.Store(r.Context(), header.Filename, file)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DocumentDTO{
		Ref: string(ref),
		URL: h.Documents.URLFor(ref),
	})
}

// ServeDocument streams a stored document.
// GET /api/documents/{ref}
func (h *Handler) ServeDocument(w http.ResponseWriter, r *http.Request) {
	ref := training.DocumentRef(chi.URLParam(r, "ref"))

	content, err := h.Documents.Open(r.Context(), ref)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer content.Close()

	contentType := mime.TypeByExtension(filepath.Ext(string(ref)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	io.Copy(w, content)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CompleteElapsed manually triggers the completion sweep.
// POST /api/admin/complete-elapsed
func (h *Handler) CompleteElapsed(w http.ResponseWriter, r *http.Request) {
	n, err := h.Requests.CompleteElapsed(r.Context(), time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"completed": n})
}

// ResetDatabase clears all data (dev/demo only).
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Error = message + ": " + err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain error kinds onto HTTP statuses and the
// uniform error envelope.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *training.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  verr.Error(),
			Kind:   "validation",
			Fields: verr.Fields,
		})
		return
	}

	var status int
	var kind string
	switch {
	case errors.Is(err, training.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, training.ErrSessionArchived):
		status, kind = http.StatusConflict, "session_archived"
	case errors.Is(err, training.ErrCapacityExceeded):
		status, kind = http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, training.ErrAlreadyScheduled):
		status, kind = http.StatusConflict, "already_scheduled"
	case errors.Is(err, training.ErrInvalidState):
		status, kind = http.StatusConflict, "invalid_state"
	default:
		status, kind = http.StatusInternalServerError, "internal"
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}
