/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - Date/decimal wire formats independent of internal types
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

WIRE FORMATS:
  Dates travel as "2006-01-02" strings, timestamps as RFC3339, fees as
  decimal strings ("350.00"). Parsing failures surface as validation
  errors on the offending field, never as opaque 400s.

SEE ALSO:
  - handlers.go: Uses these types
  - training/: Domain types these map onto
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lifeline/training-engine/training"
)

const dateFormat = "2006-01-02"

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error envelope. Kind is a stable,
// machine-readable discriminator; Fields is populated for validation
// failures only and enumerates every violation.
type ErrorResponse struct {
	Error  string                `json:"error"`
	Kind   string                `json:"kind,omitempty"`
	Fields []training.FieldError `json:"fields,omitempty"`
}

// =============================================================================
// TRAINING REQUESTS
// =============================================================================

// SubmitRequestRequest is the citizen-facing submission body.
type SubmitRequestRequest struct {
	ServiceType     string `json:"service_type"`
	TrainingProgram string `json:"training_program"`
	TrainingType    string `json:"training_type"`
	Urgency         string `json:"urgency"`

	PreferredStartDate string `json:"preferred_start_date"`
	PreferredEndDate   string `json:"preferred_end_date"`
	PreferredStartTime string `json:"preferred_start_time"`
	PreferredEndTime   string `json:"preferred_end_time"`

	ParticipantCount int    `json:"participant_count"`
	OrganizationName string `json:"organization_name"`
	ContactPerson    string `json:"contact_person"`
	ContactNumber    string `json:"contact_number"`
	Email            string `json:"email"`

	NotificationPrefs []string `json:"notification_preferences"`

	LocationPreference     string `json:"location_preference"`
	VenueRequirements      string `json:"venue_requirements"`
	EquipmentNeeded        string `json:"equipment_needed"`
	Purpose                string `json:"purpose"`
	AdditionalRequirements string `json:"additional_requirements"`

	ValidID         string   `json:"valid_id"`
	ParticipantList string   `json:"participant_list"`
	AdditionalDocs  []string `json:"additional_docs"`
}

// ReviewRequestRequest is the staff decision body.
type ReviewRequestRequest struct {
	Decision   string `json:"decision"` // "approved" or "rejected"
	AdminNotes string `json:"admin_notes"`
}

// RequestDTO represents a training request in API responses.
type RequestDTO struct {
	ID              string `json:"id"`
	ServiceType     string `json:"service_type"`
	TrainingProgram string `json:"training_program"`
	TrainingType    string `json:"training_type,omitempty"`
	Urgency         string `json:"urgency"`

	PreferredStartDate string `json:"preferred_start_date"`
	PreferredEndDate   string `json:"preferred_end_date"`
	PreferredStartTime string `json:"preferred_start_time,omitempty"`
	PreferredEndTime   string `json:"preferred_end_time,omitempty"`
	DurationDays       int    `json:"duration_days"`

	ParticipantCount int    `json:"participant_count"`
	OrganizationName string `json:"organization_name,omitempty"`
	ContactPerson    string `json:"contact_person"`
	ContactNumber    string `json:"contact_number"`
	Email            string `json:"email"`

	NotificationPrefs []string `json:"notification_preferences,omitempty"`

	LocationPreference     string `json:"location_preference,omitempty"`
	VenueRequirements      string `json:"venue_requirements,omitempty"`
	EquipmentNeeded        string `json:"equipment_needed,omitempty"`
	Purpose                string `json:"purpose,omitempty"`
	AdditionalRequirements string `json:"additional_requirements,omitempty"`

	ValidID         string   `json:"valid_id,omitempty"`
	ParticipantList string   `json:"participant_list,omitempty"`
	AdditionalDocs  []string `json:"additional_docs,omitempty"`

	AdminNotes       string  `json:"admin_notes,omitempty"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
	ReviewedDate     *string `json:"reviewed_date,omitempty"`
	CreatedSessionID *string `json:"created_session_id,omitempty"`
}

func toRequestDTO(r *training.TrainingRequest) RequestDTO {
	dto := RequestDTO{
		ID:                     string(r.ID),
		ServiceType:            r.ServiceType,
		TrainingProgram:        r.TrainingProgram,
		TrainingType:           r.TrainingType,
		Urgency:                string(r.Urgency),
		PreferredStartDate:     r.PreferredStartDate.Format(dateFormat),
		PreferredEndDate:       r.PreferredEndDate.Format(dateFormat),
		PreferredStartTime:     r.PreferredStartTime,
		PreferredEndTime:       r.PreferredEndTime,
		DurationDays:           r.DurationDays,
		ParticipantCount:       r.ParticipantCount,
		OrganizationName:       r.OrganizationName,
		ContactPerson:          r.ContactPerson,
		ContactNumber:          r.ContactNumber,
		Email:                  r.Email,
		LocationPreference:     r.LocationPreference,
		VenueRequirements:      r.VenueRequirements,
		EquipmentNeeded:        r.EquipmentNeeded,
		Purpose:                r.Purpose,
		AdditionalRequirements: r.AdditionalRequirements,
		ValidID:                string(r.ValidID),
		ParticipantList:        string(r.ParticipantList),
		AdminNotes:             r.AdminNotes,
		Status:                 string(r.Status),
		CreatedAt:              r.CreatedAt.Format(time.RFC3339),
	}
	for _, ch := range r.NotificationPrefs {
		dto.NotificationPrefs = append(dto.NotificationPrefs, string(ch))
	}
	for _, doc := range r.AdditionalDocs {
		dto.AdditionalDocs = append(dto.AdditionalDocs, string(doc))
	}
	if r.ReviewedDate != nil {
		s := r.ReviewedDate.Format(time.RFC3339)
		dto.ReviewedDate = &s
	}
	if r.CreatedSessionID != nil {
		s := string(*r.CreatedSessionID)
		dto.CreatedSessionID = &s
	}
	return dto
}

// toRequestSubmission parses the wire formats into a domain submission.
func toRequestSubmission(req SubmitRequestRequest) (training.RequestSubmission, *training.ValidationError) {
	verr := &training.ValidationError{}

	sub := training.RequestSubmission{
		ServiceType:            req.ServiceType,
		TrainingProgram:        req.TrainingProgram,
		TrainingType:           req.TrainingType,
		Urgency:                training.Urgency(req.Urgency),
		PreferredStartTime:     req.PreferredStartTime,
		PreferredEndTime:       req.PreferredEndTime,
		ParticipantCount:       req.ParticipantCount,
		OrganizationName:       req.OrganizationName,
		ContactPerson:          req.ContactPerson,
		ContactNumber:          req.ContactNumber,
		Email:                  req.Email,
		LocationPreference:     req.LocationPreference,
		VenueRequirements:      req.VenueRequirements,
		EquipmentNeeded:        req.EquipmentNeeded,
		Purpose:                req.Purpose,
		AdditionalRequirements: req.AdditionalRequirements,
		ValidID:                training.DocumentRef(req.ValidID),
		ParticipantList:        training.DocumentRef(req.ParticipantList),
	}

	sub.PreferredStartDate = parseDate(req.PreferredStartDate, "preferred_start_date", verr)
	if req.PreferredEndDate != "" {
		sub.PreferredEndDate = parseDate(req.PreferredEndDate, "preferred_end_date", verr)
	}
	for _, ch := range req.NotificationPrefs {
		sub.NotificationPrefs = append(sub.NotificationPrefs, training.NotificationChannel(ch))
	}
	for _, doc := range req.AdditionalDocs {
		sub.AdditionalDocs = append(sub.AdditionalDocs, training.DocumentRef(doc))
	}

	if verr.Has() {
		return sub, verr
	}
	return sub, nil
}

// =============================================================================
// TRAINING SESSIONS
// =============================================================================

// SessionRequest is the staff-facing create/update body.
type SessionRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	MajorService string `json:"major_service"`

	SessionDate    string `json:"session_date"`
	SessionEndDate string `json:"session_end_date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`

	Venue    string `json:"venue"`
	Capacity int    `json:"capacity"`
	Fee      string `json:"fee"`

	Requirements          string `json:"requirements"`
	Instructor            string `json:"instructor"`
	InstructorBio         string `json:"instructor_bio"`
	InstructorCredentials string `json:"instructor_credentials"`
}

// SessionDTO represents a session with derived fields in API responses.
type SessionDTO struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	MajorService string `json:"major_service"`

	SessionDate    string `json:"session_date"`
	SessionEndDate string `json:"session_end_date"`
	StartTime      string `json:"start_time,omitempty"`
	EndTime        string `json:"end_time,omitempty"`

	Venue    string `json:"venue"`
	Capacity int    `json:"capacity"`
	Fee      string `json:"fee"`

	Requirements          string `json:"requirements,omitempty"`
	Instructor            string `json:"instructor,omitempty"`
	InstructorBio         string `json:"instructor_bio,omitempty"`
	InstructorCredentials string `json:"instructor_credentials,omitempty"`

	Archived  bool   `json:"archived"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	ApprovedCount int  `json:"approved_count"`
	PendingCount  int  `json:"pending_count"`
	DurationDays  int  `json:"duration_days"`
	IsPast        bool `json:"is_past"`
	IsUpcoming    bool `json:"is_upcoming"`
	IsFull        bool `json:"is_full"`
}

func toSessionDTO(v *training.SessionView) SessionDTO {
	return SessionDTO{
		ID:                    string(v.ID),
		Title:                 v.Title,
		Description:           v.Description,
		MajorService:          v.MajorService,
		SessionDate:           v.SessionDate.Format(dateFormat),
		SessionEndDate:        v.SessionEndDate.Format(dateFormat),
		StartTime:             v.StartTime,
		EndTime:               v.EndTime,
		Venue:                 v.Venue,
		Capacity:              v.Capacity,
		Fee:                   v.Fee.StringFixed(2),
		Requirements:          v.Requirements,
		Instructor:            v.Instructor,
		InstructorBio:         v.InstructorBio,
		InstructorCredentials: v.InstructorCredentials,
		Archived:              v.Archived,
		CreatedAt:             v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             v.UpdatedAt.Format(time.RFC3339),
		ApprovedCount:         v.ApprovedCount,
		PendingCount:          v.PendingCount,
		DurationDays:          v.DurationDays,
		IsPast:                v.IsPast,
		IsUpcoming:            v.IsUpcoming,
		IsFull:                v.IsFull,
	}
}

// toSessionInput parses the wire formats; date and fee parse failures
// are collected so the caller sees every problem at once.
func toSessionInput(req SessionRequest) (training.SessionInput, *training.ValidationError) {
	verr := &training.ValidationError{}

	in := training.SessionInput{
		Title:                 req.Title,
		Description:           req.Description,
		MajorService:          req.MajorService,
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		Venue:                 req.Venue,
		Capacity:              req.Capacity,
		Requirements:          req.Requirements,
		Instructor:            req.Instructor,
		InstructorBio:         req.InstructorBio,
		InstructorCredentials: req.InstructorCredentials,
	}

	in.SessionDate = parseDate(req.SessionDate, "session_date", verr)
	if req.SessionEndDate != "" {
		in.SessionEndDate = parseDate(req.SessionEndDate, "session_end_date", verr)
	}
	if req.Fee != "" {
		fee, err := decimal.NewFromString(req.Fee)
		if err != nil {
			verr.Add("fee", "is not a valid decimal amount")
		} else {
			in.Fee = fee
		}
	}

	if verr.Has() {
		return in, verr
	}
	return in, nil
}

// =============================================================================
// REGISTRATIONS
// =============================================================================

// RegisterRequest is the trainee-facing registration body. The session
// id comes from the URL.
type RegisterRequest struct {
	RegistrationType string `json:"registration_type"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Age              int    `json:"age"`
	Location         string `json:"location"`
	RCYStatus        string `json:"rcy_status"`
	OrganizationName string `json:"organization_name"`
	PaymentMode      string `json:"payment_mode"`
	ValidID          string `json:"valid_id"`
	Requirements     string `json:"requirements"`
	PaymentReceipt   string `json:"payment_receipt"`
}

// RegistrationDTO represents a registration in API responses.
type RegistrationDTO struct {
	ID               string `json:"id"`
	SessionID        string `json:"session_id"`
	RegistrationType string `json:"registration_type"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Age              int    `json:"age,omitempty"`
	Location         string `json:"location"`
	RCYStatus        string `json:"rcy_status,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	PaymentMode      string `json:"payment_mode,omitempty"`
	ValidID          string `json:"valid_id,omitempty"`
	Requirements     string `json:"requirements,omitempty"`
	PaymentReceipt   string `json:"payment_receipt,omitempty"`
	Status           string `json:"status"`
	RegistrationDate string `json:"registration_date"`

	// Populated on "my registrations" listings only.
	SessionTitle string `json:"session_title,omitempty"`
	SessionDate  string `json:"session_date,omitempty"`
	SessionVenue string `json:"session_venue,omitempty"`
	SessionFee   string `json:"session_fee,omitempty"`
}

func toRegistrationDTO(r *training.SessionRegistration) RegistrationDTO {
	return RegistrationDTO{
		ID:               string(r.ID),
		SessionID:        string(r.SessionID),
		RegistrationType: string(r.Type),
		FullName:         r.FullName,
		Email:            r.Email,
		Age:              r.Age,
		Location:         r.Location,
		RCYStatus:        r.RCYStatus,
		OrganizationName: r.OrganizationName,
		PaymentMode:      r.PaymentMode,
		ValidID:          string(r.ValidID),
		Requirements:     string(r.Requirements),
		PaymentReceipt:   string(r.PaymentReceipt),
		Status:           string(r.Status),
		RegistrationDate: r.RegistrationDate.Format(time.RFC3339),
	}
}

func toRegistrationViewDTO(v *training.RegistrationView) RegistrationDTO {
	dto := toRegistrationDTO(&v.SessionRegistration)
	dto.SessionTitle = v.SessionTitle
	if !v.SessionDate.IsZero() {
		dto.SessionDate = v.SessionDate.Format(dateFormat)
	}
	dto.SessionVenue = v.SessionVenue
	dto.SessionFee = v.SessionFee.StringFixed(2)
	return dto
}

// =============================================================================
// DOCUMENTS, SCENARIOS
// =============================================================================

// DocumentDTO is the upload response: the opaque reference plus the
// serving URL.
type DocumentDTO struct {
	Ref string `json:"ref"`
	URL string `json:"url"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDate(s, field string, verr *training.ValidationError) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		verr.Add(field, "must be a date in YYYY-MM-DD format")
		return time.Time{}
	}
	return t
}
