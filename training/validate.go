/*
validate.go - Input validation for submissions

PURPOSE:
  Validates the three write-path inputs (request submission, session
  input, registration submission) and converts every violation into a
  ValidationError that enumerates all violated fields at once, so the
  caller can render the complete error list in a single round trip.

  Field-level rules are declared as struct tags; cross-field rules
  (organization name for five or more participants, date ordering,
  catalog membership) are struct-level validations.

FIELD NAMES:
  Violations are reported under the json field names, which match the
  API contract, so a field error maps directly onto a form input.
*/
package training

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lifeline/training-engine/catalog"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report violations under json field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(validateRequestSubmission, RequestSubmission{})
	v.RegisterStructValidation(validateSessionInput, SessionInput{})
	v.RegisterStructValidation(validateRegistrationSubmission, RegistrationSubmission{})
	return v
}

// checkStruct runs the validator and converts the result into a
// ValidationError, or nil when the input is clean.
func checkStruct(v any) *ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verr := &ValidationError{}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), messageFor(fe))
		}
		return verr
	}
	return verr.Add("", err.Error())
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gte":
		return "must be at least " + fe.Param()
	case "org_required":
		return "is required for 5 or more participants"
	case "org_type_required":
		return "is required for organization registrations"
	case "unknown_service":
		return "is not a known major service"
	case "unknown_program":
		return "is not a known training program"
	case "bad_urgency":
		return "must be one of low, normal, high, urgent"
	case "bad_registration_type":
		return "must be individual or organization"
	case "ends_before_start":
		return "must not be before the start date"
	case "negative_fee":
		return "must not be negative"
	default:
		return "is invalid"
	}
}

// =============================================================================
// STRUCT-LEVEL RULES
// =============================================================================

func validateRequestSubmission(sl validator.StructLevel) {
	s := sl.Current().Interface().(RequestSubmission)

	if s.ParticipantCount >= 5 && strings.TrimSpace(s.OrganizationName) == "" {
		sl.ReportError(s.OrganizationName, "organization_name", "OrganizationName", "org_required", "")
	}
	if s.Urgency != "" && !s.Urgency.Valid() {
		sl.ReportError(s.Urgency, "urgency", "Urgency", "bad_urgency", "")
	}
	if s.ServiceType != "" && !catalog.KnownService(s.ServiceType) {
		sl.ReportError(s.ServiceType, "service_type", "ServiceType", "unknown_service", "")
	}
	if s.TrainingProgram != "" && !catalog.KnownProgram(s.TrainingProgram) {
		sl.ReportError(s.TrainingProgram, "training_program", "TrainingProgram", "unknown_program", "")
	}
	if !s.PreferredEndDate.IsZero() && !s.PreferredStartDate.IsZero() &&
		s.PreferredEndDate.Before(s.PreferredStartDate) {
		sl.ReportError(s.PreferredEndDate, "preferred_end_date", "PreferredEndDate", "ends_before_start", "")
	}
}

func validateSessionInput(sl validator.StructLevel) {
	s := sl.Current().Interface().(SessionInput)

	if s.MajorService != "" && !catalog.KnownService(s.MajorService) {
		sl.ReportError(s.MajorService, "major_service", "MajorService", "unknown_service", "")
	}
	if !s.SessionEndDate.IsZero() && !s.SessionDate.IsZero() &&
		s.SessionEndDate.Before(s.SessionDate) {
		sl.ReportError(s.SessionEndDate, "session_end_date", "SessionEndDate", "ends_before_start", "")
	}
	if s.Fee.IsNegative() {
		sl.ReportError(s.Fee, "fee", "Fee", "negative_fee", "")
	}
}

func validateRegistrationSubmission(sl validator.StructLevel) {
	s := sl.Current().Interface().(RegistrationSubmission)

	if s.Type != "" && s.Type != RegistrationIndividual && s.Type != RegistrationOrganization {
		sl.ReportError(s.Type, "registration_type", "Type", "bad_registration_type", "")
	}
	if s.Type == RegistrationOrganization && strings.TrimSpace(s.OrganizationName) == "" {
		sl.ReportError(s.OrganizationName, "organization_name", "OrganizationName", "org_type_required", "")
	}
}
