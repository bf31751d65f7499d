/*
Package catalog defines the fixed major-service categories and the canned
training programs offered under each.

PURPOSE:
  The portal's service categories are a closed set; training programs are
  catalog keys referenced by requests and used to derive session titles
  when a request is converted into a session.

  The catalog is static by design: adding a program is a code change,
  which keeps request validation and title derivation in one place.

SEE ALSO:
  - training/requests.go: Validates training_program against this catalog
  - training/scheduler.go: Derives session titles from program names
*/
package catalog

// Service is a major service category.
type Service struct {
	Key  string
	Name string
}

// Program is a training program offered under a service.
type Program struct {
	Key        string
	Name       string
	ServiceKey string
	// TypicalDays is the usual duration used for demo seeds; requests
	// carry their own preferred date range.
	TypicalDays int
}

// Services is the closed set of major service categories.
var Services = []Service{
	{Key: "health_services", Name: "Health Services"},
	{Key: "safety_services", Name: "Safety Services"},
	{Key: "blood_services", Name: "Blood Services"},
	{Key: "disaster_management", Name: "Disaster Management Services"},
	{Key: "welfare_services", Name: "Welfare Services"},
	{Key: "youth_services", Name: "Red Cross Youth"},
}

var programs = []Program{
	{Key: "first_aid_basic", Name: "Basic First Aid", ServiceKey: "safety_services", TypicalDays: 2},
	{Key: "first_aid_standard", Name: "Standard First Aid with CPR", ServiceKey: "safety_services", TypicalDays: 3},
	{Key: "bls_cpr", Name: "Basic Life Support - CPR/AED", ServiceKey: "health_services", TypicalDays: 1},
	{Key: "community_health", Name: "Community Health Education", ServiceKey: "health_services", TypicalDays: 2},
	{Key: "blood_donor_orientation", Name: "Voluntary Blood Donor Orientation", ServiceKey: "blood_services", TypicalDays: 1},
	{Key: "disaster_preparedness", Name: "Disaster Preparedness and Response", ServiceKey: "disaster_management", TypicalDays: 2},
	{Key: "emergency_response", Name: "Community Emergency Response Team", ServiceKey: "disaster_management", TypicalDays: 3},
	{Key: "psychosocial_support", Name: "Psychosocial Support Orientation", ServiceKey: "welfare_services", TypicalDays: 1},
	{Key: "welfare_casework", Name: "Welfare Casework Fundamentals", ServiceKey: "welfare_services", TypicalDays: 2},
	{Key: "youth_leadership", Name: "Youth Leadership Development", ServiceKey: "youth_services", TypicalDays: 2},
}

// ServiceByKey looks up a major service category.
func ServiceByKey(key string) (Service, bool) {
	for _, s := range Services {
		if s.Key == key {
			return s, true
		}
	}
	return Service{}, false
}

// KnownService reports whether key is a valid major service.
func KnownService(key string) bool {
	_, ok := ServiceByKey(key)
	return ok
}

// ProgramByKey looks up a training program.
func ProgramByKey(key string) (Program, bool) {
	for _, p := range programs {
		if p.Key == key {
			return p, true
		}
	}
	return Program{}, false
}

// KnownProgram reports whether key is a valid program.
func KnownProgram(key string) bool {
	_, ok := ProgramByKey(key)
	return ok
}

// ProgramsForService returns the programs offered under a service.
func ProgramsForService(serviceKey string) []Program {
	var out []Program
	for _, p := range programs {
		if p.ServiceKey == serviceKey {
			out = append(out, p)
		}
	}
	return out
}

// Programs returns the full catalog.
func Programs() []Program {
	out := make([]Program, len(programs))
	copy(out, programs)
	return out
}
