// Package domain contains core domain types for the JobAgent application.
package domain

import (
	"time"
)

// Profile field names used when reporting which search preferences are
// still missing. Order matters: it is the priority in which the
// conversation asks for them.
const (
	FieldDesiredPosition = "desiredPosition"
	FieldLocations       = "locations"
	FieldCurrentLocation = "currentLocation"
)

// WorkExperience is a single resume work-history entry, ordered as extracted.
type WorkExperience struct {
	Company     string   `json:"company"`
	Title       string   `json:"title"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"` // "YYYY-MM" or "Present"
	Description string   `json:"description"`
	Highlights  []string `json:"highlights,omitempty"`
}

// Education is a single resume education entry.
type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationDate string `json:"graduation_date"`
	GPA            string `json:"gpa,omitempty"`
}

// Profile holds a candidate's identity, resume-derived data and job-search
// preferences. Preferences are filled incrementally during the
// profile-collection conversation stage.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"full_name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	WorkExperience []WorkExperience `json:"work_experience,omitempty"`
	Education      []Education      `json:"education,omitempty"`
	Skills         []string         `json:"skills,omitempty"`

	DesiredPosition string   `json:"desired_position"`
	Locations       []string `json:"locations,omitempty"`
	CurrentLocation string   `json:"current_location"`

	ResumeURL string    `json:"resume_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MissingPreferences returns the search-preference fields that are still
// empty, in the priority order the conversation collects them.
func (p *Profile) MissingPreferences() []string {
	var missing []string
	if p.DesiredPosition == "" {
		missing = append(missing, FieldDesiredPosition)
	}
	if len(p.Locations) == 0 {
		missing = append(missing, FieldLocations)
	}
	if p.CurrentLocation == "" {
		missing = append(missing, FieldCurrentLocation)
	}
	return missing
}

// SearchReady reports whether all three search preferences are present,
// the gate for leaving the profile-collection stage.
func (p *Profile) SearchReady() bool {
	return len(p.MissingPreferences()) == 0
}
