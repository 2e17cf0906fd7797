package domain

import (
	"time"
)

// ApplicationStatus tracks the lifecycle of a job application.
type ApplicationStatus string

const (
	ApplicationPending      ApplicationStatus = "pending"
	ApplicationApplied      ApplicationStatus = "applied"
	ApplicationInterviewing ApplicationStatus = "interviewing"
	ApplicationRejected     ApplicationStatus = "rejected"
	ApplicationAccepted     ApplicationStatus = "accepted"
)

// LetterStatus is the cover-letter approval lifecycle, distinct from the
// application status. Submission requires LetterApproved.
type LetterStatus string

const (
	LetterPending  LetterStatus = "pending"
	LetterApproved LetterStatus = "approved"
	LetterRejected LetterStatus = "rejected"
)

// LetterRevision records a superseded cover letter together with the user
// feedback that prompted the rewrite.
type LetterRevision struct {
	Letter    string    `json:"letter"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

// JobApplication is one job found by the search step plus the materials and
// status accumulated while applying to it.
type JobApplication struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	JobTitle       string `json:"job_title"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	JobURL         string `json:"job_url"`
	JobDescription string `json:"job_description"`
	Salary         string `json:"salary,omitempty"`

	// Long-form fields populated by the detail fetch step.
	DetailedDescription string   `json:"detailed_description,omitempty"`
	Requirements        []string `json:"requirements,omitempty"`
	Responsibilities    []string `json:"responsibilities,omitempty"`
	Skills              []string `json:"skills,omitempty"`

	CoverLetter       string           `json:"cover_letter"`
	CoverLetterStatus LetterStatus     `json:"cover_letter_status"`
	LetterHistory     []LetterRevision `json:"letter_history,omitempty"`

	Status    ApplicationStatus `json:"status"`
	AppliedAt *time.Time        `json:"applied_at,omitempty"`

	NetworkingContacts []NetworkingContact `json:"networking_contacts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DetailText returns the richest available description for letter
// generation: the fetched detailed description when present, otherwise the
// short description from the search listing.
func (a *JobApplication) DetailText() string {
	if a.DetailedDescription != "" {
		return a.DetailedDescription
	}
	return a.JobDescription
}
