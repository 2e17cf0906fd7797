package domain

import (
	"time"
)

// ConnectionDegree is the social-graph distance to a person.
type ConnectionDegree string

const (
	DegreeFirst  ConnectionDegree = "1st"
	DegreeSecond ConnectionDegree = "2nd"
	DegreeThird  ConnectionDegree = "3rd"
)

// OutreachType is how a person is contacted. It is derived solely from the
// connection degree and must not be set any other way.
type OutreachType string

const (
	OutreachMessage           OutreachType = "message"
	OutreachConnectionRequest OutreachType = "connection_request"
)

// Outreach returns the outreach mechanism for this degree: direct messages
// for 1st-degree connections, connection requests for everyone else.
func (d ConnectionDegree) Outreach() OutreachType {
	if d == DegreeFirst {
		return OutreachMessage
	}
	return OutreachConnectionRequest
}

// ContactStatus tracks whether an outreach got a reply.
type ContactStatus string

const (
	ContactPending    ContactStatus = "pending"
	ContactResponded  ContactStatus = "responded"
	ContactNoResponse ContactStatus = "no_response"
)

// Person is an unpersisted people-search result. The slice index from the
// search reply is the handle users pick contacts by, so order is preserved.
type Person struct {
	Name             string           `json:"name"`
	Title            string           `json:"title"`
	ConnectionDegree ConnectionDegree `json:"connection_degree"`
	ProfileURL       string           `json:"profile_url,omitempty"`
	Description      string           `json:"description,omitempty"`
}

// NetworkingContact is a person we actually reached out to for a specific
// job application. Created at send time; only the response check mutates it.
type NetworkingContact struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`

	Name             string           `json:"name"`
	Title            string           `json:"title"`
	Company          string           `json:"company"`
	ConnectionDegree ConnectionDegree `json:"connection_degree"`
	ProfileURL       string           `json:"profile_url"`
	Description      string           `json:"description,omitempty"`

	OutreachType OutreachType `json:"outreach_type"`
	MessageText  string       `json:"message_text"`
	ThreadURL    string       `json:"thread_url,omitempty"`

	Status        ContactStatus `json:"status"`
	SentAt        time.Time     `json:"sent_at"`
	LastCheckedAt *time.Time    `json:"last_checked_at,omitempty"`
	ResponseText  string        `json:"response_text,omitempty"`
}
