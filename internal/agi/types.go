// Package agi provides the browser-automation executor collaborator: a
// remote agent that drives a browser session to search jobs, submit
// applications and perform networking outreach.
package agi

import (
	"context"

	"jobagent/internal/domain"
)

// Task is the fixed vocabulary of browser-automation tasks.
type Task string

const (
	TaskSearchJobs            Task = "search_jobs"
	TaskGetJobDetails         Task = "get_job_details"
	TaskApplyToJob            Task = "apply_to_job"
	TaskSearchPeople          Task = "search_people"
	TaskSendMessage           Task = "send_message"
	TaskSendConnectionRequest Task = "send_connection_request"
	TaskCheckMessages         Task = "check_messages"
	TaskFilterAndSendOutreach Task = "filter_and_send_outreach"
	TaskFindAndMessageAll     Task = "find_and_message_all"
)

// TaskData carries the structured context interpolated into the agent
// instructions. Only fields relevant to the task are set.
type TaskData struct {
	Position     string
	Locations    []string
	Company      string
	Limit        int
	Message      string
	Note         string
	CoverLetter  string
	FullName     string
	Email        string
	Phone        string
	ContactCount int
}

// Request describes one browser-automation task execution.
type Request struct {
	URL          string
	Task         Task
	Instructions string
	Data         *TaskData
}

// JobListing is one job recovered from a search reply.
type JobListing struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Salary       string   `json:"salary,omitempty"`
	URL          string   `json:"url,omitempty"`
	Description  string   `json:"description,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

// JobDetails is the long-form posting content recovered by a detail fetch.
type JobDetails struct {
	DetailedDescription string
	Requirements        []string
	Responsibilities    []string
	Skills              []string
}

// Result is the structured payload of a completed task. Fields are populated
// according to the task that produced them.
type Result struct {
	Status string

	Jobs          []JobListing    // search_jobs
	Details       *JobDetails     // get_job_details
	ApplicationID string          // apply_to_job
	People        []domain.Person // search_people, find_and_message_all
	Sent          bool            // send_message, send_connection_request
	MessagesSent  int             // filter_and_send_outreach

	HasNewMessages bool   // check_messages
	LatestMessage  string // check_messages
}

// Executor runs browser-automation tasks to completion. Implementations
// block until the remote session finishes or the configured ceiling expires.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}
