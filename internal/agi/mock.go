package agi

import (
	"context"
	"log/slog"

	"jobagent/internal/domain"
)

// MockExecutor returns deterministic canned payloads per task for offline
// development and tests. Enabled via config instead of a live endpoint.
type MockExecutor struct {
	logger *slog.Logger
}

var _ Executor = (*MockExecutor)(nil)

// NewMockExecutor creates a mock Executor.
func NewMockExecutor(logger *slog.Logger) *MockExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockExecutor{logger: logger}
}

// Execute returns the canned payload for the requested task.
func (m *MockExecutor) Execute(_ context.Context, req Request) (*Result, error) {
	m.logger.Info("mock agent task", "task", req.Task, "url", req.URL)

	result := &Result{Status: "completed"}
	switch req.Task {
	case TaskSearchJobs:
		result.Jobs = mockJobs()
	case TaskGetJobDetails:
		result.Details = mockJobDetails()
	case TaskApplyToJob:
		result.ApplicationID = "app_mock_1"
	case TaskSearchPeople, TaskFindAndMessageAll:
		result.People = mockPeople(req)
	case TaskSendMessage, TaskSendConnectionRequest:
		result.Sent = true
	case TaskFilterAndSendOutreach:
		result.MessagesSent = 1
		if req.Data != nil && req.Data.ContactCount > 0 {
			result.MessagesSent = req.Data.ContactCount
		}
	case TaskCheckMessages:
		result.HasNewMessages = true
		result.LatestMessage = "Hi! I'd be happy to chat. How about Tuesday at 2pm?"
	}
	return result, nil
}

func mockJobs() []JobListing {
	return []JobListing{
		{
			Title:        "Senior Software Engineer",
			Company:      "Lattice Systems",
			Location:     "San Francisco, CA",
			URL:          "https://networkin.example/platform/jobs/123",
			Description:  "We are looking for a senior engineer to help build reliable distributed systems...",
			Requirements: []string{"Go", "Distributed Systems", "5+ years experience"},
		},
		{
			Title:        "Machine Learning Engineer",
			Company:      "Veridian Labs",
			Location:     "San Francisco, CA",
			URL:          "https://networkin.example/platform/jobs/456",
			Description:  "Join our ML infrastructure team...",
			Requirements: []string{"Python", "PyTorch", "Distributed Systems"},
		},
	}
}

func mockJobDetails() *JobDetails {
	return &JobDetails{
		DetailedDescription: "We're looking for a talented engineer to join our team. You'll work on core infrastructure and collaborate with experienced engineers.",
		Requirements: []string{
			"Bachelor's degree in Computer Science or related field",
			"5+ years of professional software development experience",
			"Strong understanding of algorithms and data structures",
		},
		Responsibilities: []string{
			"Design and implement scalable backend services",
			"Collaborate with cross-functional teams",
			"Participate in code reviews and technical discussions",
		},
		Skills: []string{"Go", "Distributed Systems", "Cloud platforms", "Docker"},
	}
}

func mockPeople(req Request) []domain.Person {
	limit := 3
	if req.Data != nil && req.Data.Limit > 0 {
		limit = req.Data.Limit
	}
	people := []domain.Person{
		{
			Name:             "Sarah Chen",
			Title:            "Staff Engineer",
			ConnectionDegree: domain.DegreeFirst,
			ProfileURL:       "https://networkin.example/platform/profile/sarahchen",
			Description:      "Infrastructure | Stanford CS",
		},
		{
			Name:             "Mike Johnson",
			Title:            "Engineering Manager",
			ConnectionDegree: domain.DegreeSecond,
			ProfileURL:       "https://networkin.example/platform/profile/mikejohnson",
			Description:      "Building developer tools",
		},
		{
			Name:             "Emily Rodriguez",
			Title:            "Senior Software Engineer",
			ConnectionDegree: domain.DegreeFirst,
			ProfileURL:       "https://networkin.example/platform/profile/emilyrodriguez",
			Description:      "Platform engineering",
		},
	}
	if limit < len(people) {
		people = people[:limit]
	}
	return people
}
