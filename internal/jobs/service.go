// Package jobs implements the job application pipeline: search, detail
// fetch, cover letter lifecycle and submission.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobagent/internal/agi"
	"jobagent/internal/domain"
	"jobagent/internal/letters"
	"jobagent/internal/notify"
	"jobagent/internal/store"
)

// DefaultSearchLimit caps a job search when the caller does not specify one.
const DefaultSearchLimit = 5

// Service orchestrates the application lifecycle for one platform.
type Service struct {
	repo     store.Repository
	executor agi.Executor
	letters  *letters.Generator
	notifier notify.Notifier
	baseURL  string
	logger   *slog.Logger
}

// NewService creates a job pipeline service. baseURL is the networking
// platform root the browser agent is pointed at.
func NewService(repo store.Repository, executor agi.Executor, gen *letters.Generator, notifier notify.Notifier, baseURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Service{
		repo:     repo,
		executor: executor,
		letters:  gen,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// SearchJobs runs a platform job search for the user's desired position and
// locations and records every hit as a pending application. The returned
// slice preserves the search order, which review indexes are based on.
func (s *Service) SearchJobs(ctx context.Context, userID string, limit int) ([]*domain.JobApplication, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	if profile.DesiredPosition == "" {
		return nil, fmt.Errorf("search jobs: profile has no desired position: %w", domain.ErrInvalidState)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	result, err := s.executor.Execute(ctx, agi.Request{
		URL:  s.baseURL + "/jobs",
		Task: agi.TaskSearchJobs,
		Instructions: fmt.Sprintf(
			"Search for %q jobs in %s. For each job found, report one line formatted as: Title - Company - Location - Salary (if shown). Find up to %d jobs.",
			profile.DesiredPosition, strings.Join(profile.Locations, ", "), limit),
		Data: &agi.TaskData{
			Position:  profile.DesiredPosition,
			Locations: profile.Locations,
			Limit:     limit,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}

	now := time.Now()
	apps := make([]*domain.JobApplication, 0, len(result.Jobs))
	for _, job := range result.Jobs {
		app := &domain.JobApplication{
			ID:                uuid.NewString(),
			UserID:            userID,
			JobTitle:          job.Title,
			Company:           job.Company,
			Location:          job.Location,
			JobURL:            job.URL,
			JobDescription:    job.Description,
			Salary:            job.Salary,
			Requirements:      job.Requirements,
			Status:            domain.ApplicationPending,
			CoverLetterStatus: domain.LetterPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.repo.UpsertApplication(ctx, app); err != nil {
			return nil, fmt.Errorf("search jobs: save %s at %s: %w", app.JobTitle, app.Company, err)
		}
		apps = append(apps, app)
	}

	s.logger.Info("job search completed", "user_id", userID, "position", profile.DesiredPosition, "found", len(apps))
	return apps, nil
}

// FetchJobDetails asks the agent to open the posting and pull the long-form
// sections. An unparseable reply leaves the application unchanged; the
// search-time description remains the fallback for letter generation.
func (s *Service) FetchJobDetails(ctx context.Context, applicationID string) (*domain.JobApplication, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("fetch job details: %w", err)
	}

	result, err := s.executor.Execute(ctx, agi.Request{
		URL:  app.JobURL,
		Task: agi.TaskGetJobDetails,
		Instructions: fmt.Sprintf(
			"Open the job posting for %s at %s and report its content in sections labeled exactly ABOUT THE JOB:, REQUIREMENTS:, RESPONSIBILITIES: and SKILLS:. Use bullet points inside each section.",
			app.JobTitle, app.Company),
		Data: &agi.TaskData{Company: app.Company},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch job details for %s: %w", applicationID, err)
	}

	if result.Details == nil {
		s.logger.Warn("job detail fetch returned nothing usable", "application_id", applicationID)
		return app, nil
	}

	if result.Details.DetailedDescription != "" {
		app.DetailedDescription = result.Details.DetailedDescription
	}
	if len(result.Details.Requirements) > 0 {
		app.Requirements = result.Details.Requirements
	}
	if len(result.Details.Responsibilities) > 0 {
		app.Responsibilities = result.Details.Responsibilities
	}
	if len(result.Details.Skills) > 0 {
		app.Skills = result.Details.Skills
	}
	app.UpdatedAt = time.Now()

	if err := s.repo.UpsertApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("fetch job details: save %s: %w", applicationID, err)
	}
	return app, nil
}

// GenerateCoverLetter writes (or, with feedback, rewrites) the cover letter
// for an application. A rewrite archives the superseded letter together with
// the feedback that prompted it, and always resets approval to pending.
func (s *Service) GenerateCoverLetter(ctx context.Context, applicationID, feedback string) (*domain.JobApplication, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("generate cover letter: %w", err)
	}
	profile, err := s.repo.GetProfile(ctx, app.UserID)
	if err != nil {
		return nil, fmt.Errorf("generate cover letter: %w", err)
	}

	letter, err := s.letters.Generate(ctx, profile, app, feedback)
	if err != nil {
		return nil, err
	}

	if app.CoverLetter != "" {
		app.LetterHistory = append(app.LetterHistory, domain.LetterRevision{
			Letter:    app.CoverLetter,
			Feedback:  feedback,
			CreatedAt: time.Now(),
		})
	}
	app.CoverLetter = letter
	app.CoverLetterStatus = domain.LetterPending
	app.UpdatedAt = time.Now()

	if err := s.repo.UpsertApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("generate cover letter: save %s: %w", applicationID, err)
	}
	return app, nil
}

// ApproveCoverLetter marks the current letter approved, unlocking submission.
func (s *Service) ApproveCoverLetter(ctx context.Context, applicationID string) (*domain.JobApplication, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("approve cover letter: %w", err)
	}
	if app.CoverLetter == "" {
		return nil, fmt.Errorf("approve cover letter: application %s has no letter: %w", applicationID, domain.ErrInvalidState)
	}

	app.CoverLetterStatus = domain.LetterApproved
	app.UpdatedAt = time.Now()
	if err := s.repo.UpsertApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("approve cover letter: save %s: %w", applicationID, err)
	}
	return app, nil
}

// SubmitApplication has the agent fill in and submit the application with
// the approved letter. Submitting an unapproved letter is refused.
func (s *Service) SubmitApplication(ctx context.Context, applicationID string) (*domain.JobApplication, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}
	if app.CoverLetterStatus != domain.LetterApproved {
		return nil, fmt.Errorf("cover letter must be approved before submitting: %w", domain.ErrInvalidState)
	}

	profile, err := s.repo.GetProfile(ctx, app.UserID)
	if err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}

	_, err = s.executor.Execute(ctx, agi.Request{
		URL:  app.JobURL,
		Task: agi.TaskApplyToJob,
		Instructions: fmt.Sprintf(
			"Apply to the %s position at %s. Fill in the application form with the candidate details from the context, paste the cover letter where one is requested, and submit. Report when the application has been submitted.",
			app.JobTitle, app.Company),
		Data: &agi.TaskData{
			FullName:    profile.Name,
			Email:       profile.Email,
			Phone:       profile.Phone,
			CoverLetter: app.CoverLetter,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("submit application %s: %w", applicationID, err)
	}

	now := time.Now()
	app.Status = domain.ApplicationApplied
	app.AppliedAt = &now
	app.UpdatedAt = now
	if err := s.repo.UpsertApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("submit application: save %s: %w", applicationID, err)
	}

	s.logger.Info("application submitted", "application_id", applicationID, "company", app.Company)
	s.notifier.ApplicationSubmitted(app)
	return app, nil
}

// Get returns one application with its networking contacts.
func (s *Service) Get(ctx context.Context, applicationID string) (*domain.JobApplication, error) {
	return s.repo.GetApplication(ctx, applicationID)
}

// List returns a user's applications in creation order.
func (s *Service) List(ctx context.Context, userID string) ([]*domain.JobApplication, error) {
	return s.repo.ListApplicationsByUser(ctx, userID)
}
