// Package networking implements the referral-outreach pipeline: finding
// people at a company, messaging them and tracking responses.
package networking

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobagent/internal/agi"
	"jobagent/internal/domain"
	"jobagent/internal/notify"
	"jobagent/internal/store"
)

// DefaultMaxContacts caps a people search when the caller does not specify.
const DefaultMaxContacts = 3

var (
	numberPrefixRe = regexp.MustCompile(`^\d+\.\s*`)
	slugRe         = regexp.MustCompile(`\s+`)
)

// Service runs outreach against one platform.
type Service struct {
	repo     store.Repository
	executor agi.Executor
	notifier notify.Notifier
	baseURL  string
	logger   *slog.Logger
}

// NewService creates a networking pipeline service. baseURL is the platform
// root the browser agent is pointed at.
func NewService(repo store.Repository, executor agi.Executor, notifier notify.Notifier, baseURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Service{
		repo:     repo,
		executor: executor,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// SearchContacts finds people at the application's company. Results are not
// persisted: the caller holds the slice and later passes it back to ReachOut,
// selecting people by index.
func (s *Service) SearchContacts(ctx context.Context, applicationID string, maxContacts int) ([]domain.Person, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	if maxContacts <= 0 {
		maxContacts = DefaultMaxContacts
	}

	result, err := s.executor.Execute(ctx, agi.Request{
		URL:  s.baseURL + "/search/people/",
		Task: agi.TaskSearchPeople,
		Instructions: fmt.Sprintf(
			"Open the people search, filter by company %q using the company filter, and report up to %d people from the filtered results. For each person report one line formatted as: Name - Title - <connection degree: 1st, 2nd or 3rd> - Bio.",
			app.Company, maxContacts),
		Data: &agi.TaskData{
			Company: app.Company,
			Limit:   maxContacts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search contacts at %s: %w", app.Company, err)
	}

	s.logger.Info("people search completed", "application_id", applicationID, "company", app.Company, "found", len(result.People))
	return result.People, nil
}

// ReachOut messages the selected people in one batched browser session.
// selectedIndexes are zero-based positions into allPeople, the slice a prior
// SearchContacts returned. Contact records are created only after the batch
// call succeeds; a failed session persists nothing.
func (s *Service) ReachOut(ctx context.Context, applicationID string, selectedIndexes []int, allPeople []domain.Person) ([]*domain.NetworkingContact, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("reach out: %w", err)
	}

	var selected []domain.Person
	for _, idx := range selectedIndexes {
		if idx < 0 || idx >= len(allPeople) {
			continue
		}
		selected = append(selected, allPeople[idx])
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("reach out: no valid contacts selected: %w", domain.ErrInvalidState)
	}

	_, err = s.executor.Execute(ctx, agi.Request{
		URL:          s.baseURL + "/search/people/",
		Task:         agi.TaskFilterAndSendOutreach,
		Instructions: s.outreachInstructions(app, selected),
		Data: &agi.TaskData{
			Company:      app.Company,
			ContactCount: len(selected),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("reach out for %s: %w", applicationID, err)
	}

	contacts := make([]*domain.NetworkingContact, 0, len(selected))
	for _, person := range selected {
		contact := s.newContact(app, person)
		if err := s.repo.UpsertContact(ctx, contact); err != nil {
			return nil, fmt.Errorf("reach out: save contact %s: %w", contact.Name, err)
		}
		contacts = append(contacts, contact)
		app.NetworkingContacts = append(app.NetworkingContacts, *contact)
	}

	app.UpdatedAt = time.Now()
	if err := s.repo.UpsertApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("reach out: save application %s: %w", applicationID, err)
	}

	s.logger.Info("outreach completed", "application_id", applicationID, "contacts", len(contacts))
	return contacts, nil
}

// FindAndReachOutAll runs the whole flow in a single session: filter people
// by company, then message or connect with everyone found. Used by the
// auto-outreach endpoint where the user never reviews individual people.
func (s *Service) FindAndReachOutAll(ctx context.Context, applicationID string, maxContacts int) ([]*domain.NetworkingContact, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("auto outreach: %w", err)
	}
	if maxContacts <= 0 {
		maxContacts = DefaultMaxContacts
	}

	result, err := s.executor.Execute(ctx, agi.Request{
		URL:          s.baseURL + "/search/people/",
		Task:         agi.TaskFindAndMessageAll,
		Instructions: s.autoOutreachInstructions(app, maxContacts),
		Data: &agi.TaskData{
			Company:      app.Company,
			Limit:        maxContacts,
			ContactCount: maxContacts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("auto outreach for %s: %w", applicationID, err)
	}

	contacts := make([]*domain.NetworkingContact, 0, len(result.People))
	for _, person := range result.People {
		contact := s.newContact(app, person)
		if err := s.repo.UpsertContact(ctx, contact); err != nil {
			return nil, fmt.Errorf("auto outreach: save contact %s: %w", contact.Name, err)
		}
		contacts = append(contacts, contact)
		app.NetworkingContacts = append(app.NetworkingContacts, *contact)
	}

	app.UpdatedAt = time.Now()
	if err := s.repo.UpsertApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("auto outreach: save application %s: %w", applicationID, err)
	}

	s.logger.Info("auto outreach completed", "application_id", applicationID, "contacts", len(contacts))
	return contacts, nil
}

// CheckResponses opens each contact's message thread and looks for a reply.
// Every checked contact gets its last-checked timestamp stamped, replied or
// not, so staleness is observable.
func (s *Service) CheckResponses(ctx context.Context, contactIDs []string) ([]*domain.NetworkingContact, error) {
	updated := make([]*domain.NetworkingContact, 0, len(contactIDs))

	for _, id := range contactIDs {
		contact, err := s.repo.GetContact(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check responses: %w", err)
		}

		result, err := s.executor.Execute(ctx, agi.Request{
			URL:          contact.ThreadURL,
			Task:         agi.TaskCheckMessages,
			Instructions: "Check if there are new messages from the other person",
		})
		if err != nil {
			return nil, fmt.Errorf("check responses for %s: %w", contact.Name, err)
		}

		if result.HasNewMessages {
			contact.Status = domain.ContactResponded
			contact.ResponseText = result.LatestMessage
			s.notifier.ContactResponded(contact)
		} else {
			contact.Status = domain.ContactNoResponse
		}
		now := time.Now()
		contact.LastCheckedAt = &now

		if err := s.repo.UpsertContact(ctx, contact); err != nil {
			return nil, fmt.Errorf("check responses: save %s: %w", id, err)
		}
		updated = append(updated, contact)
	}

	return updated, nil
}

// ListContacts returns all contacts recorded for an application.
func (s *Service) ListContacts(ctx context.Context, applicationID string) ([]*domain.NetworkingContact, error) {
	return s.repo.ListContactsByApplication(ctx, applicationID)
}

func (s *Service) newContact(app *domain.JobApplication, person domain.Person) *domain.NetworkingContact {
	slug := strings.ToLower(slugRe.ReplaceAllString(person.Name, ""))
	profileURL := person.ProfileURL
	if profileURL == "" {
		profileURL = s.baseURL + "/profile/" + slug
	}

	return &domain.NetworkingContact{
		ID:               uuid.NewString(),
		ApplicationID:    app.ID,
		Name:             person.Name,
		Title:            person.Title,
		Company:          app.Company,
		ConnectionDegree: person.ConnectionDegree,
		ProfileURL:       profileURL,
		Description:      person.Description,
		OutreachType:     person.ConnectionDegree.Outreach(),
		MessageText:      OutreachMessage(app.JobTitle, app.Company, person.ConnectionDegree),
		ThreadURL:        s.baseURL + "/messaging/?thread=" + slug,
		Status:           domain.ContactPending,
		SentAt:           time.Now(),
	}
}

// outreachInstructions builds the single-session batch script for the
// selected people. Per-person confirmations ("✓ Sent ... to") double as the
// executor's completion signal.
func (s *Service) outreachInstructions(app *domain.JobApplication, selected []domain.Person) string {
	title := CleanJobTitle(app.JobTitle)

	var b strings.Builder
	fmt.Fprintf(&b, "You are sending networking outreach for the %s role at %s. Do the following:\n\n", title, app.Company)
	fmt.Fprintf(&b, "1. Click the company filter and check the box for %q, then close the modal and wait for results.\n", app.Company)
	b.WriteString("2. For EACH of these people, in order:\n")
	for i, person := range selected {
		fmt.Fprintf(&b, "   %d. %s (%s, %s connection)\n", i+1, person.Name, person.Title, person.ConnectionDegree)
	}
	b.WriteString("\nFor each person:\n")
	fmt.Fprintf(&b, "- If they are a 1st degree connection: click their \"Message\" button, type this message, and click Send:\n  %q\n", OutreachMessage(app.JobTitle, app.Company, domain.DegreeFirst))
	fmt.Fprintf(&b, "- Otherwise: click their \"Connect\" button, add a note with this message, and click Send:\n  %q\n", OutreachMessage(app.JobTitle, app.Company, domain.DegreeSecond))
	b.WriteString("\nAfter each send, say \"✓ Sent message to [their name]\" or \"✓ Sent connection request to [their name]\".\nWhen finished with all contacts, say \"DONE\".")
	return b.String()
}

func (s *Service) autoOutreachInstructions(app *domain.JobApplication, maxContacts int) string {
	title := CleanJobTitle(app.JobTitle)

	var b strings.Builder
	fmt.Fprintf(&b, "You are automating networking outreach for the %s role at %s. Here's what you need to do:\n\n", title, app.Company)
	b.WriteString("STEP 1: FILTER AND FIND PEOPLE\n")
	fmt.Fprintf(&b, "1. Click the company filter to open the \"Select companies\" modal\n2. Check the box for %q\n3. Close the modal and wait for the filtered results to load\n\n", app.Company)
	b.WriteString("STEP 2: EXTRACT PEOPLE INFO\n")
	fmt.Fprintf(&b, "4. Identify up to %d people on the filtered page, noting their name, title, connection degree (1st, 2nd or 3rd) and bio\n\n", maxContacts)
	b.WriteString("STEP 3: MESSAGE/CONNECT WITH EVERYONE\n")
	fmt.Fprintf(&b, "5. For 1st degree connections, click \"Message\", type %q and send, then say \"✓ Sent message to [their name]\"\n", OutreachMessage(app.JobTitle, app.Company, domain.DegreeFirst))
	fmt.Fprintf(&b, "6. For 2nd or 3rd degree connections, click \"Connect\", add a note with %q and send, then say \"✓ Sent connection request to [their name]\"\n\n", OutreachMessage(app.JobTitle, app.Company, domain.DegreeSecond))
	b.WriteString("STEP 4: RETURN DATA\n")
	fmt.Fprintf(&b, "7. Report everyone you contacted, one per line formatted as: Name - Title - <connection degree> - Bio\n\nWhen finished with all contacts, say \"DONE\".")
	return b.String()
}

// CleanJobTitle strips the list numbering and markdown bold markers that
// search-result titles sometimes carry before the title goes into a message.
func CleanJobTitle(title string) string {
	title = numberPrefixRe.ReplaceAllString(title, "")
	title = strings.ReplaceAll(title, "**", "")
	return strings.TrimSpace(title)
}

// OutreachMessage builds the personalized text for one contact. The wording
// depends only on the connection degree: 1st-degree people get a coffee-chat
// message, everyone else a connection-request note.
func OutreachMessage(jobTitle, company string, degree domain.ConnectionDegree) string {
	title := CleanJobTitle(jobTitle)
	if degree == domain.DegreeFirst {
		return fmt.Sprintf("Hi! I noticed you work at %s. I recently applied for the %s role and would love to chat about your experience at the company. Would you be open to a quick coffee chat?", company, title)
	}
	return fmt.Sprintf("Hi! I'm interested in the %s position at %s. Would you be open to connecting and sharing your insights about the company?", title, company)
}
