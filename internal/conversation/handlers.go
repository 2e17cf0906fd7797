package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobagent/internal/domain"
	"jobagent/internal/networking"
)

// fieldQuestions is what the assistant asks for each still-missing
// preference, in the priority order MissingPreferences reports them.
var fieldQuestions = map[string]string{
	domain.FieldDesiredPosition: "What kind of position are you looking for? For example, \"software engineer\" or \"product manager\".",
	domain.FieldLocations:       "Which locations would you like me to search in? You can list several, and \"Remote\" counts too.",
	domain.FieldCurrentLocation: "And where are you currently located?",
}

// handleProfileCollection runs the slot extractor and either asks for the
// next missing preference or, once all three are present, moves on to the
// job search.
func (s *Service) handleProfileCollection(ctx context.Context, state *domain.ConversationState, text string, history []*domain.ConversationMessage) (*turnReply, error) {
	learned := s.extractor.Extract(ctx, state, text, history)

	if !state.ProfileDraft.SearchReady() {
		missing := state.ProfileDraft.MissingPreferences()
		question := fieldQuestions[missing[0]]
		if learned {
			question = "Got it! " + question
		}
		return &turnReply{response: question, metadata: &domain.TurnMetadata{}}, nil
	}

	response := fmt.Sprintf(`Great! I have everything I need:
- Position: %s
- Locations: %s
- Current location: %s

Based on your background and preferences, you seem to be a great fit for %s roles. Let me search for jobs that match your profile. This will take a moment...`,
		state.ProfileDraft.DesiredPosition,
		strings.Join(state.ProfileDraft.Locations, ", "),
		state.ProfileDraft.CurrentLocation,
		state.ProfileDraft.DesiredPosition)

	state.Stage = domain.StageJobSearch
	return &turnReply{response: response, metadata: &domain.TurnMetadata{Action: domain.ActionJobSearch}}, nil
}

// handleJobSearch finalizes the profile and runs the platform search,
// presenting the results for review.
func (s *Service) handleJobSearch(ctx context.Context, state *domain.ConversationState) (*turnReply, error) {
	profile := state.ProfileDraft
	profile.ID = state.UserID
	profile.UpdatedAt = time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = profile.UpdatedAt
	}
	if err := s.repo.UpsertProfile(ctx, &profile); err != nil {
		return nil, fmt.Errorf("finalize profile: %w", err)
	}

	apps, err := s.jobs.SearchJobs(ctx, state.UserID, 0)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		state.Stage = domain.StageProfileCollection
		return &turnReply{
			response: "I couldn't find any jobs matching your criteria just now. Would you like to adjust the position or locations we search for?",
			metadata: &domain.TurnMetadata{},
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d jobs that match your profile! Here's what I found:\n\n", len(apps))
	jobsFound := make([]domain.JobApplication, 0, len(apps))
	for i, app := range apps {
		fmt.Fprintf(&b, "%d. **%s** at %s\n   Location: %s\n   Description: %s\n\n",
			i+1, app.JobTitle, app.Company, app.Location, truncate(app.JobDescription, 150))
		jobsFound = append(jobsFound, *app)
	}
	b.WriteString(`Which of these positions would you like to apply to? You can say "all of them", specific numbers like "1, 3, and 4", or "none" if you'd like to search for different roles.`)

	state.Stage = domain.StageJobReview
	return &turnReply{
		response: b.String(),
		metadata: &domain.TurnMetadata{Action: domain.ActionApproveJobs, Jobs: jobsFound},
	}, nil
}

// handleJobReview interprets the user's selection and kicks off the per-job
// cover-letter loop for the chosen applications.
func (s *Service) handleJobReview(ctx context.Context, state *domain.ConversationState, text string) (*turnReply, error) {
	apps, err := s.jobs.List(ctx, state.UserID)
	if err != nil {
		return nil, fmt.Errorf("job review: %w", err)
	}

	indexes, none := parseSelection(text, len(apps))
	if none {
		state.Stage = domain.StageProfileCollection
		return &turnReply{
			response: "No problem! Would you like me to search for different positions, or would you like to adjust your search criteria?",
			metadata: &domain.TurnMetadata{},
		}, nil
	}
	if len(indexes) == 0 {
		return &turnReply{
			response: "I didn't quite catch which jobs you'd like to apply to. Could you please specify? For example, you can say \"jobs 1 and 3\" or \"all of them\".",
			metadata: &domain.TurnMetadata{},
		}, nil
	}

	// Duplicate numbers ("1 and 1") collapse to one entry; the review
	// pointer advances by approvals and would never drain a repeated id.
	selected := make([]string, 0, len(indexes))
	seen := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		selected = append(selected, apps[idx].ID)
	}
	state.SelectedJobs = selected
	state.LetterDrafts = make(map[string]string)
	state.ApprovedLetters = make(map[string]string)
	state.Stage = domain.StageCoverLetterReview

	draft, presentation, err := s.presentCurrentLetter(ctx, state)
	if err != nil {
		return nil, err
	}
	response := fmt.Sprintf("Perfect! I'll prepare applications for %d position(s). Let me generate a customized cover letter for each one, starting with the first.\n\n%s",
		len(selected), presentation)
	return &turnReply{
		response: response,
		metadata: &domain.TurnMetadata{Action: domain.ActionApproveLetter, Letter: draft},
	}, nil
}

// handleCoverLetterReview walks the selected jobs one at a time: present a
// letter, then interpret the reply as skip, approval (approve + submit +
// advance) or revision feedback.
func (s *Service) handleCoverLetterReview(ctx context.Context, state *domain.ConversationState, text string) (*turnReply, error) {
	jobID, ok := state.CurrentJob()
	if !ok {
		return s.advanceToNetworking(state, "All your selected applications have been handled. "), nil
	}

	// First visit to this job: nothing to interpret yet.
	if _, hasDraft := state.LetterDrafts[jobID]; !hasDraft {
		draft, presentation, err := s.presentCurrentLetter(ctx, state)
		if err != nil {
			return nil, err
		}
		return &turnReply{
			response: presentation,
			metadata: &domain.TurnMetadata{Action: domain.ActionApproveLetter, Letter: draft},
		}, nil
	}

	switch {
	case isSkip(text):
		state.DropCurrentJob()
		if _, ok := state.CurrentJob(); !ok {
			return s.advanceToNetworking(state, "No problem, I've dropped that one. "), nil
		}
		draft, presentation, err := s.presentCurrentLetter(ctx, state)
		if err != nil {
			return nil, err
		}
		return &turnReply{
			response: "No problem, I've dropped that one. " + presentation,
			metadata: &domain.TurnMetadata{Action: domain.ActionApproveLetter, Letter: draft},
		}, nil

	case isApproval(text):
		if _, err := s.jobs.ApproveCoverLetter(ctx, jobID); err != nil {
			return nil, err
		}
		app, err := s.jobs.SubmitApplication(ctx, jobID)
		if err != nil {
			return nil, err
		}
		state.ApprovedLetters[jobID] = state.LetterDrafts[jobID]

		submitted := fmt.Sprintf("Done! Your application to %s has been submitted. ", app.Company)
		if _, ok := state.CurrentJob(); !ok {
			return s.advanceToNetworking(state,
				fmt.Sprintf("%sThat's all %d application(s) sent. ", submitted, len(state.ApprovedLetters))), nil
		}
		draft, presentation, err := s.presentCurrentLetter(ctx, state)
		if err != nil {
			return nil, err
		}
		return &turnReply{
			response: submitted + "Here's the next one.\n\n" + presentation,
			metadata: &domain.TurnMetadata{Action: domain.ActionApproveLetter, Letter: draft},
		}, nil

	default:
		// Anything else is revision feedback.
		app, err := s.jobs.GenerateCoverLetter(ctx, jobID, text)
		if err != nil {
			return nil, err
		}
		state.LetterDrafts[jobID] = app.CoverLetter
		draft := &domain.LetterDraft{
			ApplicationID: app.ID,
			JobTitle:      app.JobTitle,
			Company:       app.Company,
			Letter:        app.CoverLetter,
		}
		response := fmt.Sprintf("Here's the revised cover letter for **%s** at %s:\n\n---\n%s\n---\n\nHow does this version look?",
			app.JobTitle, app.Company, app.CoverLetter)
		return &turnReply{
			response: response,
			metadata: &domain.TurnMetadata{Action: domain.ActionApproveLetter, Letter: draft},
		}, nil
	}
}

// presentCurrentLetter prepares the letter for the job the review pointer is
// on: fetch posting details, generate the letter, record the draft and build
// the presentation text.
func (s *Service) presentCurrentLetter(ctx context.Context, state *domain.ConversationState) (*domain.LetterDraft, string, error) {
	jobID, ok := state.CurrentJob()
	if !ok {
		return nil, "", fmt.Errorf("present letter: no job under review: %w", domain.ErrInvalidState)
	}

	if _, err := s.jobs.FetchJobDetails(ctx, jobID); err != nil {
		return nil, "", err
	}
	app, err := s.jobs.GenerateCoverLetter(ctx, jobID, "")
	if err != nil {
		return nil, "", err
	}

	if state.LetterDrafts == nil {
		state.LetterDrafts = make(map[string]string)
	}
	state.LetterDrafts[jobID] = app.CoverLetter

	draft := &domain.LetterDraft{
		ApplicationID: app.ID,
		JobTitle:      app.JobTitle,
		Company:       app.Company,
		Letter:        app.CoverLetter,
	}
	presentation := fmt.Sprintf("Here's the cover letter for **%s** at %s:\n\n---\n%s\n---\n\nWhat do you think? You can approve it and I'll submit the application, tell me what you'd like changed, or say \"skip\" to drop this one.",
		app.JobTitle, app.Company, app.CoverLetter)
	return draft, presentation, nil
}

func (s *Service) advanceToNetworking(state *domain.ConversationState, prefix string) *turnReply {
	state.Stage = domain.StageNetworkingSearch
	return &turnReply{
		response: prefix + "Now, would you like me to reach out to people at these companies to help you get referrals and schedule coffee chats? I can find employees who work there and send personalized messages.",
		metadata: &domain.TurnMetadata{},
	}
}

// handleApplication is the legacy submission stage kept for stored states
// that predate the per-job review loop; it just moves on to networking.
func (s *Service) handleApplication(state *domain.ConversationState) (*turnReply, error) {
	state.Stage = domain.StageNetworkingSearch
	return &turnReply{
		response: fmt.Sprintf("All done! I've successfully submitted %d applications.\n\nNow, would you like me to reach out to people at these companies to help you get referrals and schedule coffee chats? I can find employees who work there and send personalized messages.",
			len(state.SelectedJobs)),
		metadata: &domain.TurnMetadata{},
	}, nil
}

func (s *Service) handleNetworkingSearch(state *domain.ConversationState, text string) (*turnReply, error) {
	if !isAffirmative(text) {
		state.Stage = domain.StageComplete
		return &turnReply{
			response: "No problem! Your applications have been submitted. You can always come back later if you'd like help with networking. Is there anything else I can help you with?",
			metadata: &domain.TurnMetadata{},
		}, nil
	}

	state.Stage = domain.StageNetworkingReview
	return &turnReply{
		response: "Excellent! Let me find people at these companies who might be able to help. This will take a moment...",
		metadata: &domain.TurnMetadata{Action: domain.ActionSearchContacts},
	}, nil
}

// handleNetworkingReview runs the people search and presents the candidates
// for approval.
func (s *Service) handleNetworkingReview(ctx context.Context, state *domain.ConversationState) (*turnReply, error) {
	appID, ok := s.networkingApplication(state)
	if !ok {
		state.Stage = domain.StageComplete
		return &turnReply{
			response: "I don't have a submitted application to network against yet. Is there anything else I can help you with?",
			metadata: &domain.TurnMetadata{},
		}, nil
	}

	people, err := s.networking.SearchContacts(ctx, appID, networking.DefaultMaxContacts)
	if err != nil {
		return nil, err
	}
	if len(people) == 0 {
		state.Stage = domain.StageComplete
		return &turnReply{
			response: "I couldn't find people at the company right now. Your applications are in, so you're all set for today!",
			metadata: &domain.TurnMetadata{},
		}, nil
	}

	state.PendingPeople = people
	state.Stage = domain.StageNetworkingMsgReview

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d people who work there and might be able to help:\n\n", len(people))
	for i, person := range people {
		fmt.Fprintf(&b, "%d. **%s** - %s (%s connection)\n", i+1, person.Name, person.Title, person.ConnectionDegree)
	}
	b.WriteString("\nWould you like me to reach out to them on your behalf? You can say \"all\", give specific numbers, or \"none\".")

	return &turnReply{
		response: b.String(),
		metadata: &domain.TurnMetadata{Action: domain.ActionApproveContacts, People: people},
	}, nil
}

// handleNetworkingMessageReview sends the approved outreach and wraps up.
func (s *Service) handleNetworkingMessageReview(ctx context.Context, state *domain.ConversationState, text string) (*turnReply, error) {
	appID, ok := s.networkingApplication(state)
	if !ok || len(state.PendingPeople) == 0 {
		state.Stage = domain.StageComplete
		return &turnReply{
			response: "Looks like there's nobody queued up for outreach. You're all set!",
			metadata: &domain.TurnMetadata{},
		}, nil
	}

	indexes, none := parseSelection(text, len(state.PendingPeople))
	if none {
		state.PendingPeople = nil
		state.Stage = domain.StageComplete
		return &turnReply{
			response: "No problem, I won't contact anyone. Your applications have been submitted, so you're all set!",
			metadata: &domain.TurnMetadata{},
		}, nil
	}
	if len(indexes) == 0 {
		if !isAffirmative(text) {
			return &turnReply{
				response: "Who should I reach out to? You can say \"all\", give specific numbers like \"1 and 3\", or \"none\".",
				metadata: &domain.TurnMetadata{},
			}, nil
		}
		for i := range state.PendingPeople {
			indexes = append(indexes, i)
		}
	}

	contacts, err := s.networking.ReachOut(ctx, appID, indexes, state.PendingPeople)
	if err != nil {
		return nil, err
	}

	state.PendingPeople = nil
	state.Stage = domain.StageComplete
	return &turnReply{
		response: fmt.Sprintf("Perfect! I've reached out to %d people. You're all set! I'll keep you updated on any responses.", len(contacts)),
		metadata: &domain.TurnMetadata{},
	}, nil
}

// networkingApplication picks the application outreach runs against: the
// first job the user selected during review.
func (s *Service) networkingApplication(state *domain.ConversationState) (string, bool) {
	if len(state.SelectedJobs) == 0 {
		return "", false
	}
	return state.SelectedJobs[0], true
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
