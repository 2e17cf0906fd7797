package networking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobagent/internal/agi"
	"jobagent/internal/domain"
	"jobagent/internal/store"
)

// stubExecutor replays canned results per task and records every request.
type stubExecutor struct {
	results  map[agi.Task]*agi.Result
	err      error
	requests []agi.Request
}

func (s *stubExecutor) Execute(_ context.Context, req agi.Request) (*agi.Result, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.results[req.Task]; ok {
		return r, nil
	}
	return &agi.Result{Status: "completed"}, nil
}

// recordingNotifier captures outbound notifications.
type recordingNotifier struct {
	submitted []*domain.JobApplication
	responded []*domain.NetworkingContact
}

func (n *recordingNotifier) ApplicationSubmitted(app *domain.JobApplication) {
	n.submitted = append(n.submitted, app)
}

func (n *recordingNotifier) ContactResponded(c *domain.NetworkingContact) {
	n.responded = append(n.responded, c)
}

func seedApplication(t *testing.T, repo store.Repository) *domain.JobApplication {
	t.Helper()
	app := &domain.JobApplication{
		ID:       "app-1",
		UserID:   "user-1",
		JobTitle: "2. **Senior Software Engineer**",
		Company:  "Lattice Systems",
		Status:   domain.ApplicationApplied,
	}
	require.NoError(t, repo.UpsertApplication(context.Background(), app))
	return app
}

func testPeople() []domain.Person {
	return []domain.Person{
		{Name: "Sarah Chen", Title: "Staff Engineer", ConnectionDegree: domain.DegreeFirst},
		{Name: "Mike Johnson", Title: "Engineering Manager", ConnectionDegree: domain.DegreeSecond},
		{Name: "Emily Rodriguez", Title: "Senior Engineer", ConnectionDegree: domain.DegreeThird},
	}
}

func TestCleanJobTitle(t *testing.T) {
	assert.Equal(t, "Senior Software Engineer", CleanJobTitle("2. **Senior Software Engineer**"))
	assert.Equal(t, "Product Manager", CleanJobTitle("Product Manager"))
	assert.Equal(t, "Data Engineer", CleanJobTitle("13.  Data Engineer "))
}

func TestOutreachMessageByDegree(t *testing.T) {
	first := OutreachMessage("1. **Backend Engineer**", "Acme", domain.DegreeFirst)
	assert.Equal(t, "Hi! I noticed you work at Acme. I recently applied for the Backend Engineer role and would love to chat about your experience at the company. Would you be open to a quick coffee chat?", first)

	second := OutreachMessage("Backend Engineer", "Acme", domain.DegreeSecond)
	assert.Equal(t, "Hi! I'm interested in the Backend Engineer position at Acme. Would you be open to connecting and sharing your insights about the company?", second)

	// 3rd degree gets the same note as 2nd.
	assert.Equal(t, second, OutreachMessage("Backend Engineer", "Acme", domain.DegreeThird))
}

func TestReachOutCreatesContacts(t *testing.T) {
	repo := store.NewMemory()
	app := seedApplication(t, repo)
	exec := &stubExecutor{}
	svc := NewService(repo, exec, nil, "https://platform.example/platform/", nil)

	contacts, err := svc.ReachOut(context.Background(), app.ID, []int{0, 1}, testPeople())
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	// One batched browser session for the whole selection.
	require.Len(t, exec.requests, 1)
	assert.Equal(t, agi.TaskFilterAndSendOutreach, exec.requests[0].Task)
	assert.Equal(t, 2, exec.requests[0].Data.ContactCount)

	sarah := contacts[0]
	assert.Equal(t, domain.OutreachMessage, sarah.OutreachType)
	assert.Equal(t, "https://platform.example/platform/messaging/?thread=sarahchen", sarah.ThreadURL)
	assert.Contains(t, sarah.MessageText, "coffee chat")
	assert.Equal(t, domain.ContactPending, sarah.Status)

	mike := contacts[1]
	assert.Equal(t, domain.OutreachConnectionRequest, mike.OutreachType)
	assert.Contains(t, mike.MessageText, "open to connecting")

	// Contacts are rehydrated onto the application.
	stored, err := repo.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Len(t, stored.NetworkingContacts, 2)
}

func TestReachOutFiltersInvalidIndexes(t *testing.T) {
	repo := store.NewMemory()
	app := seedApplication(t, repo)
	svc := NewService(repo, &stubExecutor{}, nil, "https://platform.example", nil)

	contacts, err := svc.ReachOut(context.Background(), app.ID, []int{-1, 1, 99}, testPeople())
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Mike Johnson", contacts[0].Name)
}

func TestReachOutNoValidSelection(t *testing.T) {
	repo := store.NewMemory()
	app := seedApplication(t, repo)
	svc := NewService(repo, &stubExecutor{}, nil, "https://platform.example", nil)

	_, err := svc.ReachOut(context.Background(), app.ID, []int{99}, testPeople())
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReachOutFailedSessionPersistsNothing(t *testing.T) {
	repo := store.NewMemory()
	app := seedApplication(t, repo)
	exec := &stubExecutor{err: errors.New("session crashed")}
	svc := NewService(repo, exec, nil, "https://platform.example", nil)

	_, err := svc.ReachOut(context.Background(), app.ID, []int{0}, testPeople())
	require.Error(t, err)

	saved, err := repo.ListContactsByApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestOutreachInstructionsPerDegree(t *testing.T) {
	repo := store.NewMemory()
	app := seedApplication(t, repo)
	exec := &stubExecutor{}
	svc := NewService(repo, exec, nil, "https://platform.example", nil)

	_, err := svc.ReachOut(context.Background(), app.ID, []int{0, 1}, testPeople())
	require.NoError(t, err)

	instructions := exec.requests[0].Instructions
	assert.Contains(t, instructions, "Senior Software Engineer role at Lattice Systems")
	assert.Contains(t, instructions, "Sarah Chen (Staff Engineer, 1st connection)")
	assert.Contains(t, instructions, `say "DONE"`)
	assert.Contains(t, instructions, "✓ Sent message to")
	assert.Contains(t, instructions, "✓ Sent connection request to")
}

func TestFindAndReachOutAll(t *testing.T) {
	repo := store.NewMemory()
	app := seedApplication(t, repo)
	exec := &stubExecutor{results: map[agi.Task]*agi.Result{
		agi.TaskFindAndMessageAll: {People: testPeople()},
	}}
	svc := NewService(repo, exec, nil, "https://platform.example", nil)

	contacts, err := svc.FindAndReachOutAll(context.Background(), app.ID, 0)
	require.NoError(t, err)
	assert.Len(t, contacts, 3)
	assert.Equal(t, agi.TaskFindAndMessageAll, exec.requests[0].Task)
	assert.Equal(t, DefaultMaxContacts, exec.requests[0].Data.Limit)

	instructions := exec.requests[0].Instructions
	assert.Contains(t, instructions, "Senior Software Engineer role at Lattice Systems")
	assert.Contains(t, instructions, `say "DONE"`)
}

func TestCheckResponsesStampsEveryContact(t *testing.T) {
	repo := store.NewMemory()
	app := seedApplication(t, repo)
	notifier := &recordingNotifier{}

	replied := &domain.NetworkingContact{ID: "c-1", ApplicationID: app.ID, Name: "Sarah Chen", Status: domain.ContactPending, ThreadURL: "https://platform.example/messaging/?thread=sarahchen"}
	silent := &domain.NetworkingContact{ID: "c-2", ApplicationID: app.ID, Name: "Mike Johnson", Status: domain.ContactPending}
	require.NoError(t, repo.UpsertContact(context.Background(), replied))
	require.NoError(t, repo.UpsertContact(context.Background(), silent))

	exec := &checkExecutor{repliesFor: map[string]string{replied.ThreadURL: "Happy to chat, how about Tuesday?"}}
	svc := NewService(repo, exec, notifier, "https://platform.example", nil)

	before := time.Now()
	updated, err := svc.CheckResponses(context.Background(), []string{"c-1", "c-2"})
	require.NoError(t, err)
	require.Len(t, updated, 2)

	assert.Equal(t, domain.ContactResponded, updated[0].Status)
	assert.Equal(t, "Happy to chat, how about Tuesday?", updated[0].ResponseText)
	assert.Equal(t, domain.ContactNoResponse, updated[1].Status)

	for _, c := range updated {
		require.NotNil(t, c.LastCheckedAt)
		assert.False(t, c.LastCheckedAt.Before(before))
	}

	require.Len(t, notifier.responded, 1)
	assert.Equal(t, "Sarah Chen", notifier.responded[0].Name)
}

// checkExecutor reports a new message only for thread URLs it has a reply for.
type checkExecutor struct {
	repliesFor map[string]string
}

func (c *checkExecutor) Execute(_ context.Context, req agi.Request) (*agi.Result, error) {
	if msg, ok := c.repliesFor[req.URL]; ok {
		return &agi.Result{HasNewMessages: true, LatestMessage: msg}, nil
	}
	return &agi.Result{}, nil
}
