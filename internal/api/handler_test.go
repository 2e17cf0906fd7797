package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobagent/internal/agi"
	"jobagent/internal/conversation"
	"jobagent/internal/domain"
	"jobagent/internal/jobs"
	"jobagent/internal/letters"
	"jobagent/internal/llm"
	"jobagent/internal/networking"
	"jobagent/internal/resume"
	"jobagent/internal/store"
)

// scriptedCompleter returns queued replies in order; once exhausted it
// returns an empty (unparseable) reply.
type scriptedCompleter struct {
	replies []string
	calls   int
}

var _ llm.Completer = (*scriptedCompleter)(nil)

func (s *scriptedCompleter) Complete(context.Context, string, int) (string, error) {
	if s.calls >= len(s.replies) {
		s.calls++
		return "", nil
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

func newTestRouter(repo store.Repository, completer llm.Completer) chi.Router {
	executor := agi.NewMockExecutor(nil)
	gen := letters.NewGenerator(completer)
	jobSvc := jobs.NewService(repo, executor, gen, nil, "https://platform.example/platform", nil)
	netSvc := networking.NewService(repo, executor, nil, "https://platform.example/platform", nil)
	extractor := conversation.NewExtractor(completer, repo, nil)
	convSvc := conversation.NewService(repo, extractor, jobSvc, netSvc, nil)
	parser := resume.NewParser(completer)
	events := NewEventLog(time.Minute, nil)

	h := NewHandler(repo, convSvc, jobSvc, netSvc, parser, events, nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(store.NewMemory(), &scriptedCompleter{})

	rec, body := doJSON(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestPostMessageValidation(t *testing.T) {
	router := newTestRouter(store.NewMemory(), &scriptedCompleter{})

	rec, body := doJSON(t, router, http.MethodPost, "/api/agent/message", map[string]string{"userId": "user-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestPostMessageRunsOneTurn(t *testing.T) {
	router := newTestRouter(store.NewMemory(), &scriptedCompleter{
		replies: []string{`{"desiredPosition": "software engineer"}`},
	})

	rec, body := doJSON(t, router, http.MethodPost, "/api/agent/message", map[string]string{
		"userId":  "user-1",
		"message": "I'm looking for engineering jobs",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["response"], "Got it!")

	state, ok := body["state"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(domain.StageProfileCollection), state["stage"])
}

func TestInitializeSeedsConversation(t *testing.T) {
	repo := store.NewMemory()
	router := newTestRouter(repo, &scriptedCompleter{})

	rec, body := doJSON(t, router, http.MethodPost, "/api/agent/initialize", map[string]interface{}{
		"userId": "user-1",
		"profileData": map[string]interface{}{
			"full_name": "Jordan Doe",
			"email":     "jordan@example.com",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["greeting"], "I've got your resume")

	profile, err := repo.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Jordan Doe", profile.Name)

	state, err := repo.GetConversationState(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, domain.InitialStage, state.Stage)
}

func TestGetAndClearConversation(t *testing.T) {
	repo := store.NewMemory()
	router := newTestRouter(repo, &scriptedCompleter{})

	_, _ = doJSON(t, router, http.MethodPost, "/api/agent/message", map[string]string{
		"userId": "user-1", "message": "hello",
	})

	rec, body := doJSON(t, router, http.MethodGet, "/api/agent/conversation/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages, ok := body["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 2)

	rec, _ = doJSON(t, router, http.MethodDelete, "/api/agent/conversation/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, http.MethodGet, "/api/agent/conversation/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages, _ = body["messages"].([]interface{})
	assert.Empty(t, messages)
}

func TestGetApplicationNotFound(t *testing.T) {
	router := newTestRouter(store.NewMemory(), &scriptedCompleter{})

	rec, body := doJSON(t, router, http.MethodGet, "/api/jobs/application/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestSubmitBeforeApprovalConflicts(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, repo.UpsertProfile(ctx, &domain.Profile{ID: "user-1", Name: "Jordan Doe"}))
	require.NoError(t, repo.UpsertApplication(ctx, &domain.JobApplication{
		ID: "app-1", UserID: "user-1", JobTitle: "Engineer", Company: "Acme",
		CoverLetter: "draft", CoverLetterStatus: domain.LetterPending,
	}))
	router := newTestRouter(repo, &scriptedCompleter{})

	rec, body := doJSON(t, router, http.MethodPost, "/api/jobs/application/app-1/submit", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestProfileRoundTripOverHTTP(t *testing.T) {
	router := newTestRouter(store.NewMemory(), &scriptedCompleter{})

	rec, _ := doJSON(t, router, http.MethodPost, "/api/profile/", map[string]interface{}{
		"id":        "user-1",
		"full_name": "Jordan Doe",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, router, http.MethodGet, "/api/profile/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile, ok := body["profile"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Jordan Doe", profile["full_name"])
}

func TestResumeUploadSeedsProfileAndConversation(t *testing.T) {
	repo := store.NewMemory()
	router := newTestRouter(repo, &scriptedCompleter{
		replies: []string{`{"full_name": "Jordan Doe", "email": "jordan@example.com", "skills": ["Go"]}`},
	})

	rec, body := doJSON(t, router, http.MethodPost, "/api/resume/upload", map[string]string{
		"userId":     "user-1",
		"resumeText": "Jordan Doe. Backend engineer. Go, SQL.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["greeting"], "I've got your resume")

	profile, err := repo.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Jordan Doe", profile.Name)
	assert.Equal(t, []string{"Go"}, profile.Skills)
}

func TestWebhookEventLifecycle(t *testing.T) {
	router := newTestRouter(store.NewMemory(), &scriptedCompleter{})

	rec, _ := doJSON(t, router, http.MethodPost, "/api/webhooks/agi", map[string]interface{}{
		"event":   "task.completed",
		"session": map[string]string{"id": "s-1"},
		"message": "finished",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, router, http.MethodGet, "/api/webhooks/agi/s-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events, ok := body["events"].([]interface{})
	require.True(t, ok)
	require.Len(t, events, 1)

	// Deleting the backend session drops its buffered events.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/webhooks/agi", map[string]interface{}{
		"event":   "session.deleted",
		"session": map[string]string{"id": "s-1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	_, body = doJSON(t, router, http.MethodGet, "/api/webhooks/agi/s-1", nil)
	events, _ = body["events"].([]interface{})
	assert.Empty(t, events)
}
