package agi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionsServer emulates the Sessions API: one session, scripted agent
// messages released one per poll, finishing after the script runs out.
type fakeSessionsServer struct {
	mu       sync.Mutex
	script   []AgentMessage
	released int
	deleted  bool

	createdWith map[string]interface{}
	navigatedTo string
	sentMessage string
}

func (f *fakeSessionsServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&f.createdWith)
		_ = json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-1", "agent_name": "jobagent", "status": "active"})
	})
	mux.HandleFunc("POST /sessions/sess-1/navigate", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.navigatedTo = body["url"]
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /sessions/sess-1/message", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.sentMessage = body["message"]
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /sessions/sess-1/status", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		execution := "running"
		if f.released >= len(f.script) {
			execution = ExecutionFinished
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-1", "status": "active", "execution_status": execution})
	})
	mux.HandleFunc("GET /sessions/sess-1/messages", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var batch []AgentMessage
		if f.released < len(f.script) {
			batch = append(batch, f.script[f.released])
			f.released++
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"messages": batch})
	})
	mux.HandleFunc("DELETE /sessions/sess-1", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.deleted = true
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func newFakeClient(t *testing.T, fake *fakeSessionsServer) *SessionsClient {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	return NewSessionsClient(SessionsConfig{
		BaseURL:         srv.URL,
		AgentName:       "jobagent",
		PollInterval:    time.Millisecond,
		CompleteTimeout: time.Second,
	}, nil)
}

func TestSessionsClientLifecycle(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSessionsServer{script: []AgentMessage{
		{ID: 1, Type: MessageThought, Content: "opening the page"},
		{ID: 2, Type: MessageDone, Content: "Engineer - Acme - Berlin"},
	}}
	client := newFakeClient(t, fake)

	sessionID, err := client.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sessionID)
	assert.Equal(t, false, fake.createdWith["save_on_exit"])

	require.NoError(t, client.Navigate(ctx, sessionID, "https://platform.example/jobs"))
	assert.Equal(t, "https://platform.example/jobs", fake.navigatedTo)

	require.NoError(t, client.SendMessage(ctx, sessionID, "find jobs", "https://platform.example/jobs"))
	assert.Equal(t, "find jobs", fake.sentMessage)

	msgs, err := client.WaitForCompletion(ctx, sessionID, nil)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, MessageDone, msgs[1].Type)

	require.NoError(t, client.DeleteSession(ctx, sessionID))
	assert.True(t, fake.deleted)
}

func TestNavigateRejectsInvalidURL(t *testing.T) {
	client := newFakeClient(t, &fakeSessionsServer{})
	err := client.Navigate(context.Background(), "sess-1", "not a url")
	assert.Error(t, err)
}

func TestWaitForCompletionDonePredicateStopsEarly(t *testing.T) {
	fake := &fakeSessionsServer{script: []AgentMessage{
		{ID: 1, Type: MessageDone, Content: "✓ Sent message to Sarah Chen\nDONE"},
		{ID: 2, Type: MessageThought, Content: "should never be fetched"},
	}}
	client := newFakeClient(t, fake)

	msgs, err := client.WaitForCompletion(context.Background(), "sess-1", func(msgs []AgentMessage) bool {
		for _, m := range msgs {
			if strings.Contains(m.Content, "DONE") {
				return true
			}
		}
		return false
	})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestWaitForCompletionTimesOut(t *testing.T) {
	// The fake only finishes once the script is exhausted; an infinite script
	// keeps it running past the ceiling.
	fake := &fakeSessionsServer{script: make([]AgentMessage, 10000)}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := NewSessionsClient(SessionsConfig{
		BaseURL:         srv.URL,
		PollInterval:    time.Millisecond,
		CompleteTimeout: 20 * time.Millisecond,
	}, nil)

	_, err := client.WaitForCompletion(context.Background(), "sess-1", nil)
	assert.ErrorIs(t, err, ErrCompletionTimeout)
}

func TestExecutorRunsTaskEndToEnd(t *testing.T) {
	fake := &fakeSessionsServer{script: []AgentMessage{
		{ID: 1, Type: MessageDone, Content: "1. Engineer - Acme - Berlin\n2. Analyst - Globex - Remote"},
	}}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := NewClient(SessionsConfig{
		BaseURL:         srv.URL,
		PollInterval:    time.Millisecond,
		CompleteTimeout: time.Second,
	}, nil)

	result, err := client.Execute(context.Background(), Request{
		URL:          "https://platform.example/jobs",
		Task:         TaskSearchJobs,
		Instructions: "find jobs",
	})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 2)
	assert.Equal(t, "Engineer", result.Jobs[0].Title)

	// The session is torn down even on success.
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.True(t, fake.deleted)
}