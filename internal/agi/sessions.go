package agi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Session and execution states reported by the Sessions API.
const (
	SessionCompleted  = "completed"
	SessionError      = "error"
	ExecutionFinished = "finished"
	ExecutionError    = "error"
)

// Agent message types. Results usually arrive in DONE messages but agents
// sometimes put them in THOUGHT messages, so parsers read both.
const (
	MessageThought = "THOUGHT"
	MessageDone    = "DONE"
)

// ErrCompletionTimeout is returned when a session does not finish within the
// configured ceiling.
var ErrCompletionTimeout = errors.New("timeout waiting for session to complete")

// SessionsConfig holds connection settings for the agent Sessions API.
type SessionsConfig struct {
	BaseURL         string
	APIKey          string
	AgentName       string
	RequestTimeout  time.Duration
	PollInterval    time.Duration
	CompleteTimeout time.Duration
}

// SessionsClient is an HTTP client for the agent Sessions API: create a
// session, navigate, send an instruction message, poll messages and status
// until the run finishes, then delete the session.
type SessionsClient struct {
	cfg    SessionsConfig
	http   *http.Client
	logger *slog.Logger
}

// NewSessionsClient creates a Sessions API client.
func NewSessionsClient(cfg SessionsConfig, logger *slog.Logger) *SessionsClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.CompleteTimeout <= 0 {
		cfg.CompleteTimeout = 5 * time.Minute
	}
	return &SessionsClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

type sessionInfo struct {
	SessionID string `json:"session_id"`
	AgentName string `json:"agent_name"`
	Status    string `json:"status"`
}

type sessionStatus struct {
	SessionID       string `json:"session_id"`
	Status          string `json:"status"`
	ExecutionStatus string `json:"execution_status"`
}

// AgentMessage is one message emitted by the remote agent during a run.
type AgentMessage struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Messages []AgentMessage `json:"messages"`
}

func (c *SessionsClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, payload)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// CreateSession starts a fresh browser session.
func (c *SessionsClient) CreateSession(ctx context.Context) (string, error) {
	var info sessionInfo
	body := map[string]interface{}{
		"agent_name":   c.cfg.AgentName,
		"save_on_exit": false,
	}
	if err := c.do(ctx, http.MethodPost, "/sessions", body, &info); err != nil {
		return "", err
	}
	c.logger.Info("created agent session", "session_id", info.SessionID, "agent", info.AgentName)
	return info.SessionID, nil
}

// Navigate points the session browser at a URL.
func (c *SessionsClient) Navigate(ctx context.Context, sessionID, rawURL string) error {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return fmt.Errorf("invalid navigation url %q: %w", rawURL, err)
	}
	return c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/navigate",
		map[string]string{"url": rawURL}, nil)
}

// SendMessage delivers the task instructions to the agent.
func (c *SessionsClient) SendMessage(ctx context.Context, sessionID, message, startURL string) error {
	body := map[string]string{"message": message}
	if startURL != "" {
		body["start_url"] = startURL
	}
	return c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/message", body, nil)
}

// Status fetches current session and execution status.
func (c *SessionsClient) Status(ctx context.Context, sessionID string) (*sessionStatus, error) {
	var st sessionStatus
	if err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Messages fetches agent messages with id greater than afterID.
func (c *SessionsClient) Messages(ctx context.Context, sessionID string, afterID int) ([]AgentMessage, error) {
	var resp messagesResponse
	path := "/sessions/" + sessionID + "/messages?after_id=" + strconv.Itoa(afterID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// DeleteSession tears the session down. Best effort; failures are logged by
// callers because a leaked remote session is not fatal to the workflow.
func (c *SessionsClient) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, nil)
}

// WaitForCompletion polls status and messages until the session finishes,
// the optional done predicate is satisfied by the accumulated messages, or
// the completion ceiling expires. All collected messages are returned.
func (c *SessionsClient) WaitForCompletion(ctx context.Context, sessionID string, done func([]AgentMessage) bool) ([]AgentMessage, error) {
	deadline := time.Now().Add(c.cfg.CompleteTimeout)
	afterID := 0
	var all []AgentMessage

	for time.Now().Before(deadline) {
		st, err := c.Status(ctx, sessionID)
		if err != nil {
			return all, err
		}

		msgs, err := c.Messages(ctx, sessionID, afterID)
		if err != nil {
			return all, err
		}
		for _, m := range msgs {
			all = append(all, m)
			if m.ID > afterID {
				afterID = m.ID
			}
		}

		if st.ExecutionStatus == ExecutionFinished || st.ExecutionStatus == ExecutionError ||
			st.Status == SessionCompleted || st.Status == SessionError {
			return all, nil
		}
		if done != nil && done(all) {
			return all, nil
		}

		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}

	return all, fmt.Errorf("session %s: %w", sessionID, ErrCompletionTimeout)
}
