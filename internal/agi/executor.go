package agi

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// Client executes browser-automation tasks over the Sessions API. Each task
// gets a fresh session that is torn down when the task ends, success or not.
type Client struct {
	sessions *SessionsClient
	logger   *slog.Logger
}

var _ Executor = (*Client)(nil)

// NewClient creates an Executor backed by the remote Sessions API.
func NewClient(cfg SessionsConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		sessions: NewSessionsClient(cfg, logger),
		logger:   logger,
	}
}

// Execute runs one task to completion and returns its parsed payload.
func (c *Client) Execute(ctx context.Context, req Request) (*Result, error) {
	sessionID, err := c.sessions.CreateSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("task %s: create session: %w", req.Task, err)
	}
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.sessions.DeleteSession(cleanupCtx, sessionID); err != nil {
			c.logger.Warn("failed to delete agent session", "session_id", sessionID, "error", err)
		}
	}()

	if req.URL != "" {
		if err := c.sessions.Navigate(ctx, sessionID, req.URL); err != nil {
			return nil, fmt.Errorf("task %s: navigate: %w", req.Task, err)
		}
	}

	message := buildMessage(req)
	if err := c.sessions.SendMessage(ctx, sessionID, message, req.URL); err != nil {
		return nil, fmt.Errorf("task %s: send instructions: %w", req.Task, err)
	}

	messages, err := c.sessions.WaitForCompletion(ctx, sessionID, doneCheck(req))
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", req.Task, err)
	}

	result := parseResult(req.Task, messages)
	c.logger.Info("agent task completed", "task", req.Task, "session_id", sessionID, "messages", len(messages))
	return result, nil
}

// buildMessage assembles the instruction message sent to the agent,
// appending a context block from the structured task data.
func buildMessage(req Request) string {
	message := req.Instructions
	if message == "" {
		message = fmt.Sprintf("Please %s", req.Task)
	}

	if req.Data == nil {
		return message
	}

	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}
	add("Position", req.Data.Position)
	if len(req.Data.Locations) > 0 {
		add("Locations", strings.Join(req.Data.Locations, ", "))
	}
	add("Company", req.Data.Company)
	if req.Data.Limit > 0 {
		parts = append(parts, fmt.Sprintf("Limit: %d", req.Data.Limit))
	}
	add("Message", req.Data.Message)
	add("Note", req.Data.Note)
	add("Cover Letter", req.Data.CoverLetter)
	add("Full Name", req.Data.FullName)
	add("Email", req.Data.Email)
	add("Phone", req.Data.Phone)

	if len(parts) > 0 {
		message += "\n\nContext:\n" + strings.Join(parts, "\n")
	}
	return message
}

var sentConfirmationRe = regexp.MustCompile(`(?i)✓ sent (message|connection request) to`)

// doneCheck returns a task-specific early-completion predicate, or nil for
// tasks that run until the session reports finished.
func doneCheck(req Request) func([]AgentMessage) bool {
	switch req.Task {
	case TaskApplyToJob:
		return func(msgs []AgentMessage) bool {
			content := joinedContent(msgs)
			submitted := strings.Contains(content, "submit") || strings.Contains(content, "application sent")
			stopped := strings.Contains(content, "stop") || strings.Contains(content, "done") || strings.Contains(content, "complete")
			return submitted && stopped
		}
	case TaskFilterAndSendOutreach, TaskFindAndMessageAll:
		expected := 1
		if req.Data != nil && req.Data.ContactCount > 0 {
			expected = req.Data.ContactCount
		}
		return func(msgs []AgentMessage) bool {
			content := joinedContent(msgs)
			sent := strings.Contains(content, "sent") || strings.Contains(content, "message") || strings.Contains(content, "connect")
			stopped := strings.Contains(content, "stop") || strings.Contains(content, "done") || strings.Contains(content, "complete")
			confirmations := len(sentConfirmationRe.FindAllString(content, -1))
			return sent && (stopped || confirmations >= expected)
		}
	}
	return nil
}

func joinedContent(msgs []AgentMessage) string {
	var parts []string
	for _, m := range msgs {
		if m.Type == MessageDone || m.Type == MessageThought {
			parts = append(parts, m.Content)
		}
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}

// parseResult maps the collected agent messages into the task's structured
// payload using the lenient parsers. Parsers that find nothing leave the
// corresponding field nil; callers decide how to degrade.
func parseResult(task Task, messages []AgentMessage) *Result {
	result := &Result{Status: "completed"}

	switch task {
	case TaskSearchJobs:
		result.Jobs = ParseJobs(messages)
	case TaskGetJobDetails:
		result.Details = ParseJobDetails(messages)
	case TaskApplyToJob:
		result.ApplicationID = fmt.Sprintf("app_%d", time.Now().UnixMilli())
	case TaskSearchPeople, TaskFindAndMessageAll:
		result.People = ParsePeople(messages)
	case TaskSendMessage, TaskSendConnectionRequest:
		result.Sent = true
	case TaskFilterAndSendOutreach:
		result.MessagesSent = len(sentConfirmationRe.FindAllString(joinedContent(messages), -1))
	case TaskCheckMessages:
		content := joinedContent(messages)
		result.HasNewMessages = strings.Contains(content, "response") || strings.Contains(content, "message")
		if result.HasNewMessages {
			for i := len(messages) - 1; i >= 0; i-- {
				if messages[i].Type == MessageDone {
					result.LatestMessage = messages[i].Content
					break
				}
			}
		}
	}

	return result
}
