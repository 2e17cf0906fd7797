package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// WebhookEvent is one inbound event from the browser-automation backend.
type WebhookEvent struct {
	Event      string          `json:"event"`
	Session    WebhookSession  `json:"session"`
	Message    string          `json:"message,omitempty"`
	Question   string          `json:"question,omitempty"`
	Error      string          `json:"error,omitempty"`
	OldStatus  string          `json:"old_status,omitempty"`
	NewStatus  string          `json:"new_status,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// WebhookSession identifies the remote session an event belongs to.
type WebhookSession struct {
	ID string `json:"id"`
}

const (
	defaultEventTTL      = 30 * time.Minute
	eventSweeperInterval = 5 * time.Minute

	// maxEventsPerSession caps one session's log so a chatty agent cannot
	// grow it without bound within the TTL window.
	maxEventsPerSession = 200
)

type sessionEvents struct {
	events    []WebhookEvent
	expiresAt time.Time
}

// EventLog is a TTL-evicted, per-session log of inbound webhook events.
// Sessions are dropped when their backend session is deleted, and otherwise
// expire a fixed interval after the last event.
type EventLog struct {
	mu       sync.Mutex
	sessions map[string]*sessionEvents
	ttl      time.Duration
	logger   *slog.Logger
}

// NewEventLog creates an event log. A non-positive ttl uses the default.
func NewEventLog(ttl time.Duration, logger *slog.Logger) *EventLog {
	if ttl <= 0 {
		ttl = defaultEventTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLog{
		sessions: make(map[string]*sessionEvents),
		ttl:      ttl,
		logger:   logger,
	}
}

// Append records an event, refreshing the session's expiry.
func (l *EventLog) Append(sessionID string, event WebhookEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sessions[sessionID]
	if !ok {
		s = &sessionEvents{}
		l.sessions[sessionID] = s
	}
	s.events = append(s.events, event)
	if len(s.events) > maxEventsPerSession {
		s.events = s.events[len(s.events)-maxEventsPerSession:]
	}
	s.expiresAt = time.Now().Add(l.ttl)
}

// Get returns a copy of a session's events in arrival order.
func (l *EventLog) Get(sessionID string) []WebhookEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]WebhookEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Delete drops a session's events immediately.
func (l *EventLog) Delete(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, sessionID)
}

// StartSweeper runs a background goroutine that evicts expired sessions
// until the context is canceled.
func (l *EventLog) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(eventSweeperInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (l *EventLog) sweep() {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for id, s := range l.sessions {
		if now.After(s.expiresAt) {
			delete(l.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		l.logger.Info("evicted expired webhook sessions", "count", evicted)
	}
}
