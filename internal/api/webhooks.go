package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// AgentWebhook handles POST /api/webhooks/agi: inbound async events from the
// browser-automation backend. Always acknowledges with 200 so the sender
// does not retry.
func (h *Handler) AgentWebhook(w http.ResponseWriter, r *http.Request) {
	var event WebhookEvent
	if err := decode(r, &event); err != nil {
		h.logger.Error("webhook decode failed", "error", err)
		JSON(w, http.StatusOK, map[string]string{"status": "error", "message": "invalid payload"})
		return
	}
	event.ReceivedAt = time.Now()

	h.logger.Info("agent webhook received", "event", event.Event, "session_id", event.Session.ID)

	switch event.Event {
	case "session.deleted":
		h.events.Delete(event.Session.ID)
	case "task.error":
		h.logger.Error("agent task error reported", "session_id", event.Session.ID, "error", event.Error)
		h.events.Append(event.Session.ID, event)
	default:
		h.events.Append(event.Session.ID, event)
	}

	JSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// GetWebhookEvents handles GET /api/webhooks/agi/{sessionId}: the buffered
// events for a session, for debugging.
func (h *Handler) GetWebhookEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	JSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"sessionId": sessionID,
		"events":    h.events.Get(sessionID),
	})
}
