// Package api provides HTTP handlers for the JobAgent API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"jobagent/internal/conversation"
	"jobagent/internal/domain"
	"jobagent/internal/jobs"
	"jobagent/internal/networking"
	"jobagent/internal/resume"
	"jobagent/internal/store"
)

// Handler provides common handler utilities and dependencies.
type Handler struct {
	repo         store.Repository
	conversation *conversation.Service
	jobs         *jobs.Service
	networking   *networking.Service
	resume       *resume.Parser
	events       *EventLog
	logger       *slog.Logger
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, conv *conversation.Service, jobSvc *jobs.Service, netSvc *networking.Service, parser *resume.Parser, events *EventLog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		repo:         repo,
		conversation: conv,
		jobs:         jobSvc,
		networking:   netSvc,
		resume:       parser,
		events:       events,
		logger:       logger,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]interface{}{"success": false, "error": message})
}

// writeDomainError maps domain errors onto HTTP status codes. Unexpected
// errors are logged and hidden behind a generic 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		Error(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode parses a JSON request body.
func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
