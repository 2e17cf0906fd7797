package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobagent/internal/domain"
)

const initialGreeting = `Hey! I've got your resume. Just need a couple quick things to find you some jobs.

What kind of role are you looking for? (Just something general like "engineer" or "designer" is fine)`

type messageRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// PostMessage handles POST /api/agent/message: one conversation turn.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Message == "" {
		Error(w, http.StatusBadRequest, "userId and message are required")
		return
	}

	channel := domain.ChannelText
	if req.Type == string(domain.ChannelVoice) {
		channel = domain.ChannelVoice
	}

	h.logger.Info("received message", "user_id", req.UserID)
	result, err := h.conversation.ProcessMessage(r.Context(), req.UserID, req.Message, channel)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"response": result.Response,
		"state":    result.State,
		"metadata": result.Metadata,
	})
}

type initializeRequest struct {
	UserID      string          `json:"userId"`
	ProfileData *domain.Profile `json:"profileData"`
}

// Initialize handles POST /api/agent/initialize: seeds a conversation for a
// new user, usually right after a resume upload.
func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		Error(w, http.StatusBadRequest, "userId is required")
		return
	}

	var draft domain.Profile
	if req.ProfileData != nil {
		draft = *req.ProfileData
		draft.ID = req.UserID
		if err := h.repo.UpsertProfile(r.Context(), &draft); err != nil {
			h.writeDomainError(w, err)
			return
		}
	}

	state, err := h.conversation.InitializeConversation(r.Context(), req.UserID, draft)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"state":    state,
		"greeting": initialGreeting,
	})
}

// GetConversation handles GET /api/agent/conversation/{userId}: history plus
// current state.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	messages, err := h.conversation.GetHistory(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	state, err := h.repo.GetConversationState(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"messages": messages,
		"state":    state,
	})
}

// ClearConversation handles DELETE /api/agent/conversation/{userId}.
func (h *Handler) ClearConversation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := h.conversation.ClearConversation(r.Context(), userID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
