package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"jobagent/internal/domain"
)

// UpsertProfile handles POST /api/profile: create or replace a profile.
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.Profile
	if err := decode(r, &profile); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if profile.ID == "" {
		Error(w, http.StatusBadRequest, "id is required")
		return
	}

	profile.UpdatedAt = time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = profile.UpdatedAt
	}
	if err := h.repo.UpsertProfile(r.Context(), &profile); err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "profile": profile})
}

// GetProfile handles GET /api/profile/{id}.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.repo.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "profile": profile})
}

type resumeUploadRequest struct {
	UserID     string `json:"userId"`
	ResumeText string `json:"resumeText"`
}

// UploadResume handles POST /api/resume/upload: parse resume text into a
// profile draft, persist it and seed the conversation. Extracting text from
// the uploaded file happens client-side.
func (h *Handler) UploadResume(w http.ResponseWriter, r *http.Request) {
	var req resumeUploadRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.ResumeText == "" {
		Error(w, http.StatusBadRequest, "userId and resumeText are required")
		return
	}

	profile, err := h.resume.Parse(r.Context(), req.ResumeText)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	profile.ID = req.UserID
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt

	if err := h.repo.UpsertProfile(r.Context(), profile); err != nil {
		h.writeDomainError(w, err)
		return
	}
	state, err := h.conversation.InitializeConversation(r.Context(), req.UserID, *profile)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"profile":  profile,
		"state":    state,
		"greeting": initialGreeting,
	})
}
