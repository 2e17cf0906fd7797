package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type searchRequest struct {
	UserID string `json:"userId"`
	Limit  int    `json:"limit"`
}

// SearchAndApply handles POST /api/jobs/search-and-apply: run the platform
// search and record every hit as a pending application.
func (h *Handler) SearchAndApply(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		Error(w, http.StatusBadRequest, "userId is required")
		return
	}

	apps, err := h.jobs.SearchJobs(r.Context(), req.UserID, req.Limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"jobsFound":    len(apps),
		"applications": apps,
	})
}

// ListApplications handles GET /api/jobs/applications/{profileId}.
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.jobs.List(r.Context(), chi.URLParam(r, "profileId"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "applications": apps})
}

// GetApplication handles GET /api/jobs/application/{id}.
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "application": app})
}

// FetchDetails handles POST /api/jobs/application/{id}/details: enrich the
// application with the long-form posting content.
func (h *Handler) FetchDetails(w http.ResponseWriter, r *http.Request) {
	app, err := h.jobs.FetchJobDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "application": app})
}

type coverLetterRequest struct {
	Feedback string `json:"feedback"`
}

// GenerateCoverLetter handles POST /api/jobs/application/{id}/cover-letter.
// A non-empty feedback field makes it a revision.
func (h *Handler) GenerateCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req coverLetterRequest
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	app, err := h.jobs.GenerateCoverLetter(r.Context(), chi.URLParam(r, "id"), req.Feedback)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "application": app})
}

// ApproveCoverLetter handles POST /api/jobs/application/{id}/cover-letter/approve.
func (h *Handler) ApproveCoverLetter(w http.ResponseWriter, r *http.Request) {
	app, err := h.jobs.ApproveCoverLetter(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "application": app})
}

// SubmitApplication handles POST /api/jobs/application/{id}/submit. Rejected
// with 409 unless the cover letter has been approved.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.jobs.SubmitApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "application": app})
}
