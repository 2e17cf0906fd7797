package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobagent/internal/domain"
)

type contactSearchRequest struct {
	ApplicationID string `json:"applicationId"`
	MaxContacts   int    `json:"maxContacts"`
}

// SearchContacts handles POST /api/networking/search-contacts. The returned
// people are not persisted; the client passes them back to reach-out.
func (h *Handler) SearchContacts(w http.ResponseWriter, r *http.Request) {
	var req contactSearchRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ApplicationID == "" {
		Error(w, http.StatusBadRequest, "applicationId is required")
		return
	}

	people, err := h.networking.SearchContacts(r.Context(), req.ApplicationID, req.MaxContacts)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "people": people})
}

type reachOutRequest struct {
	ApplicationID   string          `json:"applicationId"`
	SelectedIndexes []int           `json:"selectedIndexes"`
	AllPeople       []domain.Person `json:"allPeople"`
}

// ReachOut handles POST /api/networking/reach-out: batched outreach to the
// selected people from a prior search.
func (h *Handler) ReachOut(w http.ResponseWriter, r *http.Request) {
	var req reachOutRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ApplicationID == "" {
		Error(w, http.StatusBadRequest, "applicationId is required")
		return
	}
	if req.SelectedIndexes == nil {
		Error(w, http.StatusBadRequest, "selectedIndexes array is required")
		return
	}
	if req.AllPeople == nil {
		Error(w, http.StatusBadRequest, "allPeople array is required (pass the people data from search-contacts)")
		return
	}

	contacts, err := h.networking.ReachOut(r.Context(), req.ApplicationID, req.SelectedIndexes, req.AllPeople)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "contactsReachedOut": contacts})
}

// AutoOutreach handles POST /api/networking/auto-outreach: find and contact
// people at the company in one session, no per-person review.
func (h *Handler) AutoOutreach(w http.ResponseWriter, r *http.Request) {
	var req contactSearchRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ApplicationID == "" {
		Error(w, http.StatusBadRequest, "applicationId is required")
		return
	}

	contacts, err := h.networking.FindAndReachOutAll(r.Context(), req.ApplicationID, req.MaxContacts)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "contactsReachedOut": contacts})
}

type checkResponsesRequest struct {
	ContactIDs []string `json:"contactIds"`
}

// CheckResponses handles POST /api/networking/check-responses.
func (h *Handler) CheckResponses(w http.ResponseWriter, r *http.Request) {
	var req checkResponsesRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ContactIDs == nil {
		Error(w, http.StatusBadRequest, "contactIds array is required")
		return
	}

	contacts, err := h.networking.CheckResponses(r.Context(), req.ContactIDs)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "contacts": contacts})
}

// ListContacts handles GET /api/networking/{applicationId}.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.networking.ListContacts(r.Context(), chi.URLParam(r, "applicationId"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "contacts": contacts})
}
