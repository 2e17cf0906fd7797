package api

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the API surface on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.Health)

	r.Route("/api/agent", func(r chi.Router) {
		r.Post("/message", h.PostMessage)
		r.Post("/initialize", h.Initialize)
		r.Get("/conversation/{userId}", h.GetConversation)
		r.Delete("/conversation/{userId}", h.ClearConversation)
	})

	r.Route("/api/jobs", func(r chi.Router) {
		r.Post("/search-and-apply", h.SearchAndApply)
		r.Get("/applications/{profileId}", h.ListApplications)
		r.Route("/application/{id}", func(r chi.Router) {
			r.Get("/", h.GetApplication)
			r.Post("/details", h.FetchDetails)
			r.Post("/cover-letter", h.GenerateCoverLetter)
			r.Post("/cover-letter/approve", h.ApproveCoverLetter)
			r.Post("/submit", h.SubmitApplication)
		})
	})

	r.Route("/api/networking", func(r chi.Router) {
		r.Post("/search-contacts", h.SearchContacts)
		r.Post("/reach-out", h.ReachOut)
		r.Post("/auto-outreach", h.AutoOutreach)
		r.Post("/check-responses", h.CheckResponses)
		r.Get("/{applicationId}", h.ListContacts)
	})

	r.Route("/api/profile", func(r chi.Router) {
		r.Post("/", h.UpsertProfile)
		r.Get("/{id}", h.GetProfile)
	})

	r.Post("/api/resume/upload", h.UploadResume)

	r.Route("/api/webhooks", func(r chi.Router) {
		r.Post("/agi", h.AgentWebhook)
		r.Get("/agi/{sessionId}", h.GetWebhookEvents)
	})
}
