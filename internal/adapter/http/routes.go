package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Model catalog and scores
		r.Get("/models", h.ListModels)
		r.Get("/leaderboard", h.Leaderboard)

		// Conversations
		r.Get("/conversations", h.ListConversations)
		r.Post("/conversations", h.CreateConversation)
		r.Get("/conversations/{id}", h.GetConversation)
		r.Patch("/conversations/{id}", h.RenameConversation)
		r.Delete("/conversations/{id}", h.DeleteConversation)
		r.Post("/conversations/{id}/messages", h.SendMessage)
	})
}
