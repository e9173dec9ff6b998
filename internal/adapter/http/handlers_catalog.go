package http

import (
	"net/http"

	"github.com/synod-io/synod/internal/domain/catalog"
	"github.com/synod-io/synod/internal/service"
)

// ListModels handles GET /api/v1/models
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.Catalog.ListModels(r.Context())
	if err != nil {
		writeDomainError(w, err, "model catalog unavailable")
		return
	}
	if models == nil {
		models = []catalog.ModelInfo{}
	}
	writeJSON(w, http.StatusOK, models)
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *Handlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Scores.Leaderboard(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if entries == nil {
		entries = []service.ScoreEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
