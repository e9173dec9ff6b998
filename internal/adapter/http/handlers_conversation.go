package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/synod-io/synod/internal/domain/conversation"
)

// CreateConversation handles POST /api/v1/conversations. A request carrying
// a message runs a full deliberation turn before responding.
func (h *Handlers) CreateConversation(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[conversation.CreateRequest](w, r)
	if !ok {
		return
	}
	detail, err := h.Conversations.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "create conversation")
		return
	}
	if detail.Messages == nil {
		detail.Messages = []conversation.Message{}
	}
	writeJSON(w, http.StatusCreated, detail)
}

// ListConversations handles GET /api/v1/conversations
func (h *Handlers) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.Conversations.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if conversations == nil {
		conversations = []conversation.Conversation{}
	}
	writeJSON(w, http.StatusOK, conversations)
}

// GetConversation handles GET /api/v1/conversations/{id}
func (h *Handlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail, err := h.Conversations.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	if detail.Messages == nil {
		detail.Messages = []conversation.Message{}
	}
	writeJSON(w, http.StatusOK, detail)
}

// RenameConversation handles PATCH /api/v1/conversations/{id}
func (h *Handlers) RenameConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, ok := readJSON[struct {
		Title string `json:"title"`
	}](w, r)
	if !ok {
		return
	}
	if err := h.Conversations.Rename(r.Context(), id, req.Title); err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteConversation handles DELETE /api/v1/conversations/{id}
func (h *Handlers) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Conversations.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage handles POST /api/v1/conversations/{id}/messages. The call
// blocks while the council deliberates; stage progress streams over the
// WebSocket meanwhile. The response is the stored assistant message with
// the turn artifacts attached.
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, ok := readJSON[conversation.SendMessageRequest](w, r)
	if !ok {
		return
	}

	msg, err := h.Conversations.SendMessage(r.Context(), id, req)
	if err != nil {
		// A persistence failure after a completed deliberation still
		// carries the synthesis; return it with the failure status so the
		// answer is not lost.
		if msg != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":   "failed to store assistant message",
				"message": msg,
			})
			return
		}
		writeDomainError(w, err, "conversation not found")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
