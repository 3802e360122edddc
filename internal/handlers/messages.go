package handlers

import (
	"context"
	"net/http"

	"github.com/privchat/privchat-backend/internal/models"
)

type conversationFinder interface {
	FindConversation(ctx context.Context, username string) ([]models.Message, error)
}

// MessageHandlers exposes persisted message history. History is the
// system of record; clients that missed live pushes (offline devices)
// catch up here.
type MessageHandlers struct {
	store conversationFinder
}

func NewMessageHandlers(store conversationFinder) *MessageHandlers {
	return &MessageHandlers{store: store}
}

// GetMessages handles GET /messages?username= and returns every message the
// user sent or received.
func (h *MessageHandlers) GetMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.store.FindConversation(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}
