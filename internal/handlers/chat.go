package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"sideio-backend/internal/models"
	"sideio-backend/internal/services"
)

type chatReplier interface {
	Reply(ctx context.Context, req models.ChatRequest) (string, error)
}

type ChatHandler struct {
	chat chatReplier
}

func NewChatHandler(chat chatReplier) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat answers POST /api/chat. Every response, including failures, has
// the {"reply": ...} shape so the widget can render it as a turn.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	var req models.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.Printf("[CHAT %s] invalid request body: %v", requestID, err)
		writeJSON(w, http.StatusBadRequest, models.ChatResponse{Reply: services.MessageInvalidRequest})
		return
	}

	log.Printf("[CHAT %s] incoming: %q (%d prior turns)", requestID, preview(req.Message, 50), len(req.History))

	reply, err := h.chat.Reply(r.Context(), req)
	if err != nil {
		var validationErr *services.ValidationError
		var providerErr *services.ProviderError
		switch {
		case errors.As(err, &validationErr):
			writeJSON(w, http.StatusBadRequest, models.ChatResponse{Reply: services.MessageInvalidRequest})
		case errors.As(err, &providerErr):
			log.Printf("[CHAT %s] Logic Core failure (%s): %v", requestID, providerErr.Kind, providerErr.Err)
			writeJSON(w, http.StatusInternalServerError, models.ChatResponse{Reply: services.UserMessage(providerErr.Kind)})
		default:
			log.Printf("[CHAT %s] Logic Core failure: %v", requestID, err)
			writeJSON(w, http.StatusInternalServerError, models.ChatResponse{Reply: services.MessageUnknown})
		}
		return
	}

	log.Printf("[CHAT %s] inference complete", requestID)
	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
