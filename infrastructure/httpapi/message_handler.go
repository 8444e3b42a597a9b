package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
	"github.com/Mohammad-Harkous/chat-app/services"
)

type MessageHandler struct {
	messages services.IMessageService
	log      *slog.Logger
}

func NewMessageHandler(messages services.IMessageService, log *slog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, log: log}
}

type sendMessageRequest struct {
	ConversationID uuid.UUID `json:"conversationId"`
	Content        string    `json:"content"`
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if req.ConversationID == uuid.Nil {
		respondError(w, h.log, fmt.Errorf("%w: conversationId is required", apperrors.ErrInvalidArgument))
		return
	}

	message, err := h.messages.Send(req.ConversationID, userID, req.Content)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusCreated, message)
}
