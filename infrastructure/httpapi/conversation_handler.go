package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
	"github.com/Mohammad-Harkous/chat-app/services"
)

type ConversationHandler struct {
	conversations services.IConversationService
	messages      services.IMessageService
	log           *slog.Logger
}

func NewConversationHandler(conversations services.IConversationService, messages services.IMessageService, log *slog.Logger) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, messages: messages, log: log}
}

type startConversationRequest struct {
	UserID uuid.UUID `json:"userId"`
}

func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req startConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, h.log, fmt.Errorf("%w: userId is required", apperrors.ErrInvalidArgument))
		return
	}

	conversation, err := h.conversations.CreateOrGet(userID, req.UserID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusCreated, conversation)
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	conversations, err := h.conversations.ListForUser(userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, conversations)
}

type deleteConversationResponse struct {
	Success bool `json:"success"`
}

func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		respondError(w, h.log, fmt.Errorf("%w: invalid conversation id", apperrors.ErrInvalidArgument))
		return
	}

	if err := h.conversations.SoftDelete(conversationID, userID); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, deleteConversationResponse{Success: true})
}

func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		respondError(w, h.log, fmt.Errorf("%w: invalid conversation id", apperrors.ErrInvalidArgument))
		return
	}

	messages, err := h.messages.ListForConversation(conversationID, userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, messages)
}
