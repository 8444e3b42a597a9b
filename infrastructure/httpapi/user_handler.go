package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
	"github.com/Mohammad-Harkous/chat-app/services"
)

type UserHandler struct {
	directory services.IDirectoryService
	log       *slog.Logger
}

func NewUserHandler(directory services.IDirectoryService, log *slog.Logger) *UserHandler {
	return &UserHandler{directory: directory, log: log}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	profile, err := h.directory.FindByID(userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, profile)
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		respondError(w, h.log, fmt.Errorf("%w: query parameter is required", apperrors.ErrInvalidArgument))
		return
	}

	profiles, err := h.directory.Search(r.Context(), query, userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, profiles)
}
