package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Mohammad-Harkous/chat-app/auth"
	"github.com/Mohammad-Harkous/chat-app/domain"
	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
	"github.com/Mohammad-Harkous/chat-app/services"
)

type AuthHandler struct {
	auth services.IAuthService
	log  *slog.Logger
}

func NewAuthHandler(authService services.IAuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, log: log}
}

type loginResponse struct {
	User        domain.Profile `json:"user"`
	AccessToken string         `json:"accessToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	profile, err := h.auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusCreated, profile)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	profile, token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, loginResponse{User: profile, AccessToken: string(token)})
}
