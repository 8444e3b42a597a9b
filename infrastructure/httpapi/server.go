// Package httpapi exposes the REST and websocket surface of the service.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Mohammad-Harkous/chat-app/auth"
	"github.com/Mohammad-Harkous/chat-app/observability"
)

type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Conversations *ConversationHandler
	Messages      *MessageHandler
	WS            *WSHandler
}

// NewRouter builds the full HTTP surface: public auth routes, the
// token-guarded API, the websocket endpoint and the health probes.
func NewRouter(tokens *auth.TokenService, monitor *observability.Monitor,
	handlers Handlers, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Post("/auth/register", handlers.Auth.Register)
	r.Post("/auth/login", handlers.Auth.Login)

	r.Get("/ws", handlers.WS.ServeHTTP)

	r.Get("/health/stats", func(w http.ResponseWriter, req *http.Request) {
		respondJSON(w, log, http.StatusOK, monitor.Latest())
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(tokens))

		r.Get("/users/me", handlers.Users.Me)
		r.Get("/users/search", handlers.Users.Search)

		r.Post("/conversations/start", handlers.Conversations.Start)
		r.Get("/conversations", handlers.Conversations.List)
		r.Delete("/conversations/{conversationID}", handlers.Conversations.Delete)
		r.Get("/conversations/{conversationID}/messages", handlers.Conversations.Messages)

		r.Post("/messages", handlers.Messages.Send)
	})

	return r
}
