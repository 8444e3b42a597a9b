package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/Mohammad-Harkous/chat-app/auth"
	"github.com/Mohammad-Harkous/chat-app/runtime"
	"github.com/Mohammad-Harkous/chat-app/sink"
)

// WSHandler upgrades authenticated clients to a websocket and bridges the
// connection to the delivery router: inbound frames become router calls,
// router events are written back as {event, data} envelopes.
type WSHandler struct {
	tokens          *auth.TokenService
	router          *runtime.Router
	log             *slog.Logger
	bufferSize      int
	deliveryTimeout time.Duration
}

func NewWSHandler(tokens *auth.TokenService, router *runtime.Router, log *slog.Logger,
	bufferSize int, deliveryTimeout time.Duration) *WSHandler {
	return &WSHandler{
		tokens:          tokens,
		router:          router,
		log:             log,
		bufferSize:      bufferSize,
		deliveryTimeout: deliveryTimeout,
	}
}

type clientEnvelope struct {
	Event string          `json:"event"`
	Data  clientEventData `json:"data"`
}

type clientEventData struct {
	ConversationID uuid.UUID `json:"conversationId"`
	Content        string    `json:"content"`
}

type serverEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subject, err := h.tokens.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn("websocket accept failed", "user_id", userID, "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	connSink := sink.NewChannelSink(h.log, h.bufferSize, h.deliveryTimeout)
	generation := h.router.Connect(ctx, userID, connSink)
	// The request context is gone once the socket dies, but the offline
	// broadcast still has to reach the remaining peers.
	defer h.router.Disconnect(context.Background(), userID, generation)

	go h.readLoop(ctx, cancel, conn, userID)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case evt := <-connSink.Events:
			writeCtx, writeCancel := context.WithTimeout(ctx, h.deliveryTimeout)
			err := wsjson.Write(writeCtx, conn, serverEnvelope{Event: evt.EventName(), Data: evt})
			writeCancel()
			if err != nil {
				h.log.Debug("websocket write failed", "user_id", userID, "error", err)
				return
			}
		}
	}
}

func (h *WSHandler) readLoop(ctx context.Context, cancel context.CancelFunc,
	conn *websocket.Conn, userID uuid.UUID) {
	defer cancel()

	for {
		var env clientEnvelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			if !errors.Is(err, context.Canceled) {
				h.log.Debug("websocket read ended", "user_id", userID, "error", err)
			}
			return
		}

		switch env.Event {
		case "sendMessage":
			h.router.SendMessage(ctx, userID, env.Data.ConversationID, env.Data.Content)
		case "typing":
			h.router.Typing(ctx, userID, env.Data.ConversationID)
		default:
			h.log.Debug("unknown client event", "user_id", userID, "event", env.Event)
		}
	}
}
