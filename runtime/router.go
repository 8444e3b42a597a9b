package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Mohammad-Harkous/chat-app/contract"
	"github.com/Mohammad-Harkous/chat-app/domain/event"
	"github.com/Mohammad-Harkous/chat-app/repositories"
	"github.com/Mohammad-Harkous/chat-app/services"
)

// Router reconciles the durable stores with the live delivery layer: it
// tracks presence, broadcasts status changes, and fans out message and
// typing events to the correct peer connection. Delivery is best effort and
// at most once; an offline recipient's message stays durable and is simply
// not pushed.
type Router struct {
	presence      contract.IPresence
	users         repositories.IUserRepository
	conversations services.IConversationService
	messages      services.IMessageService
	log           *slog.Logger
}

func NewRouter(presence contract.IPresence,
	users repositories.IUserRepository,
	conversations services.IConversationService,
	messages services.IMessageService,
	log *slog.Logger) *Router {
	return &Router{
		presence:      presence,
		users:         users,
		conversations: conversations,
		messages:      messages,
		log:           log,
	}
}

// Connect registers an authenticated connection, flips the durable online
// flag, and announces the user to every connected peer. The returned
// generation must be handed back to Disconnect.
func (r *Router) Connect(ctx context.Context, userID uuid.UUID, sink contract.EventSink) uint64 {
	generation := r.presence.Register(userID, sink)

	if err := r.users.SetOnline(userID, true, time.Now().UTC()); err != nil {
		r.log.Error("failed to mark user online", "user_id", userID, "error", err)
	}

	r.broadcast(ctx, event.UserStatus{UserID: userID, Status: event.StatusOnline})
	r.log.Info("user connected", "user_id", userID, "generation", generation)
	return generation
}

// Disconnect tears down a connection. A stale generation (the user
// reconnected and the entry was superseded) leaves presence and the online
// flag alone: the newer connection owns them now.
func (r *Router) Disconnect(ctx context.Context, userID uuid.UUID, generation uint64) {
	if !r.presence.Unregister(userID, generation) {
		r.log.Debug("stale connection disconnect ignored",
			"user_id", userID, "generation", generation)
		return
	}

	if err := r.users.SetOnline(userID, false, time.Now().UTC()); err != nil {
		r.log.Error("failed to mark user offline", "user_id", userID, "error", err)
	}

	r.broadcast(ctx, event.UserStatus{UserID: userID, Status: event.StatusOffline})
	r.log.Info("user disconnected", "user_id", userID)
}

// SendMessage persists through the message store, then pushes the event to
// the other participant when they are reachable and always echoes it back to
// the sender. A failed persist is reported to the sender as a sendFailed
// event instead of an error: the live path never blocks on failures.
func (r *Router) SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, content string) {
	message, err := r.messages.Send(conversationID, senderID, content)
	if err != nil {
		r.log.Warn("live send failed",
			"sender_id", senderID, "conversation_id", conversationID, "error", err)
		r.pushTo(ctx, senderID, event.SendFailed{
			ConversationID: conversationID,
			Reason:         err.Error(),
			At:             time.Now().UTC(),
		})
		return
	}

	evt := event.NewMessage{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.Sender.ID,
		SenderUsername: message.Sender.Username,
		Content:        message.Content,
		At:             message.CreatedAt,
	}

	conversation, err := r.conversations.FindByID(conversationID)
	if err != nil {
		r.log.Error("conversation vanished after send",
			"conversation_id", conversationID, "error", err)
	} else if other, ok := conversation.OtherParticipant(senderID); ok {
		r.pushTo(ctx, other.ID, evt)
	}

	// Echo to the originating connection as delivery confirmation.
	r.pushTo(ctx, senderID, evt)
}

// Typing forwards a typing notification to the other participant. Best
// effort only: an unknown conversation or a non-participant sender drops the
// event silently.
func (r *Router) Typing(ctx context.Context, fromUserID, conversationID uuid.UUID) {
	conversation, err := r.conversations.FindByID(conversationID)
	if err != nil {
		r.log.Debug("typing for unknown conversation dropped",
			"conversation_id", conversationID)
		return
	}

	other, ok := conversation.OtherParticipant(fromUserID)
	if !ok {
		return
	}
	r.pushTo(ctx, other.ID, event.UserTyping{
		From:           fromUserID,
		ConversationID: conversationID,
	})
}

func (r *Router) pushTo(ctx context.Context, userID uuid.UUID, evt event.DomainEvent) {
	sink, ok := r.presence.Lookup(userID)
	if !ok {
		return
	}
	if err := sink.Consume(ctx, evt); err != nil {
		r.log.Warn("live push failed",
			"user_id", userID, "event", evt.EventName(), "error", err)
	}
}

func (r *Router) broadcast(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range r.presence.Sinks() {
		if err := sink.Consume(ctx, evt); err != nil {
			r.log.Debug("broadcast delivery failed", "event", evt.EventName(), "error", err)
		}
	}
}
