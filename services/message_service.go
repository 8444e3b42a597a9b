package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Mohammad-Harkous/chat-app/domain"
	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
	"github.com/Mohammad-Harkous/chat-app/moderation"
	"github.com/Mohammad-Harkous/chat-app/repositories"
)

// IMessageService is the message store: durable, ordered, participant-only.
type IMessageService interface {
	Send(conversationID, senderID uuid.UUID, content string) (domain.Message, error)
	ListForConversation(conversationID, requestingUserID uuid.UUID) ([]domain.Message, error)
}

type MessageService struct {
	messages      repositories.IMessageRepository
	conversations repositories.IConversationRepository
	users         repositories.IUserRepository
	moderator     *moderation.Moderator // nil when no word list is configured
	log           *slog.Logger
}

func NewMessageService(messages repositories.IMessageRepository,
	conversations repositories.IConversationRepository,
	users repositories.IUserRepository,
	moderator *moderation.Moderator,
	log *slog.Logger) IMessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		users:         users,
		moderator:     moderator,
		log:           log,
	}
}

// Send persists a message and bumps the conversation's last-activity time to
// the message's own timestamp. Order of guards follows the ledger contract:
// conversation existence, participation, sender resolution, content.
func (s *MessageService) Send(conversationID, senderID uuid.UUID, content string) (domain.Message, error) {
	conversation, err := s.conversations.FindByID(conversationID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("conversation %s: %w", conversationID, err)
	}

	if !conversation.HasParticipant(senderID) {
		return domain.Message{}, fmt.Errorf("%w: not a participant of this conversation", apperrors.ErrForbidden)
	}

	sender, err := s.users.FindByID(senderID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("sender %s: %w", senderID, err)
	}

	if strings.TrimSpace(content) == "" {
		return domain.Message{}, fmt.Errorf("%w: message content is empty", apperrors.ErrInvalidArgument)
	}

	content = s.censor(senderID, content)

	stored, err := s.messages.Store(conversationID, senderID, content, time.Now().UTC())
	if err != nil {
		return domain.Message{}, err
	}

	if err := s.conversations.Touch(conversationID, stored.CreatedAt); err != nil {
		// The message is durable; a failed bump only degrades list ordering.
		s.log.Error("failed to touch conversation",
			"conversation_id", conversationID, "error", err)
	}

	return stored.WithSender(sender.Profile()), nil
}

// ListForConversation returns all messages oldest first, each with its
// sender resolved. Same guards as Send.
func (s *MessageService) ListForConversation(conversationID, requestingUserID uuid.UUID) ([]domain.Message, error) {
	conversation, err := s.conversations.FindByID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, err)
	}

	if !conversation.HasParticipant(requestingUserID) {
		return nil, fmt.Errorf("%w: not a participant of this conversation", apperrors.ErrForbidden)
	}

	stored, err := s.messages.ListForConversation(conversationID)
	if err != nil {
		return nil, err
	}

	// Both senders are necessarily the two participants; join against the
	// snapshots already resolved by the ledger.
	profiles := map[uuid.UUID]domain.Profile{
		conversation.Participant1.ID: conversation.Participant1,
		conversation.Participant2.ID: conversation.Participant2,
	}
	return lo.Map(stored, func(m repositories.StoredMessage, _ int) domain.Message {
		return m.WithSender(profiles[m.SenderID])
	}), nil
}

func (s *MessageService) censor(senderID uuid.UUID, content string) string {
	if s.moderator == nil {
		return content
	}
	censored, matched := s.moderator.Censor(content)
	if matched {
		info := whatlanggo.Detect(content)
		s.log.Warn("censored message content",
			"sender_id", senderID,
			"lang", info.Lang.Iso6391())
	}
	return censored
}
