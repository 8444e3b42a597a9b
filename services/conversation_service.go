package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Mohammad-Harkous/chat-app/domain"
	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
	"github.com/Mohammad-Harkous/chat-app/repositories"
)

// IConversationService is the conversation ledger: one durable thread per
// unordered user pair.
type IConversationService interface {
	CreateOrGet(userID, otherUserID uuid.UUID) (domain.Conversation, error)
	ListForUser(userID uuid.UUID) ([]domain.Conversation, error)
	FindByID(id uuid.UUID) (domain.Conversation, error)
	SoftDelete(conversationID, userID uuid.UUID) error
}

type ConversationService struct {
	conversations repositories.IConversationRepository
	users         repositories.IUserRepository
}

func NewConversationService(conversations repositories.IConversationRepository,
	users repositories.IUserRepository) IConversationService {
	return &ConversationService{conversations: conversations, users: users}
}

// CreateOrGet is idempotent per unordered pair: both (A,B) and (B,A) resolve
// to the same conversation. The storage layer absorbs the create race; a
// duplicate-pair conflict is never surfaced here.
func (s *ConversationService) CreateOrGet(userID, otherUserID uuid.UUID) (domain.Conversation, error) {
	if userID == otherUserID {
		return domain.Conversation{}, fmt.Errorf("%w: cannot start a conversation with yourself", apperrors.ErrInvalidOperation)
	}

	if _, err := s.users.FindByID(userID); err != nil {
		return domain.Conversation{}, fmt.Errorf("user %s: %w", userID, err)
	}
	if _, err := s.users.FindByID(otherUserID); err != nil {
		return domain.Conversation{}, fmt.Errorf("user %s: %w", otherUserID, err)
	}

	return s.conversations.CreateOrGet(userID, otherUserID)
}

func (s *ConversationService) ListForUser(userID uuid.UUID) ([]domain.Conversation, error) {
	return s.conversations.ListForUser(userID)
}

func (s *ConversationService) FindByID(id uuid.UUID) (domain.Conversation, error) {
	return s.conversations.FindByID(id)
}

func (s *ConversationService) SoftDelete(conversationID, userID uuid.UUID) error {
	return s.conversations.SoftDelete(conversationID, userID)
}
