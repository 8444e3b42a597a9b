package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
)

func Test_Start_Conversation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	authService := NewAuthService(f.users, f.tokens)
	service := NewConversationService(f.conversations, f.users)

	alice := f.register(t, authService, "alice", "alice@example.com")
	bob := f.register(t, authService, "bob", "bob@example.com")

	conv, err := service.CreateOrGet(alice.ID, bob.ID)
	req.NoError(err)
	req.True(conv.HasParticipant(alice.ID))

	other, ok := conv.OtherParticipant(alice.ID)
	req.True(ok)
	req.Equal(bob.ID, other.ID)

	// Restarting resolves to the same conversation.
	again, err := service.CreateOrGet(bob.ID, alice.ID)
	req.NoError(err)
	req.Equal(conv.ID, again.ID)
}

func Test_Start_Conversation_Guards(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	authService := NewAuthService(f.users, f.tokens)
	service := NewConversationService(f.conversations, f.users)

	alice := f.register(t, authService, "alice", "alice@example.com")

	// With yourself.
	_, err := service.CreateOrGet(alice.ID, alice.ID)
	req.ErrorIs(err, apperrors.ErrInvalidOperation)

	// With a user that does not exist.
	_, err = service.CreateOrGet(alice.ID, uuid.New())
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func Test_SoftDelete_Hides_For_Deleter_Only(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	authService := NewAuthService(f.users, f.tokens)
	service := NewConversationService(f.conversations, f.users)

	alice := f.register(t, authService, "alice", "alice@example.com")
	bob := f.register(t, authService, "bob", "bob@example.com")

	conv, err := service.CreateOrGet(alice.ID, bob.ID)
	req.NoError(err)

	req.NoError(service.SoftDelete(conv.ID, alice.ID))

	aliceList, err := service.ListForUser(alice.ID)
	req.NoError(err)
	req.Empty(aliceList)

	bobList, err := service.ListForUser(bob.ID)
	req.NoError(err)
	req.Len(bobList, 1)
}
