package services

import (
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/Mohammad-Harkous/chat-app/auth"
	"github.com/Mohammad-Harkous/chat-app/domain"
	"github.com/Mohammad-Harkous/chat-app/repositories"
)

type fixture struct {
	users         *repositories.UserRepository
	conversations *repositories.ConversationRepository
	messages      *repositories.MessageRepository
	tokens        *auth.TokenService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = blugeWriter.Close() })

	users := repositories.NewUserRepository(db, blugeWriter, slog.Default())
	conversations := repositories.NewConversationRepository(db, users, slog.Default())
	messages, err := repositories.NewMessageRepository(db, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = messages.Close() })

	return fixture{
		users:         users,
		conversations: conversations,
		messages:      messages,
		tokens:        auth.NewTokenService("test-secret", time.Hour),
	}
}

func (f fixture) register(t *testing.T, authService IAuthService, username, email string) domain.Profile {
	t.Helper()
	profile, err := authService.Register(username, email, "Str0ng&Secret!pass")
	require.NoError(t, err)
	return profile
}
