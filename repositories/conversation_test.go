package repositories

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
)

func Test_CreateOrGet_Is_Idempotent_Per_Pair(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	users := newTestUserRepository(t, db)
	repo := NewConversationRepository(db, users, slog.Default())

	alice, err := users.Create("alice", "alice@example.com", "hash")
	req.NoError(err)
	bob, err := users.Create("bob", "bob@example.com", "hash")
	req.NoError(err)

	first, err := repo.CreateOrGet(alice.ID, bob.ID)
	req.NoError(err)
	req.True(first.HasParticipant(alice.ID))
	req.True(first.HasParticipant(bob.ID))
	req.Equal("alice", first.Participant1.Username)
	req.Equal("bob", first.Participant2.Username)

	// Same pair again, both orders, resolves to the same conversation.
	again, err := repo.CreateOrGet(alice.ID, bob.ID)
	req.NoError(err)
	req.Equal(first.ID, again.ID)

	reversed, err := repo.CreateOrGet(bob.ID, alice.ID)
	req.NoError(err)
	req.Equal(first.ID, reversed.ID)
}

func Test_CreateOrGet_Concurrent_Creates_One_Conversation(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	users := newTestUserRepository(t, db)
	repo := NewConversationRepository(db, users, slog.Default())

	alice, err := users.Create("alice", "alice@example.com", "hash")
	req.NoError(err)
	bob, err := users.Create("bob", "bob@example.com", "hash")
	req.NoError(err)

	const racers = 8
	results := make([]uuid.UUID, racers)
	errs := make([]error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := alice.ID, bob.ID
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := repo.CreateOrGet(a, b)
			results[i], errs[i] = conv.ID, err
		}(i)
	}
	wg.Wait()

	for i := 0; i < racers; i++ {
		req.NoError(errs[i])
		req.Equal(results[0], results[i])
	}
}

func Test_ListForUser_Orders_By_Activity_And_Skips_Hidden(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	users := newTestUserRepository(t, db)
	repo := NewConversationRepository(db, users, slog.Default())

	alice, err := users.Create("alice", "alice@example.com", "hash")
	req.NoError(err)
	bob, err := users.Create("bob", "bob@example.com", "hash")
	req.NoError(err)
	clara, err := users.Create("clara", "clara@example.com", "hash")
	req.NoError(err)

	withBob, err := repo.CreateOrGet(alice.ID, bob.ID)
	req.NoError(err)
	withClara, err := repo.CreateOrGet(alice.ID, clara.ID)
	req.NoError(err)

	now := time.Now().UTC()
	req.NoError(repo.Touch(withBob.ID, now.Add(-time.Hour)))
	req.NoError(repo.Touch(withClara.ID, now))

	listed, err := repo.ListForUser(alice.ID)
	req.NoError(err)
	req.Len(listed, 2)
	req.Equal(withClara.ID, listed[0].ID)
	req.Equal(withBob.ID, listed[1].ID)

	// Soft deleting hides the conversation for the deleter only.
	req.NoError(repo.SoftDelete(withBob.ID, alice.ID))

	listed, err = repo.ListForUser(alice.ID)
	req.NoError(err)
	req.Len(listed, 1)
	req.Equal(withClara.ID, listed[0].ID)

	bobSide, err := repo.ListForUser(bob.ID)
	req.NoError(err)
	req.Len(bobSide, 1)
	req.Equal(withBob.ID, bobSide[0].ID)
}

func Test_ListForUser_Puts_Conversations_Without_Messages_Last(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	users := newTestUserRepository(t, db)
	repo := NewConversationRepository(db, users, slog.Default())

	alice, err := users.Create("alice", "alice@example.com", "hash")
	req.NoError(err)
	bob, err := users.Create("bob", "bob@example.com", "hash")
	req.NoError(err)
	clara, err := users.Create("clara", "clara@example.com", "hash")
	req.NoError(err)
	dave, err := users.Create("dave", "dave@example.com", "hash")
	req.NoError(err)

	withBob, err := repo.CreateOrGet(alice.ID, bob.ID)
	req.NoError(err)
	withClara, err := repo.CreateOrGet(alice.ID, clara.ID)
	req.NoError(err)
	withDave, err := repo.CreateOrGet(alice.ID, dave.ID)
	req.NoError(err)

	// Only two of the three ever receive a message.
	now := time.Now().UTC()
	req.NoError(repo.Touch(withBob.ID, now.Add(-time.Hour)))
	req.NoError(repo.Touch(withDave.ID, now))

	listed, err := repo.ListForUser(alice.ID)
	req.NoError(err)
	req.Len(listed, 3)
	req.Equal(withDave.ID, listed[0].ID)
	req.Equal(withBob.ID, listed[1].ID)
	req.Equal(withClara.ID, listed[2].ID)
	req.Nil(listed[2].LastMessageAt)
}

func Test_SoftDelete_Requires_Participant(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	users := newTestUserRepository(t, db)
	repo := NewConversationRepository(db, users, slog.Default())

	alice, err := users.Create("alice", "alice@example.com", "hash")
	req.NoError(err)
	bob, err := users.Create("bob", "bob@example.com", "hash")
	req.NoError(err)

	conv, err := repo.CreateOrGet(alice.ID, bob.ID)
	req.NoError(err)

	req.ErrorIs(repo.SoftDelete(conv.ID, uuid.New()), apperrors.ErrForbidden)
	req.ErrorIs(repo.SoftDelete(uuid.New(), alice.ID), apperrors.ErrNotFound)
}
