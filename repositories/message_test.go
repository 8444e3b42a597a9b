package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Store_And_List_Messages_In_Order(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)
	defer repo.Close()

	conversationID := uuid.New()
	senderID := uuid.New()
	at := time.Now().UTC()

	for i := 0; i < 3; i++ {
		_, err := repo.Store(conversationID, senderID,
			fmt.Sprintf("message %d", i), at.Add(time.Duration(i)*time.Second))
		req.NoError(err)
	}

	messages, err := repo.ListForConversation(conversationID)
	req.NoError(err)
	req.Len(messages, 3)
	for i, msg := range messages {
		req.Equal(fmt.Sprintf("message %d", i), msg.Content)
		req.Equal(conversationID, msg.ConversationID)
		req.Equal(senderID, msg.SenderID)
		req.False(msg.IsRead)
	}
}

func Test_Same_Timestamp_Messages_Keep_Insertion_Order(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)
	defer repo.Close()

	conversationID := uuid.New()
	senderID := uuid.New()
	at := time.Now().UTC()

	// Identical timestamps: the sequence in the key breaks the tie.
	first, err := repo.Store(conversationID, senderID, "first", at)
	req.NoError(err)
	second, err := repo.Store(conversationID, senderID, "second", at)
	req.NoError(err)
	req.Less(first.Seq, second.Seq)

	messages, err := repo.ListForConversation(conversationID)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("first", messages[0].Content)
	req.Equal("second", messages[1].Content)
}

func Test_List_Is_Scoped_To_Conversation(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)
	defer repo.Close()

	convA := uuid.New()
	convB := uuid.New()
	senderID := uuid.New()
	at := time.Now().UTC()

	_, err = repo.Store(convA, senderID, "for A", at)
	req.NoError(err)
	_, err = repo.Store(convB, senderID, "for B", at)
	req.NoError(err)

	messages, err := repo.ListForConversation(convA)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("for A", messages[0].Content)

	empty, err := repo.ListForConversation(uuid.New())
	req.NoError(err)
	req.Empty(empty)
}
