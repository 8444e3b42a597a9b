//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/Mohammad-Harkous/chat-app/domain"
)

type IMessageRepository interface {
	Store(conversationID, senderID uuid.UUID, content string, at time.Time) (StoredMessage, error)
	ListForConversation(conversationID uuid.UUID) ([]StoredMessage, error)
	Close() error
}

// StoredMessage is the storage-level shape: the sender is still a bare id.
// The service layer joins the sender profile before anything leaves it.
type StoredMessage struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        string
	IsRead         bool
	Seq            uint64
	CreatedAt      time.Time
}

func (m StoredMessage) WithSender(sender domain.Profile) domain.Message {
	return domain.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         sender,
		Content:        m.Content,
		IsRead:         m.IsRead,
		Seq:            m.Seq,
		CreatedAt:      m.CreatedAt,
	}
}

type messageRecord struct {
	ID             string    `cbor:"id"`
	ConversationID string    `cbor:"conversation_id"`
	SenderID       string    `cbor:"sender_id"`
	Content        string    `cbor:"content"`
	IsRead         bool      `cbor:"is_read"`
	Seq            uint64    `cbor:"seq"`
	CreatedAt      time.Time `cbor:"created_at"`
}

// MessageRepository persists messages in BadgerDB. The key is formatted as
// "msg:{conversation_id}:{timestamp_padded}:{seq_padded}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order equals time order).
//  2. Make the order of two messages racing on the same nanosecond
//     deterministic through a store-wide monotonic sequence.
type MessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

const seqBandwidth = 128

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte("seq:msg"), seqBandwidth)
	if err != nil {
		return nil, fmt.Errorf("open message sequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log}, nil
}

// Close releases the unused tail of the sequence lease back to Badger.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

func messageKey(conversationID uuid.UUID, at time.Time, seq uint64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%012d", conversationID, at.UnixNano(), seq))
}

// Store persists a message. Participant and content guards belong to the
// service layer; this only records.
func (m *MessageRepository) Store(conversationID, senderID uuid.UUID, content string, at time.Time) (StoredMessage, error) {
	seq, err := m.seq.Next()
	if err != nil {
		return StoredMessage{}, fmt.Errorf("next message seq: %w", err)
	}

	rec := messageRecord{
		ID:             uuid.New().String(),
		ConversationID: conversationID.String(),
		SenderID:       senderID.String(),
		Content:        content,
		Seq:            seq,
		CreatedAt:      at.UTC(),
	}
	data, err := encode(rec)
	if err != nil {
		return StoredMessage{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(conversationID, rec.CreatedAt, seq), data)
	})
	if err != nil {
		return StoredMessage{}, err
	}
	return toStoredMessage(rec)
}

// ListForConversation retrieves all messages of a conversation via a prefix
// scan. Thanks to the padded timestamp and sequence in the key, forward
// iteration yields creation order ascending with a stable tie-break.
func (m *MessageRepository) ListForConversation(conversationID uuid.UUID) ([]StoredMessage, error) {
	var values [][]byte
	prefix := []byte("msg:" + conversationID.String() + ":")
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				values = append(values, append([]byte(nil), val...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]StoredMessage, 0, len(values))
	for _, raw := range values {
		var rec messageRecord
		if err := decode(raw, &rec); err != nil {
			return nil, err
		}
		msg, err := toStoredMessage(rec)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func toStoredMessage(rec messageRecord) (StoredMessage, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return StoredMessage{}, err
	}
	convID, err := uuid.Parse(rec.ConversationID)
	if err != nil {
		return StoredMessage{}, err
	}
	senderID, err := uuid.Parse(rec.SenderID)
	if err != nil {
		return StoredMessage{}, err
	}
	return StoredMessage{
		ID:             id,
		ConversationID: convID,
		SenderID:       senderID,
		Content:        rec.Content,
		IsRead:         rec.IsRead,
		Seq:            rec.Seq,
		CreatedAt:      rec.CreatedAt,
	}, nil
}
