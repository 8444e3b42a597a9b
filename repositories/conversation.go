//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/Mohammad-Harkous/chat-app/domain"
	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
)

type IConversationRepository interface {
	CreateOrGet(userA, userB uuid.UUID) (domain.Conversation, error)
	ListForUser(userID uuid.UUID) ([]domain.Conversation, error)
	FindByID(id uuid.UUID) (domain.Conversation, error)
	Touch(id uuid.UUID, lastMessageAt time.Time) error
	SoftDelete(conversationID, userID uuid.UUID) error
}

type conversationRecord struct {
	ID            string     `cbor:"id"`
	Participant1  string     `cbor:"participant1"`
	Participant2  string     `cbor:"participant2"`
	LastMessageAt *time.Time `cbor:"last_message_at,omitempty"`
	DeletedBy     *string    `cbor:"deleted_by,omitempty"`
	CreatedAt     time.Time  `cbor:"created_at"`
	UpdatedAt     time.Time  `cbor:"updated_at"`
}

// ConversationRepository owns the durable conversation ledger. Keys:
//
//	conv:id:{uuid}             -> conversationRecord
//	conv:pair:{min}:{max}      -> conversation uuid bytes
//	conv:user:{userID}:{uuid}  -> nil (per-participant listing index)
//
// The pair key is built from the lexicographically sorted participant ids, so
// the same unordered pair always maps to the same key. That single key,
// checked and written inside one transaction, is the hard uniqueness
// constraint; the concurrent loser of a create race observes a conflict and
// re-reads instead of inserting a duplicate.
type ConversationRepository struct {
	db    *badger.DB
	users IUserRepository
	log   *slog.Logger
}

func NewConversationRepository(db *badger.DB, users IUserRepository, log *slog.Logger) *ConversationRepository {
	return &ConversationRepository{db: db, users: users, log: log}
}

func convKey(id uuid.UUID) []byte { return []byte("conv:id:" + id.String()) }

func pairKey(a, b uuid.UUID) []byte {
	lo, hi := a.String(), b.String()
	if lo > hi {
		lo, hi = hi, lo
	}
	return []byte("conv:pair:" + lo + ":" + hi)
}

func convUserKey(userID, convID uuid.UUID) []byte {
	return []byte("conv:user:" + userID.String() + ":" + convID.String())
}

const createRetries = 3

// CreateOrGet finds the conversation for the unordered pair, creating it on
// first contact. Self-pairs are rejected by the service layer before this
// point; both users must already exist. A concurrent duplicate create is
// detected through the transactional pair key and resolved by re-reading.
func (r *ConversationRepository) CreateOrGet(userA, userB uuid.UUID) (domain.Conversation, error) {
	for attempt := 0; attempt < createRetries; attempt++ {
		conv, err := r.findByPair(userA, userB)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return domain.Conversation{}, err
		}

		now := time.Now().UTC()
		rec := conversationRecord{
			ID:           uuid.New().String(),
			Participant1: userA.String(),
			Participant2: userB.String(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err = r.create(userA, userB, rec)
		if err == nil {
			return r.resolve(rec)
		}
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, badger.ErrConflict) {
			// Someone else just created it: loop and re-read.
			r.log.Debug("conversation create raced, re-reading",
				"user_a", userA, "user_b", userB)
			continue
		}
		return domain.Conversation{}, err
	}
	return r.findByPair(userA, userB)
}

func (r *ConversationRepository) create(userA, userB uuid.UUID, rec conversationRecord) error {
	data, err := encode(rec)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	convID := uuid.MustParse(rec.ID)

	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(pairKey(userA, userB)); err == nil {
			return apperrors.ErrConflict
		}
		if err := txn.Set(pairKey(userA, userB), []byte(rec.ID)); err != nil {
			return err
		}
		if err := txn.Set(convKey(convID), data); err != nil {
			return err
		}
		if err := txn.Set(convUserKey(userA, convID), nil); err != nil {
			return err
		}
		return txn.Set(convUserKey(userB, convID), nil)
	})
}

func (r *ConversationRepository) findByPair(userA, userB uuid.UUID) (domain.Conversation, error) {
	var rawID string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey(userA, userB))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rawID = string(val)
			return nil
		})
	})
	if err != nil {
		return domain.Conversation{}, notFoundOr(err)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Conversation{}, err
	}
	return r.FindByID(id)
}

func (r *ConversationRepository) FindByID(id uuid.UUID) (domain.Conversation, error) {
	rec, err := r.getRecord(id)
	if err != nil {
		return domain.Conversation{}, err
	}
	return r.resolve(rec)
}

func (r *ConversationRepository) getRecord(id uuid.UUID) (conversationRecord, error) {
	var rec conversationRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(convKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return decode(val, &rec)
		})
	})
	if err != nil {
		return conversationRecord{}, notFoundOr(err)
	}
	return rec, nil
}

// ListForUser returns every conversation the user participates in and has not
// soft-deleted, most recent activity first. Conversations without messages
// sort last: a nil LastMessageAt compares as the zero time.
func (r *ConversationRepository) ListForUser(userID uuid.UUID) ([]domain.Conversation, error) {
	var ids []uuid.UUID
	prefix := []byte("conv:user:" + userID.String() + ":")
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
			id, err := uuid.Parse(raw)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	conversations := make([]domain.Conversation, 0, len(ids))
	for _, id := range ids {
		conv, err := r.FindByID(id)
		if err != nil {
			return nil, err
		}
		if conv.HiddenFor(userID) {
			continue
		}
		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return lastActivity(conversations[i]).After(lastActivity(conversations[j]))
	})
	return conversations, nil
}

func lastActivity(c domain.Conversation) time.Time {
	if c.LastMessageAt == nil {
		return time.Time{}
	}
	return *c.LastMessageAt
}

// Touch bumps LastMessageAt. Called by the message store after each
// successful send.
func (r *ConversationRepository) Touch(id uuid.UUID, lastMessageAt time.Time) error {
	return r.update(id, func(rec *conversationRecord) error {
		at := lastMessageAt.UTC()
		rec.LastMessageAt = &at
		return nil
	})
}

// SoftDelete records userID as the deleter. One-sided and single-slot: a
// later delete by the other participant overwrites the marker.
func (r *ConversationRepository) SoftDelete(conversationID, userID uuid.UUID) error {
	return r.update(conversationID, func(rec *conversationRecord) error {
		if rec.Participant1 != userID.String() && rec.Participant2 != userID.String() {
			return fmt.Errorf("%w: not part of this conversation", apperrors.ErrForbidden)
		}
		deleter := userID.String()
		rec.DeletedBy = &deleter
		return nil
	})
}

func (r *ConversationRepository) update(id uuid.UUID, mutate func(*conversationRecord) error) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(convKey(id))
		if err != nil {
			return notFoundOr(err)
		}
		var rec conversationRecord
		if err := item.Value(func(val []byte) error {
			return decode(val, &rec)
		}); err != nil {
			return err
		}

		if err := mutate(&rec); err != nil {
			return err
		}
		rec.UpdatedAt = time.Now().UTC()

		data, err := encode(rec)
		if err != nil {
			return err
		}
		return txn.Set(convKey(id), data)
	})
}

// resolve materializes participant snapshots. The ledger never hands out a
// conversation with unresolved references.
func (r *ConversationRepository) resolve(rec conversationRecord) (domain.Conversation, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return domain.Conversation{}, err
	}
	p1, err := r.profileOf(rec.Participant1)
	if err != nil {
		return domain.Conversation{}, err
	}
	p2, err := r.profileOf(rec.Participant2)
	if err != nil {
		return domain.Conversation{}, err
	}

	var deletedBy *uuid.UUID
	if rec.DeletedBy != nil {
		parsed, err := uuid.Parse(*rec.DeletedBy)
		if err != nil {
			return domain.Conversation{}, err
		}
		deletedBy = &parsed
	}

	return domain.Conversation{
		ID:              id,
		Participant1:    p1,
		Participant2:    p2,
		LastMessageAt:   rec.LastMessageAt,
		DeletedByUserID: deletedBy,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}, nil
}

func (r *ConversationRepository) profileOf(rawID string) (domain.Profile, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Profile{}, err
	}
	user, err := r.users.FindByID(id)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("resolve participant %s: %w", rawID, err)
	}
	return user.Profile(), nil
}
