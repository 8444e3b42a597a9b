//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Mohammad-Harkous/chat-app/domain"
	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
)

type IUserRepository interface {
	Create(username, email, passwordHash string) (User, error)
	FindByID(id uuid.UUID) (User, error)
	FindByEmail(email string) (User, error)
	Search(ctx context.Context, query string, excludingUserID uuid.UUID) ([]User, error)
	SetOnline(id uuid.UUID, online bool, lastSeen time.Time) error
}

// User is the repository-level record: the only place the password hash and
// email live together. Everything leaving the service layer is a
// domain.Profile.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	IsOnline     bool
	LastSeen     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Profile() domain.Profile {
	return domain.Profile{
		ID:       u.ID,
		Username: u.Username,
		IsOnline: u.IsOnline,
		LastSeen: u.LastSeen,
	}
}

type userRecord struct {
	ID           string     `cbor:"id"`
	Username     string     `cbor:"username"`
	Email        string     `cbor:"email"`
	PasswordHash string     `cbor:"password_hash"`
	IsOnline     bool       `cbor:"is_online"`
	LastSeen     *time.Time `cbor:"last_seen,omitempty"`
	CreatedAt    time.Time  `cbor:"created_at"`
	UpdatedAt    time.Time  `cbor:"updated_at"`
}

// UserRepository persists users in BadgerDB and mirrors username/email into a
// Bluge index for substring search. Keys:
//
//	user:id:{uuid}            -> userRecord
//	user:email:{lower email}  -> uuid bytes
//	user:name:{lower name}    -> uuid bytes
//
// The lowercase secondary keys enforce uniqueness case-insensitively inside
// a single transaction.
type UserRepository struct {
	db    *badger.DB
	index *bluge.Writer
	log   *slog.Logger
}

func NewUserRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger) *UserRepository {
	return &UserRepository{db: db, index: index, log: log}
}

func userKey(id uuid.UUID) []byte    { return []byte("user:id:" + id.String()) }
func emailKey(email string) []byte   { return []byte("user:email:" + strings.ToLower(email)) }
func usernameKey(name string) []byte { return []byte("user:name:" + strings.ToLower(name)) }

// Create persists a new user. Username and email are immutable afterwards,
// so the search index is written once here and never updated.
func (r *UserRepository) Create(username, email, passwordHash string) (User, error) {
	now := time.Now().UTC()
	rec := userRecord{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	data, err := encode(rec)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	id := uuid.MustParse(rec.ID)
	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if _, err := txn.Get(usernameKey(username)); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if err := txn.Set(userKey(id), data); err != nil {
			return err
		}
		if err := txn.Set(emailKey(email), []byte(rec.ID)); err != nil {
			return err
		}
		return txn.Set(usernameKey(username), []byte(rec.ID))
	})
	if err != nil {
		return User{}, err
	}

	if err := r.indexUser(rec); err != nil {
		// The durable record is already committed; a search-index failure
		// must not fail registration. The user simply won't be findable by
		// substring search until a reindex.
		r.log.Error("user search indexing failed", "user_id", rec.ID, "error", err)
	}

	return toUser(rec)
}

func (r *UserRepository) indexUser(rec userRecord) error {
	doc := bluge.NewDocument(rec.ID)
	doc.AddField(bluge.NewKeywordField("username", strings.ToLower(rec.Username)))
	doc.AddField(bluge.NewKeywordField("email", strings.ToLower(rec.Email)))
	return r.index.Update(doc.ID(), doc)
}

func (r *UserRepository) FindByID(id uuid.UUID) (User, error) {
	return r.get(userKey(id))
}

func (r *UserRepository) FindByEmail(email string) (User, error) {
	var userID string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})
	if err != nil {
		return User{}, notFoundOr(err)
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return User{}, err
	}
	return r.get(userKey(id))
}

func (r *UserRepository) get(key []byte) (User, error) {
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return decode(val, &rec)
		})
	})
	if err != nil {
		return User{}, notFoundOr(err)
	}
	return toUser(rec)
}

// wildcardEscaper neutralizes Bluge wildcard metacharacters so a query is
// always matched literally.
var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// Search runs a case-insensitive substring match over username and email via
// wildcard queries on the lowercased keyword fields, then resolves the hits
// back to full records from Badger. Every match is returned; the requesting
// user is excluded.
func (r *UserRepository) Search(ctx context.Context, query string, excludingUserID uuid.UUID) ([]User, error) {
	reader, err := r.index.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer reader.Close()

	pattern := "*" + wildcardEscaper.Replace(strings.ToLower(query)) + "*"
	match := bluge.NewBooleanQuery().
		AddShould(bluge.NewWildcardQuery(pattern).SetField("username")).
		AddShould(bluge.NewWildcardQuery(pattern).SetField("email")).
		SetMinShould(1)

	it, err := reader.Search(ctx, bluge.NewAllMatches(match))
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	var ids []string
	for next, err := it.Next(); next != nil; next, err = it.Next() {
		if err != nil {
			return nil, err
		}
		visitErr := next.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
	}

	ids = lo.Filter(ids, func(id string, _ int) bool {
		return id != excludingUserID.String()
	})

	users := make([]User, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		user, err := r.FindByID(id)
		if err != nil {
			// Index hit without a backing record: tolerate, the index is a
			// mirror and the record is the source of truth.
			r.log.Warn("search hit without user record", "user_id", raw)
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// SetOnline flips the presence flags on the durable record. Called by the
// delivery router on connect and disconnect.
func (r *UserRepository) SetOnline(id uuid.UUID, online bool, lastSeen time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return notFoundOr(err)
		}
		var rec userRecord
		if err := item.Value(func(val []byte) error {
			return decode(val, &rec)
		}); err != nil {
			return err
		}

		rec.IsOnline = online
		ls := lastSeen.UTC()
		rec.LastSeen = &ls
		rec.UpdatedAt = time.Now().UTC()

		data, err := encode(rec)
		if err != nil {
			return err
		}
		return txn.Set(userKey(id), data)
	})
}

func toUser(rec userRecord) (User, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:           id,
		Username:     rec.Username,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		IsOnline:     rec.IsOnline,
		LastSeen:     rec.LastSeen,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

// notFoundOr converts Badger's key-absence error into the domain signal and
// passes everything else through.
func notFoundOr(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}
