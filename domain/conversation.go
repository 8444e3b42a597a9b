package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a durable two-party thread, unique per unordered
// participant pair. Participants are always resolved value snapshots,
// never lazy references: the ledger performs the join before a
// Conversation leaves the storage layer.
type Conversation struct {
	ID           uuid.UUID `json:"id"`
	Participant1 Profile   `json:"participant1"`
	Participant2 Profile   `json:"participant2"`

	// LastMessageAt is nil until the first message. Listing treats nil as
	// the earliest possible instant.
	LastMessageAt *time.Time `json:"lastMessageAt"`

	// DeletedByUserID records the single participant who hid the
	// conversation. Single-slot: a second delete overwrites the first.
	DeletedByUserID *uuid.UUID `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.Participant1.ID == userID || c.Participant2.ID == userID
}

// OtherParticipant returns the peer of userID. The second return value is
// false when userID is not a participant at all.
func (c Conversation) OtherParticipant(userID uuid.UUID) (Profile, bool) {
	switch userID {
	case c.Participant1.ID:
		return c.Participant2, true
	case c.Participant2.ID:
		return c.Participant1, true
	default:
		return Profile{}, false
	}
}

func (c Conversation) HiddenFor(userID uuid.UUID) bool {
	return c.DeletedByUserID != nil && *c.DeletedByUserID == userID
}
