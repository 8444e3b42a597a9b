package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is an immutable entry of a conversation. Ordering within a
// conversation is by CreatedAt ascending with Seq as the deterministic
// tie-break for sends racing on the same timestamp.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	Sender         Profile   `json:"sender"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	Seq            uint64    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}
