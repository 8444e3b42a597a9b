// Package event defines the events pushed over a live connection. The JSON
// tags are the wire contract of the websocket channel.
package event

import (
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventName() string
}

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// UserStatus is broadcast to every connected peer when a user's presence
// changes.
type UserStatus struct {
	UserID uuid.UUID `json:"userId"`
	Status Status    `json:"status"`
}

func (UserStatus) EventName() string { return "userStatus" }

// NewMessage is pushed to the recipient (when present) and always echoed to
// the sender as delivery confirmation.
type NewMessage struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       uuid.UUID `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	Content        string    `json:"content"`
	At             time.Time `json:"at"`
}

func (NewMessage) EventName() string { return "newMessage" }

// UserTyping is best effort: no persistence, no delivery guarantee.
type UserTyping struct {
	From           uuid.UUID `json:"from"`
	ConversationID uuid.UUID `json:"conversationId"`
}

func (UserTyping) EventName() string { return "userTyping" }

// SendFailed tells the originating connection that its live send was not
// persisted. It replaces the silent-drop behavior so clients can surface
// delivery state.
type SendFailed struct {
	ConversationID uuid.UUID `json:"conversationId"`
	Reason         string    `json:"reason"`
	At             time.Time `json:"at"`
}

func (SendFailed) EventName() string { return "sendFailed" }
