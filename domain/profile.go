// Package domain contains core concepts of the messaging system.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public projection of a user: the only user fields ever
// exposed to other users or serialized onto the wire. Password hash and
// email stay in the repository layer.
type Profile struct {
	ID       uuid.UUID  `json:"id"`
	Username string     `json:"username"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}
