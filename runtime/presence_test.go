package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Mohammad-Harkous/chat-app/domain/event"
)

type nopSink struct{}

func (nopSink) Consume(context.Context, event.DomainEvent) error { return nil }

func Test_Presence_Register_And_Lookup(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	userID := uuid.New()

	_, ok := presence.Lookup(userID)
	req.False(ok)
	req.False(presence.Online(userID))

	generation := presence.Register(userID, nopSink{})
	req.True(presence.Online(userID))
	req.Len(presence.Sinks(), 1)

	req.True(presence.Unregister(userID, generation))
	req.False(presence.Online(userID))
}

func Test_Presence_Reconnect_Supersedes(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	userID := uuid.New()

	first := presence.Register(userID, nopSink{})
	second := presence.Register(userID, nopSink{})
	req.NotEqual(first, second)

	// The superseded connection must not remove the newer entry.
	req.False(presence.Unregister(userID, first))
	req.True(presence.Online(userID))

	req.True(presence.Unregister(userID, second))
	req.False(presence.Online(userID))
}

func Test_Presence_Sinks_Snapshot(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	presence.Register(uuid.New(), nopSink{})
	presence.Register(uuid.New(), nopSink{})
	presence.Register(uuid.New(), nopSink{})

	req.Len(presence.Sinks(), 3)
}
