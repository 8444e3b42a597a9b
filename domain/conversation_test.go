package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Conversation_Participants(t *testing.T) {
	req := require.New(t)

	alice := Profile{ID: uuid.New(), Username: "alice"}
	bob := Profile{ID: uuid.New(), Username: "bob"}
	conv := Conversation{ID: uuid.New(), Participant1: alice, Participant2: bob}

	req.True(conv.HasParticipant(alice.ID))
	req.True(conv.HasParticipant(bob.ID))
	req.False(conv.HasParticipant(uuid.New()))

	other, ok := conv.OtherParticipant(alice.ID)
	req.True(ok)
	req.Equal(bob.ID, other.ID)

	other, ok = conv.OtherParticipant(bob.ID)
	req.True(ok)
	req.Equal(alice.ID, other.ID)

	_, ok = conv.OtherParticipant(uuid.New())
	req.False(ok)
}

func Test_Conversation_HiddenFor(t *testing.T) {
	req := require.New(t)

	alice := Profile{ID: uuid.New(), Username: "alice"}
	bob := Profile{ID: uuid.New(), Username: "bob"}
	conv := Conversation{ID: uuid.New(), Participant1: alice, Participant2: bob}

	req.False(conv.HiddenFor(alice.ID))

	conv.DeletedByUserID = &alice.ID
	req.True(conv.HiddenFor(alice.ID))
	req.False(conv.HiddenFor(bob.ID))
}
