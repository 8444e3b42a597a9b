package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Censor_Basic_Word(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"stupid"}, '*')
	req.NoError(err)

	censored, matched := moderator.Censor("you are stupid")
	req.True(matched)
	req.Equal("you are ******", censored)

	clean, matched := moderator.Censor("you are great")
	req.False(matched)
	req.Equal("you are great", clean)
}

func Test_Censor_Defeats_Leet_And_Noise(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"stupid"}, '*')
	req.NoError(err)

	tests := []struct {
		name  string
		input string
	}{
		{"upper case", "STUPID"},
		{"leet digits", "5tup1d"},
		{"punctuation noise", "s.t.u.p.i.d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, matched := moderator.Censor(tt.input)
			require.True(t, matched)
		})
	}
}

func Test_Censor_Multiple_Words(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"fool", "idiot"}, '#')
	req.NoError(err)

	censored, matched := moderator.Censor("what a fool, total idiot")
	req.True(matched)
	req.Equal("what a ####, total #####", censored)
}
