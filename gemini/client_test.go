package gemini_test

import (
	"testing"

	"github.com/pwalczyk/trickle"
	"github.com/pwalczyk/trickle/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertInput_Roles(t *testing.T) {
	t.Parallel()
	msgs := []trickle.Message{
		trickle.User("Hello"),
		trickle.Assistant("Hi there"),
		{Role: trickle.RoleSystem, Content: "Be brief"},
		{Role: trickle.RoleDeveloper, Content: "Use Go"},
	}

	got := gemini.ConvertInput(msgs)
	require.Len(t, got, 4)

	assert.Equal(t, "user", got[0].Role)
	require.Len(t, got[0].Parts, 1)
	assert.Equal(t, "Hello", got[0].Parts[0].Text)

	assert.Equal(t, "model", got[1].Role)
	assert.Equal(t, "Hi there", got[1].Parts[0].Text)

	// Gemini has no system or developer turn; both map to user.
	assert.Equal(t, "user", got[2].Role)
	assert.Equal(t, "user", got[3].Role)
}

func TestConvertInput_Empty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, gemini.ConvertInput(nil))
}
