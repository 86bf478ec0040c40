package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPrompt_FromArgs(t *testing.T) {
	t.Parallel()

	prompt, err := readPrompt([]string{"hello", "world"}, os.Stdin)

	require.NoError(t, err)
	assert.Equal(t, "hello world", prompt)
}

func TestReadPrompt_FromStdin(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("piped prompt\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	defer r.Close()

	prompt, err := readPrompt(nil, r)

	require.NoError(t, err)
	assert.Equal(t, "piped prompt", prompt)
}

func TestReadPrompt_Empty(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	require.NoError(t, w.Close())
	defer r.Close()

	_, err = readPrompt(nil, r)

	assert.EqualError(t, err, "usage: trickle [flags] <prompt>")
}
