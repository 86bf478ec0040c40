package bubbletea_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/pwalczyk/trickle"
	bt "github.com/pwalczyk/trickle/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopStream is a StreamFunc that emits nothing and returns immediately.
func nopStream(_ context.Context, _ func(trickle.Event)) error {
	return nil
}

// initModel creates a model and sends a WindowSizeMsg to initialize the
// viewport.
func initModel(t *testing.T, run bt.StreamFunc) bt.Model {
	t.Helper()
	m := bt.New(run, "Hi", trickle.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func TestNew(t *testing.T) {
	t.Parallel()
	m := bt.New(nopStream, "Hi", trickle.DefaultTheme())
	assert.False(t, m.Streaming())
	assert.NoError(t, m.Err())
	assert.Equal(t, "", m.Text())
}

func TestModel_ViewBeforeWindowSize(t *testing.T) {
	t.Parallel()
	m := bt.New(nopStream, "Hi", trickle.DefaultTheme())
	assert.Equal(t, "", m.View())
}

func TestModel_PromptRenders(t *testing.T) {
	t.Parallel()
	m := initModel(t, nopStream)
	assert.Contains(t, m.View(), "> Hi")
}

func TestModel_StreamEvents(t *testing.T) {
	t.Parallel()
	m := initModel(t, nopStream)

	m = updateModel(t, m, bt.StreamEventMsg{Event: trickle.Event{
		Kind: trickle.KindOutputTextDelta, Delta: "Hello",
	}})
	m = updateModel(t, m, bt.StreamEventMsg{Event: trickle.Event{
		Kind: trickle.KindOutputTextDelta, Delta: " world",
	}})

	assert.Equal(t, "Hello world", m.Text())
	assert.Contains(t, m.View(), "Hello world")
}

func TestModel_DoneSnapshotNotDuplicated(t *testing.T) {
	t.Parallel()
	m := initModel(t, nopStream)

	m = updateModel(t, m, bt.StreamEventMsg{Event: trickle.Event{
		Kind: trickle.KindOutputTextDelta, Delta: "Hello",
	}})
	m = updateModel(t, m, bt.StreamEventMsg{Event: trickle.Event{
		Kind: trickle.KindOutputTextDone, Text: "Hello world",
	}})

	assert.Equal(t, "Hello world", m.Text())
}

func TestModel_SummaryCollapsedByDefault(t *testing.T) {
	t.Parallel()
	m := initModel(t, nopStream)

	m = updateModel(t, m, bt.StreamEventMsg{Event: trickle.Event{
		Kind: trickle.KindSummaryTextDelta, Delta: "secret reasoning",
	}})

	view := m.View()
	assert.Contains(t, view, "Reasoning")
	assert.NotContains(t, view, "secret reasoning")

	// Tab expands it.
	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "secret reasoning")
}

func TestModel_ErrorEventRenders(t *testing.T) {
	t.Parallel()
	m := initModel(t, nopStream)

	m = updateModel(t, m, bt.StreamEventMsg{Event: trickle.Event{
		Kind: trickle.KindError,
		Err:  &trickle.ErrorDetail{Code: "rate_limit_exceeded", Message: "slow down"},
	}})

	assert.Contains(t, m.View(), "rate_limit_exceeded")
}

func TestModel_UsageInStatusAfterCompletion(t *testing.T) {
	t.Parallel()
	m := initModel(t, nopStream)

	m = updateModel(t, m, bt.StreamEventMsg{Event: trickle.Event{
		Kind: trickle.KindResponseCompleted,
		Response: &trickle.Response{
			Status: trickle.StatusCompleted,
			Usage:  trickle.Usage{InputTokens: 10, OutputTokens: 3, TotalTokens: 13},
		},
	}})
	m = updateModel(t, m, bt.StreamDoneMsg{})

	assert.False(t, m.Streaming())
	view := m.View()
	assert.Contains(t, view, "10 in")
	assert.Contains(t, view, "3 out")
}

func TestModel_StreamErrorInStatus(t *testing.T) {
	t.Parallel()
	m := initModel(t, nopStream)

	m = updateModel(t, m, bt.StreamDoneMsg{Err: assert.AnError})
	require.Error(t, m.Err())
	assert.Contains(t, m.View(), assert.AnError.Error())
}

func TestModel_CancelledStreamIsNotAnError(t *testing.T) {
	t.Parallel()
	m := initModel(t, nopStream)

	m = updateModel(t, m, bt.StreamDoneMsg{Err: context.Canceled})
	assert.NoError(t, m.Err())
}

func TestModel_QuitUnblocksStreamFunc(t *testing.T) {
	t.Parallel()

	// The stream keeps producing until cancelled. Quitting must cancel the
	// context and let onEvent return even with no receiver left, so the
	// StreamFunc can observe the cancellation and exit.
	streamReturned := make(chan error, 1)
	run := func(ctx context.Context, onEvent func(trickle.Event)) error {
		onEvent(trickle.Event{Kind: trickle.KindOutputTextDelta, Delta: "streaming"})
		for ctx.Err() == nil {
			onEvent(trickle.Event{Kind: trickle.KindOutputTextDelta, Delta: "."})
		}
		streamReturned <- ctx.Err()
		return ctx.Err()
	}

	m := bt.New(run, "Go forever", trickle.DefaultTheme())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("streaming"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	select {
	case err := <-streamReturned:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("stream func still blocked after quit")
	}

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	final, ok := fm.(bt.Model)
	require.True(t, ok)
	assert.NoError(t, final.Err())
}

func TestModel_EndToEnd(t *testing.T) {
	t.Parallel()

	run := func(_ context.Context, onEvent func(trickle.Event)) error {
		onEvent(trickle.Event{Kind: trickle.KindSummaryTextDelta, Delta: "thinking"})
		onEvent(trickle.Event{Kind: trickle.KindOutputTextDelta, Delta: "Hello"})
		onEvent(trickle.Event{Kind: trickle.KindOutputTextDelta, Delta: " world"})
		onEvent(trickle.Event{Kind: trickle.KindResponseCompleted, Response: &trickle.Response{
			Status: trickle.StatusCompleted,
			Usage:  trickle.Usage{InputTokens: 10, OutputTokens: 3},
		}})
		return nil
	}

	m := bt.New(run, "Say hello", trickle.DefaultTheme())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Hello world")) &&
			bytes.Contains(out, []byte("done"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	final, ok := fm.(bt.Model)
	require.True(t, ok)
	assert.False(t, final.Streaming())
	assert.NoError(t, final.Err())
	assert.Equal(t, "Hello world", final.Text())
}
