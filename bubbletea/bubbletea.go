// Package bubbletea provides a Bubble Tea TUI that renders one streaming
// response live: reasoning summaries, output text deltas, and function call
// items as they arrive.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pwalczyk/trickle"
)

// StreamFunc drives one streaming exchange. The onEvent callback is called
// for each decoded event in arrival order. The function blocks until the
// stream terminates or the context is cancelled.
type StreamFunc func(ctx context.Context, onEvent func(trickle.Event)) error

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits and returns the final model, so callers can read the
// received text and usage. When the context is cancelled, the program quits.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if err != nil {
		return m, err
	}
	fm, ok := final.(Model)
	if !ok {
		return m, nil
	}
	return fm, nil
}

// StreamEventMsg wraps a streaming event for delivery to the model.
type StreamEventMsg struct {
	Event trickle.Event
}

// StreamDoneMsg signals that the stream has terminated.
type StreamDoneMsg struct {
	Err error
}

// listenForEvent waits for the next event. The event channel is closed after
// the stream terminates, so buffered events always drain before the terminal
// signal is read.
func listenForEvent(eventCh chan trickle.Event, doneCh chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-eventCh
		if !ok {
			return StreamDoneMsg{Err: <-doneCh}
		}
		return StreamEventMsg{Event: evt}
	}
}
