package mock

import "github.com/pwalczyk/trickle"

// Interface compliance check.
var _ trickle.Stream = (*Stream)(nil)

// Stream is a test double for trickle.Stream.
// Set the function fields for the methods you need. NextFn panics when nil to
// catch missing setup. StateFn, TextFn and CloseFn are nil-safe (zero value,
// empty text, no-op) because test code commonly calls defer stream.Close()
// and these methods rarely need custom behavior.
type Stream struct {
	NextFn  func() (trickle.Event, error)
	StateFn func() trickle.StreamState
	TextFn  func() (string, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (trickle.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() trickle.StreamState {
	if s.StateFn == nil {
		return trickle.StreamStateNew
	}
	return s.StateFn()
}

// Text delegates to TextFn. Returns an empty string when TextFn is nil.
func (s *Stream) Text() (string, error) {
	if s.TextFn == nil {
		return "", nil
	}
	return s.TextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Script returns a Stream whose Next() replays the given results in order
// and then returns the terminal error (io.EOF for a clean close).
func Script(results []Result, terminal error) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (trickle.Event, error) {
			if i >= len(results) {
				return trickle.Event{}, terminal
			}
			r := results[i]
			i++
			return r.Event, r.Err
		},
	}
}

// Result is one scripted Next() outcome.
type Result struct {
	Event trickle.Event
	Err   error
}
