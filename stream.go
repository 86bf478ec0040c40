package trickle

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving events.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned a terminal non-EOF error.
	StreamStateClosed                       // Close() called before a terminal state.
)

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Provider.Stream() or through Close().
//
// Next() returns decoded events in arrival order. Three classes of return:
//   - (Event, nil): one decoded event, including KindUnknown events.
//   - (zero, *DecodeError): one payload failed to decode. Non-terminal:
//     the stream keeps processing subsequent frames; keep calling Next().
//   - (zero, io.EOF) or (zero, err): terminal. io.EOF means the transport
//     closed cleanly; any other error is a transport failure or
//     cancellation. Terminal results are latched: every later Next() call
//     returns the same result, so the terminal signal is observed exactly
//     once per drain and never before the last event.
//
// State() returns the current StreamState. Callers can use it to determine
// whether Text() reflects a partial or complete result.
//
// Text() returns the accumulated output text. Behavior by stream state:
//   - StreamStateComplete: final text, nil error.
//   - StreamStateStreaming/Error/Closed: text accumulated so far, nil error.
//   - StreamStateNew: empty string, ErrStreamNotReady.
//
// Close() aborts the underlying transport. Safe to call from any goroutine
// at any time, including before the first event and after termination
// (idempotent no-op). After Close(), Next() returns ErrStreamClosed even if
// decoded events were still buffered.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Text() (string, error)
	Close() error
}
