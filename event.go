package trickle

// Kind identifies the semantic type of a streaming event.
//
// The set of kinds emitted by the Responses API is open-ended: servers add new
// event types without notice. Decoders therefore never fail on an unknown
// kind; they produce an Event with Kind == KindUnknown and the wire tag
// preserved in RawKind. Adding support for a new kind is a table entry in the
// provider's decoder, not a structural change to consumers.
type Kind string

const (
	// Lifecycle events. Each carries the full Response snapshot.
	KindResponseCreated    Kind = "response.created"
	KindResponseInProgress Kind = "response.in_progress"
	KindResponseQueued     Kind = "response.queued"
	KindResponseCompleted  Kind = "response.completed"
	KindResponseFailed     Kind = "response.failed"
	KindResponseIncomplete Kind = "response.incomplete"

	// Output item events.
	KindOutputItemAdded Kind = "response.output_item.added"
	KindOutputItemDone  Kind = "response.output_item.done"

	// Content part events.
	KindContentPartAdded Kind = "response.content_part.added"
	KindContentPartDone  Kind = "response.content_part.done"

	// Text output events.
	KindOutputTextDelta Kind = "response.output_text.delta"
	KindOutputTextDone  Kind = "response.output_text.done"

	// Reasoning summary events.
	KindSummaryTextDelta Kind = "response.reasoning_summary_text.delta"
	KindSummaryTextDone  Kind = "response.reasoning_summary_text.done"

	// Function call argument events.
	KindArgumentsDelta Kind = "response.function_call_arguments.delta"
	KindArgumentsDone  Kind = "response.function_call_arguments.done"

	// Error events. Carries ErrorDetail; the stream continues afterwards.
	KindError Kind = "error"

	// KindUnknown marks an event whose wire tag is not in the closed set.
	// RawKind holds the tag. Not an error.
	KindUnknown Kind = "unknown"
)

// Event is one decoded streaming event. Only a subset of fields is populated
// for any given Kind; all others are zero values. Events are immutable once
// emitted.
type Event struct {
	Kind    Kind
	RawKind string // wire tag as received, always set

	SequenceNumber int
	ItemID         string
	OutputIndex    int
	ContentIndex   int

	Delta       string // incremental text fragment (*.delta kinds)
	Text        string // final text snapshot (output_text.done)
	SummaryText string // reasoning summary snapshot (reasoning_summary_text.done)
	Arguments   string // assembled function call arguments (function_call_arguments.done)

	Err      *ErrorDetail // error events
	Item     *OutputItem  // output_item events; nil when the item failed to decode
	Response *Response    // lifecycle events
}

// Terminal reports whether the event signals the end of response generation.
// The stream itself terminates via the transport, not via events.
func (e Event) Terminal() bool {
	switch e.Kind {
	case KindResponseCompleted, KindResponseFailed, KindResponseIncomplete:
		return true
	}
	return false
}
