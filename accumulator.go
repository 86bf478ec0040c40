package trickle

import "strings"

// TextAccumulator folds a sequence of events into one running text value.
// It is transport-independent: callers who only want the aggregate text feed
// it every event pulled from a Stream and read Text() at any time.
//
// The fold never fails. It must tolerate any event ordering the server (or a
// buggy server) produces: zero events, deltas only, a done snapshot only,
// repeated or out-of-order done events.
//
// Not safe for concurrent use. One accumulator per stream.
type TextAccumulator struct {
	text strings.Builder
}

// Apply folds one event into the aggregate.
//
// Delta events append unconditionally. A done event behaves as a safety net
// rather than an authority: when nothing has accumulated it becomes the
// aggregate outright, and otherwise it replaces the aggregate only when it is
// strictly longer and the aggregate is a prefix of it, the case where the
// final snapshot carries more content than the deltas did. A shorter or
// unrelated done snapshot (duplicate or out-of-order terminal event) is
// ignored so it cannot corrupt text already built from deltas.
func (a *TextAccumulator) Apply(evt Event) {
	switch evt.Kind {
	case KindOutputTextDelta:
		a.text.WriteString(evt.Delta)
	case KindOutputTextDone:
		done := evt.Text
		cur := a.text.String()
		if cur == "" || (len(done) > len(cur) && strings.HasPrefix(done, cur)) {
			a.text.Reset()
			a.text.WriteString(done)
		}
	}
	// All other kinds are no-ops for text accumulation.
}

// Text returns the current aggregate. Monotonic: successive reads only ever
// reflect equal or newer content.
func (a *TextAccumulator) Text() string {
	return a.text.String()
}
