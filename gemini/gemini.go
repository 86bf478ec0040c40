// Package gemini implements [trickle.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between trickle's
// domain types and the Gemini API types. Streaming uses the SDK's iter.Seq2
// iterator, wrapped into the pull-based [trickle.Stream] interface. The SDK
// emits whole-part chunks rather than typed events, so the stream synthesizes
// the event sequence: text parts become output text deltas with a final done
// snapshot, thought parts become reasoning summary deltas, and function call
// parts become completed function call items.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 65536
)
