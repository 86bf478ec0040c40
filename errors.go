package trickle

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamNotReady indicates Text() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrFrameTooLarge indicates a single event frame exceeded the
	// splitter's buffer cap before its delimiter arrived. Pathological
	// server behavior; fatal to the session.
	ErrFrameTooLarge = errors.New("event frame exceeds buffer limit")
)

// DecodeError reports that a single event payload could not be decoded:
// either the envelope is not valid JSON, or a field mandatory for the
// detected kind is absent or malformed.
//
// A DecodeError is local to one event. Streams return it from Next() and
// keep going; callers that only care about text can skip these and continue
// pulling.
type DecodeError struct {
	Payload string // the offending payload, verbatim
	Err     error  // underlying cause
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode event: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is (or wraps) a per-event decode
// failure, i.e. a non-terminal stream error.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
