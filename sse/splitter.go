package sse

import (
	"bytes"

	"github.com/pwalczyk/trickle"
)

// delimiter separates frames on the wire: a blank line, i.e. two
// consecutive newline characters.
var delimiter = []byte("\n\n")

// DefaultMaxFrameSize bounds how many bytes a single frame may buffer
// before its delimiter arrives.
const DefaultMaxFrameSize = 1 << 20

// Splitter reassembles raw byte chunks into complete frames. It owns a
// pending buffer holding bytes received but not yet resolved into a frame;
// after each Feed the buffer contains only trailing partial data, never a
// complete frame.
//
// Not safe for concurrent use. One splitter per stream session.
type Splitter struct {
	pending []byte
	max     int
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithMaxFrameSize caps the pending buffer. A server that streams more than
// n bytes without a frame delimiter fails the session with ErrFrameTooLarge.
func WithMaxFrameSize(n int) SplitterOption {
	return func(s *Splitter) { s.max = n }
}

// NewSplitter returns a Splitter with DefaultMaxFrameSize unless overridden.
func NewSplitter(opts ...SplitterOption) *Splitter {
	s := &Splitter{max: DefaultMaxFrameSize}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Feed appends one chunk and returns every frame completed by it, in arrival
// order. A frame is emitted only once its delimiter is fully buffered, so
// feeding the same logical byte stream re-chunked at any boundaries yields
// the same frames.
//
// Returns trickle.ErrFrameTooLarge when the trailing partial data exceeds
// the configured cap; the splitter is unusable afterwards.
func (s *Splitter) Feed(chunk []byte) ([]string, error) {
	s.pending = append(s.pending, chunk...)

	var frames []string
	for {
		i := bytes.Index(s.pending, delimiter)
		if i < 0 {
			break
		}
		frames = append(frames, string(s.pending[:i]))
		s.pending = s.pending[i+len(delimiter):]
	}

	// Reclaim consumed prefix capacity so the buffer doesn't grow without
	// bound across a long stream.
	if len(frames) > 0 {
		s.pending = append([]byte(nil), s.pending...)
	}

	if len(s.pending) > s.max {
		return frames, trickle.ErrFrameTooLarge
	}
	return frames, nil
}

// Flush returns any trailing partial data as a final frame. Called at clean
// transport close: a server that ends the stream without a trailing blank
// line still gets its last frame delivered. Reports false when nothing is
// pending.
func (s *Splitter) Flush() (string, bool) {
	if len(s.pending) == 0 {
		return "", false
	}
	frame := string(s.pending)
	s.pending = nil
	return frame, true
}
