package openai

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pwalczyk/trickle"
	"github.com/pwalczyk/trickle/sse"
)

// stream implements [trickle.Stream] over an SSE HTTP response body.
//
// One session owns one splitter and one accumulator; chunks are processed
// strictly sequentially on the pulling goroutine. Close may be called from
// any goroutine, so the mutable fields are guarded by mu; the blocking body
// read happens outside the lock and is unblocked by Close closing the body.
// Terminal results latch: once Next() has returned io.EOF or a transport
// error, every later call returns the same result.
type stream struct {
	body     io.ReadCloser
	ctx      context.Context
	splitter *sse.Splitter
	readBuf  []byte

	mu    sync.Mutex
	queue []result // decoded outcomes not yet delivered
	done  bool     // clean transport close observed
	state trickle.StreamState
	acc   trickle.TextAccumulator
	err   error // terminal error, if any
}

// result is one decode outcome: an event or a per-event decode error.
// Every frame yields at most one result.
type result struct {
	evt trickle.Event
	err error
}

// Interface compliance check.
var _ trickle.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:     body,
		ctx:      ctx,
		splitter: sse.NewSplitter(),
		readBuf:  make([]byte, 4096),
		state:    trickle.StreamStateNew,
	}
}

// Next returns the next decode outcome from the stream. Returns io.EOF when
// the transport closes cleanly; a *trickle.DecodeError return is non-terminal
// and subsequent calls keep delivering.
func (s *stream) Next() (trickle.Event, error) {
	for {
		s.mu.Lock()
		switch s.state {
		case trickle.StreamStateComplete:
			s.mu.Unlock()
			return trickle.Event{}, io.EOF
		case trickle.StreamStateError:
			err := s.err
			s.mu.Unlock()
			return trickle.Event{}, err
		case trickle.StreamStateClosed:
			s.mu.Unlock()
			return trickle.Event{}, fmt.Errorf("openai: %w", trickle.ErrStreamClosed)
		}

		if len(s.queue) > 0 {
			r := s.queue[0]
			s.queue = s.queue[1:]
			if r.err != nil {
				// Local to this event; the session keeps streaming.
				s.mu.Unlock()
				return trickle.Event{}, r.err
			}
			s.acc.Apply(r.evt)
			evt := r.evt
			s.mu.Unlock()
			return evt, nil
		}

		if s.done {
			s.state = trickle.StreamStateComplete
			s.mu.Unlock()
			return trickle.Event{}, io.EOF
		}
		s.mu.Unlock()

		if err := s.fill(); err != nil {
			return trickle.Event{}, s.terminate(err)
		}
	}
}

// fill reads one transport chunk and enqueues every decode outcome the chunk
// completes. A chunk that completes no frame (keep-alive, partial frame)
// enqueues nothing; the caller loops. The read runs unlocked: a concurrent
// Close closes the body, which unblocks it, and the post-read state check
// drops whatever arrived in the window.
func (s *stream) fill() error {
	n, err := s.body.Read(s.readBuf)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == trickle.StreamStateClosed {
		return nil
	}
	if n > 0 {
		s.state = trickle.StreamStateStreaming
		frames, ferr := s.splitter.Feed(s.readBuf[:n])
		s.enqueue(frames)
		if ferr != nil {
			return fmt.Errorf("openai: %w", ferr)
		}
	}
	switch {
	case err == io.EOF:
		// Clean close. A final frame without its trailing blank line is
		// still delivered.
		if frame, ok := s.splitter.Flush(); ok {
			s.enqueue([]string{frame})
		}
		s.done = true
		return nil
	case err != nil:
		return fmt.Errorf("openai: read stream: %w", err)
	}
	return nil
}

// enqueue parses frames to payloads and decodes payloads to outcomes,
// preserving arrival order. Sentinel and payload-less frames are skipped.
// Caller holds s.mu.
func (s *stream) enqueue(frames []string) {
	for _, frame := range frames {
		payload, ok := sse.Payload(frame)
		if !ok {
			continue
		}
		evt, err := decodeEvent(payload)
		s.queue = append(s.queue, result{evt: evt, err: err})
	}
}

// terminate records a terminal transport error and returns the result every
// later Next() call repeats. Context cancellation takes precedence so callers
// see context.Canceled rather than the transport's secondary read failure. A
// close that raced the failing read wins outright.
func (s *stream) terminate(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == trickle.StreamStateClosed {
		return fmt.Errorf("openai: %w", trickle.ErrStreamClosed)
	}
	s.state = trickle.StreamStateError
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.err = ctxErr
	} else {
		s.err = err
	}
	return s.err
}

// State returns the current stream state.
func (s *stream) State() trickle.StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Text returns the output text accumulated so far; final once the state is
// StreamStateComplete.
func (s *stream) Text() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == trickle.StreamStateNew {
		return "", fmt.Errorf("openai: %w", trickle.ErrStreamNotReady)
	}
	return s.acc.Text(), nil
}

// Close aborts the stream. Already-buffered events are discarded: after
// cancellation nothing more is delivered. Idempotent; safe after a terminal
// state and safe to call concurrently with Next, which closing the body
// unblocks.
func (s *stream) Close() error {
	s.mu.Lock()
	if s.state != trickle.StreamStateComplete && s.state != trickle.StreamStateError {
		s.state = trickle.StreamStateClosed
		s.queue = nil
	}
	s.mu.Unlock()
	return s.body.Close()
}
