package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"

	"github.com/pwalczyk/trickle"
	"google.golang.org/genai"
)

// stream implements [trickle.Stream] by wrapping the genai SDK's streaming
// iterator. Chunks are translated into the standard event sequence as they
// are pulled; the done snapshots and the final lifecycle event are
// synthesized when the iterator is exhausted.
//
// Close may be called from any goroutine, so the mutable fields are guarded
// by mu. The pull and stop funcs from iter.Pull2 are not safe for
// simultaneous use: only the pulling goroutine calls pull (unlocked), and
// whichever side observes the close with pull at rest releases the iterator.
type stream struct {
	pull func() (*genai.GenerateContentResponse, error, bool)
	stop func()
	ctx  context.Context

	mu      sync.Mutex
	pulling bool // a Next is inside pull
	stopped bool // iterator released

	queue []trickle.Event
	done  bool // iterator exhausted, tail events enqueued

	started bool // response.created emitted
	seq     int
	id      string
	model   string
	usage   trickle.Usage
	finish  genai.FinishReason

	text    strings.Builder
	summary strings.Builder
	calls   []trickle.OutputItem

	state trickle.StreamState
	acc   trickle.TextAccumulator
	err   error
}

// Interface compliance check.
var _ trickle.Stream = (*stream)(nil)

// NewStreamFromIter wraps a genai chunk iterator in a [trickle.Stream].
// Exported for testing with pre-built chunk sequences.
func NewStreamFromIter(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) trickle.Stream {
	next, stop := iter.Pull2(iterFn)
	return &stream{
		pull:  next,
		stop:  stop,
		ctx:   ctx,
		state: trickle.StreamStateNew,
	}
}

// Next returns the next synthesized event. Returns io.EOF after the final
// lifecycle event has been delivered.
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
			return trickle.Event{}, fmt.Errorf("gemini: %w", trickle.ErrStreamClosed)
		}

		if len(s.queue) > 0 {
			evt := s.queue[0]
			s.queue = s.queue[1:]
			s.acc.Apply(evt)
			s.mu.Unlock()
			return evt, nil
		}

		if s.done {
			s.state = trickle.StreamStateComplete
			s.mu.Unlock()
			return trickle.Event{}, io.EOF
		}
		s.pulling = true
		s.mu.Unlock()

		if err := s.fill(); err != nil {
			return trickle.Event{}, s.terminate(err)
		}
	}
}

// fill pulls one chunk and enqueues the events it produces. Exhaustion
// enqueues the synthesized tail and marks the stream done. The pull runs
// unlocked; a Close that raced it is honored once the pull returns, and the
// iterator is released here since Close could not do so safely.
func (s *stream) fill() error {
	chunk, err, ok := s.pull()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulling = false
	if s.state == trickle.StreamStateClosed {
		s.stopLocked()
		return nil
	}
	if !ok {
		s.enqueueTail()
		s.done = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	s.state = trickle.StreamStateStreaming
	return s.processChunk(chunk)
}

// stopLocked releases the iterator exactly once. Caller holds s.mu and has
// ensured no pull is in flight.
func (s *stream) stopLocked() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.stop()
}

func (s *stream) processChunk(chunk *genai.GenerateContentResponse) error {
	if chunk.ResponseID != "" {
		s.id = chunk.ResponseID
	}
	if chunk.ModelVersion != "" {
		s.model = chunk.ModelVersion
	}
	if chunk.UsageMetadata != nil {
		s.usage = convertUsage(chunk.UsageMetadata)
	}

	if len(chunk.Candidates) == 0 {
		if chunk.PromptFeedback != nil && chunk.PromptFeedback.BlockReason != "" {
			return fmt.Errorf("gemini: prompt blocked: %s", chunk.PromptFeedback.BlockReason)
		}
		return nil
	}

	if !s.started {
		s.started = true
		evt := s.newEvent(trickle.KindResponseCreated)
		evt.Response = &trickle.Response{ID: s.id, Model: s.model, Status: trickle.StatusInProgress}
		s.queue = append(s.queue, evt)
	}

	cand := chunk.Candidates[0]
	if cand.FinishReason != "" {
		s.finish = cand.FinishReason
	}
	if cand.Content == nil {
		return nil
	}

	for _, part := range cand.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			item, err := convertFunctionCall(part.FunctionCall)
			if err != nil {
				return err
			}
			s.calls = append(s.calls, item)
			evt := s.newEvent(trickle.KindOutputItemDone)
			evt.Item = &item
			s.queue = append(s.queue, evt)
		case part.Thought:
			s.summary.WriteString(part.Text)
			evt := s.newEvent(trickle.KindSummaryTextDelta)
			evt.Delta = part.Text
			s.queue = append(s.queue, evt)
		case part.Text != "":
			s.text.WriteString(part.Text)
			evt := s.newEvent(trickle.KindOutputTextDelta)
			evt.Delta = part.Text
			s.queue = append(s.queue, evt)
		}
	}
	return nil
}

// enqueueTail synthesizes the done snapshots and the final lifecycle event
// after the iterator is exhausted. Caller holds s.mu.
func (s *stream) enqueueTail() {
	if s.summary.Len() > 0 {
		evt := s.newEvent(trickle.KindSummaryTextDone)
		evt.SummaryText = s.summary.String()
		s.queue = append(s.queue, evt)
	}
	if s.text.Len() > 0 {
		evt := s.newEvent(trickle.KindOutputTextDone)
		evt.Text = s.text.String()
		s.queue = append(s.queue, evt)
	}
	if !s.started {
		return
	}

	kind := trickle.KindResponseCompleted
	status := trickle.StatusCompleted
	if s.finish == genai.FinishReasonMaxTokens {
		kind = trickle.KindResponseIncomplete
		status = trickle.StatusIncomplete
	}

	evt := s.newEvent(kind)
	evt.Response = &trickle.Response{
		ID:     s.id,
		Model:  s.model,
		Status: status,
		Output: s.buildOutput(),
		Usage:  s.usage,
	}
	s.queue = append(s.queue, evt)
}

func (s *stream) buildOutput() []trickle.OutputItem {
	var out []trickle.OutputItem
	if s.summary.Len() > 0 {
		out = append(out, trickle.OutputItem{
			Type:    trickle.ItemReasoning,
			Summary: []string{s.summary.String()},
		})
	}
	if s.text.Len() > 0 {
		out = append(out, trickle.OutputItem{
			Type:   trickle.ItemMessage,
			Status: "completed",
			Role:   trickle.RoleAssistant,
			Content: []trickle.ContentPart{
				{Type: trickle.PartOutputText, Text: s.text.String()},
			},
		})
	}
	return append(out, s.calls...)
}

// newEvent starts an event of the given kind with the next sequence number.
// Synthesized events carry their kind as the raw tag.
func (s *stream) newEvent(kind trickle.Kind) trickle.Event {
	evt := trickle.Event{Kind: kind, RawKind: string(kind), SequenceNumber: s.seq}
	s.seq++
	return evt
}

// terminate records a terminal error and returns the result every later
// Next() call repeats. Context cancellation takes precedence; a close that
// raced the failing pull wins outright.
func (s *stream) terminate(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == trickle.StreamStateClosed {
		return fmt.Errorf("gemini: %w", trickle.ErrStreamClosed)
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
		return "", fmt.Errorf("gemini: %w", trickle.ErrStreamNotReady)
	}
	return s.acc.Text(), nil
}

// Close aborts the stream and releases the iterator. Already-buffered events
// are discarded. Idempotent; safe after a terminal state and safe to call
// concurrently with Next. When a pull is in flight the iterator cannot be
// released here; the pulling goroutine does it when the pull returns.
func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != trickle.StreamStateComplete && s.state != trickle.StreamStateError {
		s.state = trickle.StreamStateClosed
		s.queue = nil
	}
	if !s.pulling {
		s.stopLocked()
	}
	return nil
}

func convertFunctionCall(fc *genai.FunctionCall) (trickle.OutputItem, error) {
	args := []byte("{}")
	if fc.Args != nil {
		b, err := json.Marshal(fc.Args)
		if err != nil {
			return trickle.OutputItem{}, fmt.Errorf("gemini: invalid function call arguments: %w", err)
		}
		args = b
	}
	return trickle.OutputItem{
		ID:        fc.ID,
		Type:      trickle.ItemFunctionCall,
		Status:    "completed",
		CallID:    fc.ID,
		Name:      fc.Name,
		Arguments: string(args),
	}, nil
}

func convertUsage(u *genai.GenerateContentResponseUsageMetadata) trickle.Usage {
	in := int(u.PromptTokenCount) - int(u.CachedContentTokenCount)
	if in < 0 {
		in = 0
	}
	return trickle.Usage{
		InputTokens:  in,
		OutputTokens: int(u.CandidatesTokenCount) + int(u.ThoughtsTokenCount),
		CachedTokens: int(u.CachedContentTokenCount),
		TotalTokens:  int(u.TotalTokenCount),
	}
}

// convertResponse maps a non-streaming SDK response to the domain Response.
func convertResponse(resp *genai.GenerateContentResponse) trickle.Response {
	out := trickle.Response{
		ID:     resp.ResponseID,
		Model:  resp.ModelVersion,
		Status: trickle.StatusCompleted,
	}
	if resp.UsageMetadata != nil {
		out.Usage = convertUsage(resp.UsageMetadata)
	}
	if len(resp.Candidates) == 0 {
		return out
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonMaxTokens {
		out.Status = trickle.StatusIncomplete
	}
	if cand.Content == nil {
		return out
	}

	var text, summary strings.Builder
	var calls []trickle.OutputItem
	for _, part := range cand.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			item, err := convertFunctionCall(part.FunctionCall)
			if err != nil {
				continue
			}
			calls = append(calls, item)
		case part.Thought:
			summary.WriteString(part.Text)
		case part.Text != "":
			text.WriteString(part.Text)
		}
	}
	if summary.Len() > 0 {
		out.Output = append(out.Output, trickle.OutputItem{
			Type:    trickle.ItemReasoning,
			Summary: []string{summary.String()},
		})
	}
	if text.Len() > 0 {
		out.Output = append(out.Output, trickle.OutputItem{
			Type:   trickle.ItemMessage,
			Status: "completed",
			Role:   trickle.RoleAssistant,
			Content: []trickle.ContentPart{
				{Type: trickle.PartOutputText, Text: text.String()},
			},
		})
	}
	out.Output = append(out.Output, calls...)
	return out
}
