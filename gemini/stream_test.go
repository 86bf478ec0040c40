package gemini_test

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/pwalczyk/trickle"
	"github.com/pwalczyk/trickle/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockChunks returns a genai-style streaming iterator from pre-built chunks.
func mockChunks(chunks []*genai.GenerateContentResponse) func(func(*genai.GenerateContentResponse, error) bool) {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func collectStreamEvents(t *testing.T, s trickle.Stream) []trickle.Event {
	t.Helper()
	var events []trickle.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
	return events
}

func textChunk(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		ResponseID:   "resp_1",
		ModelVersion: "gemini-2.5-flash",
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func finalChunk(text string, reason genai.FinishReason) *genai.GenerateContentResponse {
	c := textChunk(text)
	c.Candidates[0].FinishReason = reason
	c.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     10,
		CandidatesTokenCount: 5,
		TotalTokenCount:      15,
	}
	return c
}

func TestStream_TextDeltas(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		textChunk("Hello"),
		finalChunk(" world", genai.FinishReasonStop),
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	events := collectStreamEvents(t, s)

	kinds := make([]trickle.Kind, len(events))
	for i, evt := range events {
		kinds[i] = evt.Kind
	}
	assert.Equal(t, []trickle.Kind{
		trickle.KindResponseCreated,
		trickle.KindOutputTextDelta,
		trickle.KindOutputTextDelta,
		trickle.KindOutputTextDone,
		trickle.KindResponseCompleted,
	}, kinds)

	assert.Equal(t, "Hello", events[1].Delta)
	assert.Equal(t, " world", events[2].Delta)
	assert.Equal(t, "Hello world", events[3].Text)

	// Sequence numbers are assigned in emission order.
	for i, evt := range events {
		assert.Equal(t, i, evt.SequenceNumber)
	}

	final := events[len(events)-1]
	assert.True(t, final.Terminal())
	require.NotNil(t, final.Response)
	assert.Equal(t, "resp_1", final.Response.ID)
	assert.Equal(t, "Hello world", final.Response.OutputText())
	assert.Equal(t, trickle.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, final.Response.Usage)

	text, err := s.Text()
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
	assert.Equal(t, trickle.StreamStateComplete, s.State())
}

func TestStream_ThoughtDeltas(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "reasoning", Thought: true},
				}},
			}},
		},
		finalChunk("Answer", genai.FinishReasonStop),
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	events := collectStreamEvents(t, s)

	kinds := make([]trickle.Kind, len(events))
	for i, evt := range events {
		kinds[i] = evt.Kind
	}
	assert.Equal(t, []trickle.Kind{
		trickle.KindResponseCreated,
		trickle.KindSummaryTextDelta,
		trickle.KindOutputTextDelta,
		trickle.KindSummaryTextDone,
		trickle.KindOutputTextDone,
		trickle.KindResponseCompleted,
	}, kinds)

	assert.Equal(t, "reasoning", events[1].Delta)
	assert.Equal(t, "reasoning", events[3].SummaryText)

	// The reasoning item precedes the message item in the final output.
	final := events[len(events)-1]
	require.NotNil(t, final.Response)
	require.Len(t, final.Response.Output, 2)
	assert.Equal(t, trickle.ItemReasoning, final.Response.Output[0].Type)
	assert.Equal(t, []string{"reasoning"}, final.Response.Output[0].Summary)
	assert.Equal(t, trickle.ItemMessage, final.Response.Output[1].Type)

	// Thought text never enters the output text.
	text, err := s.Text()
	require.NoError(t, err)
	assert.Equal(t, "Answer", text)
}

func TestStream_FunctionCall(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{ID: "fc_1", Name: "read", Args: map[string]any{"path": "a.go"}}},
				}},
				FinishReason: genai.FinishReasonStop,
			}},
		},
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	events := collectStreamEvents(t, s)

	require.Len(t, events, 3)
	assert.Equal(t, trickle.KindOutputItemDone, events[1].Kind)
	item := events[1].Item
	require.NotNil(t, item)
	assert.Equal(t, trickle.ItemFunctionCall, item.Type)
	assert.Equal(t, "fc_1", item.CallID)
	assert.Equal(t, "read", item.Name)
	assert.JSONEq(t, `{"path":"a.go"}`, item.Arguments)

	final := events[2]
	assert.Equal(t, trickle.KindResponseCompleted, final.Kind)
	require.Len(t, final.Response.Output, 1)
	assert.Equal(t, trickle.ItemFunctionCall, final.Response.Output[0].Type)
}

func TestStream_FunctionCallNilArgs(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{ID: "fc_nil", Name: "noop", Args: nil}},
				}},
				FinishReason: genai.FinishReasonStop,
			}},
		},
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	events := collectStreamEvents(t, s)

	require.Len(t, events, 3)
	require.NotNil(t, events[1].Item)
	assert.Equal(t, "{}", events[1].Item.Arguments)
}

func TestStream_FunctionCallBadArgs(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{ID: "fc_bad", Name: "read", Args: map[string]any{"val": math.NaN()}}},
				}},
			}},
		},
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))

	// The created event comes out first; the bad call terminates the stream.
	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, trickle.KindResponseCreated, evt.Kind)

	_, err = s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid function call arguments")
	assert.Equal(t, trickle.StreamStateError, s.State())
}

func TestStream_MaxTokens(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		finalChunk("truncated", genai.FinishReasonMaxTokens),
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	events := collectStreamEvents(t, s)

	final := events[len(events)-1]
	assert.Equal(t, trickle.KindResponseIncomplete, final.Kind)
	assert.True(t, final.Terminal())
	assert.Equal(t, trickle.StatusIncomplete, final.Response.Status)
}

func TestStream_CachedUsage(t *testing.T) {
	t.Parallel()
	c := finalChunk("Hi", genai.FinishReasonStop)
	c.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:        100,
		CachedContentTokenCount: 60,
		CandidatesTokenCount:    5,
		ThoughtsTokenCount:      3,
		TotalTokenCount:         108,
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks([]*genai.GenerateContentResponse{c}))
	events := collectStreamEvents(t, s)

	final := events[len(events)-1]
	assert.Equal(t, trickle.Usage{InputTokens: 40, OutputTokens: 8, CachedTokens: 60, TotalTokens: 108}, final.Response.Usage)
}

func TestStream_PromptBlocked(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		{
			PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
				BlockReason: genai.BlockedReasonSafety,
			},
		},
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	_, err := s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt blocked")
	assert.Equal(t, trickle.StreamStateError, s.State())
}

func TestStream_IteratorError(t *testing.T) {
	t.Parallel()
	iterErr := errors.New("connection reset")
	errIter := func(yield func(*genai.GenerateContentResponse, error) bool) {
		yield(nil, iterErr)
	}

	s := gemini.NewStreamFromIter(context.Background(), errIter)
	_, err := s.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, iterErr)
	assert.Equal(t, trickle.StreamStateError, s.State())

	// The terminal error latches.
	_, err2 := s.Next()
	assert.Equal(t, err, err2)
}

func TestStream_EmptyIterator(t *testing.T) {
	t.Parallel()
	emptyIter := func(yield func(*genai.GenerateContentResponse, error) bool) {}

	s := gemini.NewStreamFromIter(context.Background(), emptyIter)
	_, err := s.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, trickle.StreamStateComplete, s.State())
}

func TestStream_TextBeforeNext(t *testing.T) {
	t.Parallel()
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(nil))
	_, err := s.Text()
	assert.ErrorIs(t, err, trickle.ErrStreamNotReady)
}

func TestStream_Close(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		textChunk("Hello"),
		finalChunk(" world", genai.FinishReasonStop),
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	_, err := s.Next()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, trickle.StreamStateClosed, s.State())

	_, err = s.Next()
	assert.ErrorIs(t, err, trickle.ErrStreamClosed)
	require.NoError(t, s.Close())
}

func TestStream_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	blockedIter := func(yield func(*genai.GenerateContentResponse, error) bool) {
		yield(textChunk("Hi"), nil)
		<-ctx.Done()
		yield(nil, ctx.Err())
	}

	s := gemini.NewStreamFromIter(ctx, blockedIter)

	evt, err := s.Next() // created
	require.NoError(t, err)
	assert.Equal(t, trickle.KindResponseCreated, evt.Kind)
	evt, err = s.Next() // delta
	require.NoError(t, err)
	assert.Equal(t, "Hi", evt.Delta)

	cancel()
	_, err = s.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, trickle.StreamStateError, s.State())
}

func TestStream_CloseUnblocksConcurrentNext(t *testing.T) {
	t.Parallel()

	pulled := make(chan struct{})
	release := make(chan struct{})
	blocking := func(yield func(*genai.GenerateContentResponse, error) bool) {
		close(pulled)
		<-release
		yield(textChunk("late"), nil)
	}

	s := gemini.NewStreamFromIter(context.Background(), blocking)

	nextErr := make(chan error, 1)
	go func() {
		_, err := s.Next()
		nextErr <- err
	}()

	// Close while the pull is in flight; the chunk arriving afterwards must
	// be dropped, not delivered.
	<-pulled
	require.NoError(t, s.Close())
	close(release)

	select {
	case err := <-nextErr:
		assert.ErrorIs(t, err, trickle.ErrStreamClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Next still blocked after Close")
	}
	assert.Equal(t, trickle.StreamStateClosed, s.State())
}
