// Package openai implements [trickle.Provider] for the OpenAI Responses API.
//
// Streaming responses arrive as server-sent events over the HTTP response
// body. Frames are reassembled by [sse.Splitter], their payloads decoded by a
// kind-keyed dispatch table, and delivered through the pull-based
// [trickle.Stream] interface. Per-event decode failures are surfaced as
// *trickle.DecodeError from Next() and do not terminate the stream.
package openai

import "encoding/json"

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4.1-mini"
	responsesPath  = "/v1/responses"
)

// apiRequest is the JSON body sent to the Responses API.
type apiRequest struct {
	Model           string     `json:"model"`
	Input           []apiInput `json:"input"`
	Instructions    string     `json:"instructions,omitempty"`
	Stream          bool       `json:"stream,omitempty"`
	MaxOutputTokens int        `json:"max_output_tokens,omitempty"`
	Temperature     *float64   `json:"temperature,omitempty"`
}

type apiInput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// sseEnvelope is the wire shape of one streaming event payload. Pointer
// fields distinguish an absent field from a present-but-empty one, which the
// per-kind mandatory checks rely on.
//
// Item stays raw: its decode is best-effort (see putItem).
type sseEnvelope struct {
	Type           string `json:"type"`
	SequenceNumber int    `json:"sequence_number"`
	ItemID         string `json:"item_id"`
	OutputIndex    int    `json:"output_index"`
	ContentIndex   int    `json:"content_index"`

	Delta     *string `json:"delta"`
	Text      *string `json:"text"`
	Arguments *string `json:"arguments"`

	Item     json.RawMessage `json:"item"`
	Response *wireResponse   `json:"response"`

	// error events carry these at the top level.
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Wire shapes of nested records.

type wireResponse struct {
	ID        string     `json:"id"`
	Model     string     `json:"model"`
	Status    string     `json:"status"`
	CreatedAt int64      `json:"created_at"`
	Output    []wireItem `json:"output"`
	Usage     *wireUsage `json:"usage"`
	Error     *wireError `json:"error"`
}

type wireItem struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Status    string        `json:"status"`
	Role      string        `json:"role,omitempty"`
	Content   []wirePart    `json:"content,omitempty"`
	Summary   []wireSummary `json:"summary,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
}

type wirePart struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Refusal string `json:"refusal,omitempty"`
}

type wireSummary struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type wireUsage struct {
	InputTokens        int `json:"input_tokens"`
	OutputTokens       int `json:"output_tokens"`
	TotalTokens        int `json:"total_tokens"`
	InputTokensDetails struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"input_tokens_details"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiErrorResponse is the JSON body returned on non-200 HTTP responses.
type apiErrorResponse struct {
	Error wireError `json:"error"`
}
