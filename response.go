package trickle

import "time"

// ResponseStatus is the lifecycle status of a Response.
type ResponseStatus string

const (
	StatusQueued     ResponseStatus = "queued"
	StatusInProgress ResponseStatus = "in_progress"
	StatusCompleted  ResponseStatus = "completed"
	StatusFailed     ResponseStatus = "failed"
	StatusIncomplete ResponseStatus = "incomplete"
)

// Response is a model response snapshot. Lifecycle events carry progressively
// more complete snapshots; the one on response.completed is final.
type Response struct {
	ID        string
	Model     string
	Status    ResponseStatus
	Output    []OutputItem
	Usage     Usage
	Err       *ErrorDetail // populated on failed responses
	CreatedAt time.Time
}

// OutputText concatenates the text of all output_text parts across all
// message items, in output order. Convenience for callers who only want the
// final text of a completed response.
func (r Response) OutputText() string {
	var out string
	for _, item := range r.Output {
		for _, part := range item.Content {
			if part.Type == PartOutputText {
				out += part.Text
			}
		}
	}
	return out
}

// OutputItemType discriminates OutputItem variants.
type OutputItemType string

const (
	ItemMessage      OutputItemType = "message"
	ItemReasoning    OutputItemType = "reasoning"
	ItemFunctionCall OutputItemType = "function_call"
)

// OutputItem is one element of a response's output array: an assistant
// message, a reasoning block, or a function call.
type OutputItem struct {
	ID     string
	Type   OutputItemType
	Status string

	// message
	Role    Role
	Content []ContentPart

	// reasoning
	Summary []string

	// function_call
	CallID    string
	Name      string
	Arguments string
}

// ContentPartType discriminates ContentPart variants.
type ContentPartType string

const (
	PartOutputText ContentPartType = "output_text"
	PartRefusal    ContentPartType = "refusal"
)

// ContentPart is one content element of a message output item.
type ContentPart struct {
	Type    ContentPartType
	Text    string
	Refusal string
}

// ErrorDetail is a structured error reported by the server, either as a
// stream-level error event or inside a failed Response.
type ErrorDetail struct {
	Code    string
	Message string
}

func (e ErrorDetail) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}
