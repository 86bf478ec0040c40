package openai

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pwalczyk/trickle"
)

// kindSpec is one entry of the event dispatch table: the domain kind for a
// wire tag, a mandatory-field check, and the field population logic.
// Supporting a new event kind is a new table entry, nothing else.
type kindSpec struct {
	kind     trickle.Kind
	check    func(*sseEnvelope) error
	populate func(*trickle.Event, *sseEnvelope)
}

var kindTable = map[string]kindSpec{
	"response.created":     {kind: trickle.KindResponseCreated, check: needResponse, populate: putResponse},
	"response.in_progress": {kind: trickle.KindResponseInProgress, check: needResponse, populate: putResponse},
	"response.queued":      {kind: trickle.KindResponseQueued, check: needResponse, populate: putResponse},
	"response.completed":   {kind: trickle.KindResponseCompleted, check: needResponse, populate: putResponse},
	"response.failed":      {kind: trickle.KindResponseFailed, check: needResponse, populate: putResponse},
	"response.incomplete":  {kind: trickle.KindResponseIncomplete, check: needResponse, populate: putResponse},

	"response.output_item.added": {kind: trickle.KindOutputItemAdded, populate: putItem},
	"response.output_item.done":  {kind: trickle.KindOutputItemDone, populate: putItem},

	"response.content_part.added": {kind: trickle.KindContentPartAdded},
	"response.content_part.done":  {kind: trickle.KindContentPartDone},

	"response.output_text.delta": {kind: trickle.KindOutputTextDelta, check: needDelta, populate: putDelta},
	"response.output_text.done":  {kind: trickle.KindOutputTextDone, check: needText, populate: putText},

	"response.reasoning_summary_text.delta": {kind: trickle.KindSummaryTextDelta, check: needDelta, populate: putDelta},
	"response.reasoning_summary_text.done":  {kind: trickle.KindSummaryTextDone, check: needText, populate: putSummaryText},

	"response.function_call_arguments.delta": {kind: trickle.KindArgumentsDelta, check: needDelta, populate: putDelta},
	"response.function_call_arguments.done":  {kind: trickle.KindArgumentsDone, check: needArguments, populate: putArguments},

	"error": {kind: trickle.KindError, populate: putError},
}

// decodeEvent decodes one payload string into a typed event.
//
// Decoding is lenient at the envelope level: a wire tag outside the table
// yields a KindUnknown event carrying only the raw tag, never an error. It
// fails only when the envelope itself is not valid JSON or a field mandatory
// for the detected kind is absent, and then always as a *trickle.DecodeError
// so the stream can keep going.
func decodeEvent(payload string) (trickle.Event, error) {
	var env sseEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return trickle.Event{}, &trickle.DecodeError{
			Payload: payload,
			Err:     fmt.Errorf("openai: parse envelope: %w", err),
		}
	}

	spec, ok := kindTable[env.Type]
	if !ok {
		return trickle.Event{Kind: trickle.KindUnknown, RawKind: env.Type}, nil
	}

	if spec.check != nil {
		if err := spec.check(&env); err != nil {
			return trickle.Event{}, &trickle.DecodeError{
				Payload: payload,
				Err:     fmt.Errorf("openai: %s: %w", env.Type, err),
			}
		}
	}

	evt := trickle.Event{
		Kind:           spec.kind,
		RawKind:        env.Type,
		SequenceNumber: env.SequenceNumber,
		ItemID:         env.ItemID,
		OutputIndex:    env.OutputIndex,
		ContentIndex:   env.ContentIndex,
	}
	if spec.populate != nil {
		spec.populate(&evt, &env)
	}
	return evt, nil
}

// Mandatory-field checks.

func needResponse(env *sseEnvelope) error {
	if env.Response == nil {
		return fmt.Errorf("missing response")
	}
	return nil
}

func needDelta(env *sseEnvelope) error {
	if env.Delta == nil {
		return fmt.Errorf("missing delta")
	}
	return nil
}

func needText(env *sseEnvelope) error {
	if env.Text == nil {
		return fmt.Errorf("missing text")
	}
	return nil
}

func needArguments(env *sseEnvelope) error {
	if env.Arguments == nil {
		return fmt.Errorf("missing arguments")
	}
	return nil
}

// Field population.

func putResponse(evt *trickle.Event, env *sseEnvelope) {
	resp := convertResponse(*env.Response)
	evt.Response = &resp
}

// putItem decodes the nested output item best-effort: a malformed item leaves
// Item nil without failing the event. Item shapes evolve faster than the
// envelope, and an undecodable item should not cost the caller the event.
func putItem(evt *trickle.Event, env *sseEnvelope) {
	if len(env.Item) == 0 {
		return
	}
	var wi wireItem
	if err := json.Unmarshal(env.Item, &wi); err != nil {
		return
	}
	item := convertItem(wi)
	evt.Item = &item
}

func putDelta(evt *trickle.Event, env *sseEnvelope) {
	evt.Delta = *env.Delta
}

func putText(evt *trickle.Event, env *sseEnvelope) {
	evt.Text = *env.Text
}

func putSummaryText(evt *trickle.Event, env *sseEnvelope) {
	evt.SummaryText = *env.Text
}

func putArguments(evt *trickle.Event, env *sseEnvelope) {
	evt.Arguments = *env.Arguments
}

func putError(evt *trickle.Event, env *sseEnvelope) {
	evt.Err = &trickle.ErrorDetail{Code: env.Code, Message: env.Message}
}

// Wire → domain conversion.

func convertResponse(w wireResponse) trickle.Response {
	resp := trickle.Response{
		ID:     w.ID,
		Model:  w.Model,
		Status: trickle.ResponseStatus(w.Status),
	}
	if w.CreatedAt > 0 {
		resp.CreatedAt = time.Unix(w.CreatedAt, 0).UTC()
	}
	for _, wi := range w.Output {
		resp.Output = append(resp.Output, convertItem(wi))
	}
	if w.Usage != nil {
		resp.Usage = convertUsage(*w.Usage)
	}
	if w.Error != nil {
		resp.Err = &trickle.ErrorDetail{Code: w.Error.Code, Message: w.Error.Message}
	}
	return resp
}

func convertItem(w wireItem) trickle.OutputItem {
	item := trickle.OutputItem{
		ID:        w.ID,
		Type:      trickle.OutputItemType(w.Type),
		Status:    w.Status,
		Role:      trickle.Role(w.Role),
		CallID:    w.CallID,
		Name:      w.Name,
		Arguments: w.Arguments,
	}
	for _, p := range w.Content {
		item.Content = append(item.Content, trickle.ContentPart{
			Type:    trickle.ContentPartType(p.Type),
			Text:    p.Text,
			Refusal: p.Refusal,
		})
	}
	for _, s := range w.Summary {
		item.Summary = append(item.Summary, s.Text)
	}
	return item
}

// convertUsage normalizes API usage to the domain invariant: InputTokens is
// non-cached input only. Clamped to zero to guard against inconsistent
// upstream counts.
func convertUsage(w wireUsage) trickle.Usage {
	in := w.InputTokens - w.InputTokensDetails.CachedTokens
	if in < 0 {
		in = 0
	}
	return trickle.Usage{
		InputTokens:  in,
		OutputTokens: w.OutputTokens,
		CachedTokens: w.InputTokensDetails.CachedTokens,
		TotalTokens:  w.TotalTokens,
	}
}
