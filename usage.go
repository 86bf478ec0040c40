package trickle

// Usage tracks token consumption for one response.
//
// Invariant: InputTokens counts non-cached input tokens only, so
//
//	total input = InputTokens + CachedTokens
//
// Providers normalize their API-specific fields to this invariant (the
// Responses API reports cached_tokens as a subset of input_tokens, so the
// provider subtracts and clamps to zero to guard against inconsistent
// upstream data).
type Usage struct {
	InputTokens  int
	OutputTokens int
	CachedTokens int
	TotalTokens  int
}
