package trickle

import "context"

// Provider is a strategy pattern interface for model backends.
//
// Stream opens a streaming response; the returned Stream must be closed by
// the caller. Create performs the equivalent synchronous call and blocks
// until the full response is available.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
	Create(ctx context.Context, req Request) (Response, error)
}
