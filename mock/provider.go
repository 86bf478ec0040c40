// Package mock provides test doubles for trickle interfaces using function fields.
package mock

import (
	"context"

	"github.com/pwalczyk/trickle"
)

// Interface compliance check.
var _ trickle.Provider = (*Provider)(nil)

// Provider is a test double for trickle.Provider.
// Set the function fields for the methods you need.
type Provider struct {
	StreamFn func(ctx context.Context, req trickle.Request) (trickle.Stream, error)
	CreateFn func(ctx context.Context, req trickle.Request) (trickle.Response, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Create delegates to CreateFn.
func (p *Provider) Create(ctx context.Context, req trickle.Request) (trickle.Response, error) {
	return p.CreateFn(ctx, req)
}
