package gemini

import (
	"context"
	"fmt"

	"github.com/pwalczyk/trickle"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ trickle.Provider = (*Client)(nil)

// Client implements [trickle.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [trickle.Stream] that synthesizes the standard event sequence from the
// SDK's chunk iterator.
func (c *Client) Stream(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
	model := c.resolveModel(req)
	iter := c.client.Models.GenerateContentStream(ctx, model, ConvertInput(req.Input), buildConfig(req))
	return NewStreamFromIter(ctx, iter), nil
}

// Create sends a synchronous request and blocks until the full response is
// available.
func (c *Client) Create(ctx context.Context, req trickle.Request) (trickle.Response, error) {
	model := c.resolveModel(req)
	resp, err := c.client.Models.GenerateContent(ctx, model, ConvertInput(req.Input), buildConfig(req))
	if err != nil {
		return trickle.Response{}, fmt.Errorf("gemini: %w", err)
	}
	return convertResponse(resp), nil
}

func (c *Client) resolveModel(req trickle.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}

func buildConfig(req trickle.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	}

	if req.Instructions != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.Instructions}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertInput converts trickle Messages to genai Contents. System and
// developer roles map to user turns; Gemini carries instructions in the
// request config, not the conversation. Exported for testing.
func ConvertInput(msgs []trickle.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		role := "user"
		if msg.Role == trickle.RoleAssistant {
			role = "model"
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	return result
}
