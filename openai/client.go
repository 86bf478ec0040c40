package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pwalczyk/trickle"
)

// Interface compliance check.
var _ trickle.Provider = (*Client)(nil)

// Client implements [trickle.Provider] for the OpenAI Responses API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the default model used when a request does not name one.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new OpenAI [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming request to the Responses API and returns a
// [trickle.Stream] that delivers decoded events in arrival order.
func (c *Client) Stream(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return newStream(ctx, resp.Body), nil
}

// Create sends a synchronous request and blocks until the full response is
// available.
func (c *Client) Create(ctx context.Context, req trickle.Request) (trickle.Response, error) {
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return trickle.Response{}, err
	}
	defer resp.Body.Close()

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return trickle.Response{}, fmt.Errorf("openai: parse response: %w", err)
	}
	return convertResponse(wire), nil
}

func (c *Client) do(ctx context.Context, req trickle.Request, streaming bool) (*http.Response, error) {
	body, err := c.buildRequestBody(req, streaming)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+responsesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if streaming {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return resp, nil
}

func (c *Client) buildRequestBody(req trickle.Request, streaming bool) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	apiReq := apiRequest{
		Model:           model,
		Input:           convertInput(req.Input),
		Instructions:    req.Instructions,
		Stream:          streaming,
		MaxOutputTokens: req.MaxOutputTokens,
		Temperature:     req.Temperature,
	}
	return json.Marshal(apiReq)
}

func convertInput(msgs []trickle.Message) []apiInput {
	result := make([]apiInput, len(msgs))
	for i, m := range msgs {
		result[i] = apiInput{Role: string(m.Role), Content: m.Content}
	}
	return result
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("openai: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("openai: %s: %s", apiErr.Error.Code, apiErr.Error.Message)
}
