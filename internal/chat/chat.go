// Package chat talks to the Gemini generative-language API on behalf of the
// farming assistant.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"google.golang.org/genai"

	"github.com/Godzilla108108/agritech/internal/fetch"
)

const DefaultModel = "gemini-2.0-flash"

// Source answers a single prompt.
type Source interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Options configure a Client.
type Options struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL string
}

type Client struct {
	genai *genai.Client
	fetch *fetch.Client
	model string
}

// New creates a Gemini client that shares fc's HTTP client and metrics.
func New(ctx context.Context, fc *fetch.Client, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("chat not configured: missing API key")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: fc.HTTPClient(),
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{genai: client, fetch: fc, model: opts.Model}, nil
}

// Ask sends prompt as a single user turn and returns the first candidate's text.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.ask(ctx, prompt)
	c.fetch.Observe("chat", err, time.Since(start))
	return text, err
}

func (c *Client) ask(ctx context.Context, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classify(ctx, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fetch.Malformed("chat: missing candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil || content.Parts[0].Text == "" {
		return "", fetch.Malformed("chat: missing candidates[0].content.parts[0].text")
	}
	return content.Parts[0].Text, nil
}

// classify maps SDK errors onto the fetch taxonomy.
func classify(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fetch.ErrHTTPStatus{Code: apiErr.Code, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return fetch.ErrHTTPStatus{Code: apiErrPtr.Code, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fetch.Classify(ctx, err)
	}
	return fetch.ErrMalformedResponse{Err: err}
}
