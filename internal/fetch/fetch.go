// Package fetch issues single JSON requests to external data sources and
// classifies their failures into a small taxonomy the UI can act on.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every request that doesn't carry its own deadline.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Client wraps an *http.Client with classification, logging and metrics.
type Client struct {
	http    *http.Client
	metrics *Metrics
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests inject mocked transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records per-source request counts and latency.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New builds a Client with a 10s timeout unless overridden.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: DefaultTimeout},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTPClient exposes the configured client for SDKs that take one.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// GetJSON fetches url and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, source, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building %s request: %w", source, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.Do(req, source, v)
}

// PostJSON encodes body, posts it to url and decodes the reply into v.
func (c *Client) PostJSON(ctx context.Context, source, url string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", source, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building %s request: %w", source, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.Do(req, source, v)
}

// Do sends req and decodes a successful JSON body into v.
// The returned error is always one of the fetch error types or context.Canceled.
func (c *Client) Do(req *http.Request, source string, v any) error {
	start := time.Now()
	err := c.do(req, v)
	c.Observe(source, err, time.Since(start))
	return err
}

// Observe records the outcome of a request made outside Do, such as an SDK call.
func (c *Client) Observe(source string, err error, d time.Duration) {
	c.metrics.Observe(source, Kind(err), d)
	if err != nil {
		c.log.Debug("fetch failed",
			zap.String("source", source),
			zap.String("kind", Kind(err)),
			zap.Duration("took", d),
			zap.Error(err),
		)
	}
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return Classify(req.Context(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Classify(req.Context(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrHTTPStatus{Code: resp.StatusCode, Err: errors.New(snippet(body)), Body: body}
	}

	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return ErrMalformedResponse{Err: err}
	}
	return nil
}

// Classify turns a transport error into ErrUnreachable, keeping
// caller-initiated cancellation recognizable.
func Classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || (ctx != nil && errors.Is(ctx.Err(), context.Canceled)) {
		return fmt.Errorf("request superseded: %w", context.Canceled)
	}
	if Kind(err) != "other" {
		return err
	}
	return ErrUnreachable{Err: err}
}

func snippet(body []byte) string {
	const n = 200
	s := string(bytes.TrimSpace(body))
	if len(s) > n {
		cut := n
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	if s == "" {
		return "empty body"
	}
	return s
}
