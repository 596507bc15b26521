package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Godzilla108108/agritech/internal/chat"
	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/prices"
	"github.com/Godzilla108108/agritech/internal/weather"
)

// Client reaches the sources through a proxy. It satisfies weather.Source,
// prices.Source and chat.Source, restoring the original error types from
// the proxy's error bodies.
type Client struct {
	fetch *fetch.Client
	base  string
}

var (
	_ weather.Source = (*Client)(nil)
	_ prices.Source  = (*Client)(nil)
	_ chat.Source    = (*Client)(nil)
)

func NewClient(fc *fetch.Client, baseURL string) *Client {
	return &Client{fetch: fc, base: strings.TrimRight(baseURL, "/")}
}

func (c *Client) Snapshot(ctx context.Context, location string) (weather.Snapshot, error) {
	var snap weather.Snapshot
	u := c.base + "/api/weather?" + url.Values{"location": {location}}.Encode()
	if err := c.fetch.GetJSON(ctx, "proxy.weather", u, &snap); err != nil {
		return weather.Snapshot{}, restore(err)
	}
	return snap, nil
}

func (c *Client) Prices(ctx context.Context) ([]prices.Price, error) {
	var body PricesBody
	if err := c.fetch.GetJSON(ctx, "proxy.prices", c.base+"/api/prices", &body); err != nil {
		return nil, restore(err)
	}
	if body.Records == nil {
		return nil, fetch.Malformed("proxy prices: missing records")
	}
	return body.Records, nil
}

func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	var resp chat.Response
	if err := c.fetch.PostJSON(ctx, "proxy.chat", c.base+"/api/chat", chat.NewRequest(prompt), &resp); err != nil {
		return "", restore(err)
	}
	return resp.Text()
}

// restore turns a proxy error response back into the error the upstream
// source produced.
func restore(err error) error {
	var status fetch.ErrHTTPStatus
	if !errors.As(err, &status) || len(status.Body) == 0 {
		return err
	}
	var body ErrorBody
	if json.Unmarshal(status.Body, &body) != nil || body.Error == "" {
		return err
	}
	cause := errors.New(body.Message)
	switch body.Error {
	case "location_not_found":
		return fetch.ErrLocationNotFound{
			Location: body.Location,
			Err:      fetch.ErrHTTPStatus{Code: 404, Err: cause},
		}
	case "http_status":
		return fetch.ErrHTTPStatus{Code: body.Status, Err: cause}
	case "malformed_response":
		return fetch.ErrMalformedResponse{Err: cause}
	case "unreachable":
		return fetch.ErrUnreachable{Err: cause}
	}
	return fmt.Errorf("proxy: %s: %w", body.Message, err)
}
