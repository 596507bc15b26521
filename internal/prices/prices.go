// Package prices reads daily mandi prices from the data.gov.in Agmarknet
// resource.
package prices

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Godzilla108108/agritech/internal/fetch"
)

const (
	DefaultBaseURL  = "https://api.data.gov.in"
	DefaultResource = "9ef84268-d588-465a-a308-a864a43d0070"
	DefaultLimit    = 50
)

// Source is anything that can produce the current price list.
type Source interface {
	Prices(ctx context.Context) ([]Price, error)
}

// Options locate the price resource.
type Options struct {
	BaseURL  string
	Resource string
	APIKey   string
	Limit    int
}

type Client struct {
	fetch *fetch.Client
	opts  Options
}

func New(fc *fetch.Client, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Resource == "" {
		opts.Resource = DefaultResource
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{fetch: fc, opts: opts}
}

type response struct {
	Records []Price `json:"records"`
}

// Prices fetches up to Limit records. A body without a records array is
// malformed; an empty array is a valid, empty result.
func (c *Client) Prices(ctx context.Context) ([]Price, error) {
	q := url.Values{}
	q.Set("api-key", c.opts.APIKey)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(c.opts.Limit))
	u := fmt.Sprintf("%s/resource/%s?%s", c.opts.BaseURL, url.PathEscape(c.opts.Resource), q.Encode())

	var raw response
	if err := c.fetch.GetJSON(ctx, "prices", u, &raw); err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	if raw.Records == nil {
		return nil, fetch.Malformed("prices: missing records")
	}
	return raw.Records, nil
}
