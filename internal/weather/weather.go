// Package weather reads current conditions and the 5-day forecast from an
// OpenWeatherMap-compatible API.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Godzilla108108/agritech/internal/fetch"
)

// DefaultBaseURL is the public OpenWeatherMap endpoint.
const DefaultBaseURL = "https://api.openweathermap.org"

// DefaultLocation is shown before the user searches.
const DefaultLocation = "Pune"

// samplesPerDay is the number of 3-hour forecast entries in one day.
const samplesPerDay = 8

// Source is anything that can produce a weather snapshot for a location.
type Source interface {
	Snapshot(ctx context.Context, location string) (Snapshot, error)
}

type Client struct {
	fetch   *fetch.Client
	baseURL string
	apiKey  string
}

func New(fc *fetch.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{fetch: fc, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// Snapshot fetches current conditions and the forecast concurrently. It fails
// if either call fails; the first error wins.
func (c *Client) Snapshot(ctx context.Context, location string) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cur, err := c.Current(gctx, location)
		snap.Current = cur
		return err
	})
	g.Go(func() error {
		days, err := c.Forecast(gctx, location)
		snap.Forecast = days
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.FetchedAt = time.Now()
	return snap, nil
}

// Current fetches present conditions for location.
func (c *Client) Current(ctx context.Context, location string) (Conditions, error) {
	var raw currentResponse
	if err := c.get(ctx, "/data/2.5/weather", location, &raw); err != nil {
		return Conditions{}, err
	}
	return raw.conditions()
}

// Forecast fetches the 3-hourly forecast and keeps one sample per day.
func (c *Client) Forecast(ctx context.Context, location string) ([]Day, error) {
	var raw forecastResponse
	if err := c.get(ctx, "/data/2.5/forecast", location, &raw); err != nil {
		return nil, err
	}
	if raw.List == nil {
		return nil, fetch.Malformed("forecast: missing list")
	}
	return Daily(raw.days()), nil
}

func (c *Client) get(ctx context.Context, path, location string, v any) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return fetch.ErrLocationNotFound{Err: fetch.ErrHTTPStatus{Code: 400, Err: errors.New("empty location")}}
	}
	q := url.Values{}
	q.Set("q", location)
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	err := c.fetch.GetJSON(ctx, "weather", c.baseURL+path+"?"+q.Encode(), v)
	return notFound(location, err)
}

// notFound reclassifies the source's rejection of a location.
func notFound(location string, err error) error {
	var status fetch.ErrHTTPStatus
	if errors.As(err, &status) && (status.Code == 404 || status.Code == 400) {
		return fetch.ErrLocationNotFound{Location: location, Err: status}
	}
	if err != nil {
		return fmt.Errorf("weather for %s: %w", location, err)
	}
	return nil
}

// Daily down-samples a 3-hourly series by keeping every 8th entry,
// starting with the first.
func Daily(samples []Day) []Day {
	out := make([]Day, 0, (len(samples)+samplesPerDay-1)/samplesPerDay)
	for i := 0; i < len(samples); i += samplesPerDay {
		out = append(out, samples[i])
	}
	return out
}
