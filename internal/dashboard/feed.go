package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Godzilla108108/agritech/internal/fetch"
)

// Feed is an RSS or Atom source of agricultural advisories.
type Feed struct {
	Name string
	URL  string
}

// maxAge drops advisories older than this.
const maxAge = 7 * 24 * time.Hour

// maxPerFeed caps how many items one feed contributes.
const maxPerFeed = 3

// FeedReader pulls advisories through a shared fetch client.
type FeedReader struct {
	fetch  *fetch.Client
	parser *gofeed.Parser
}

func NewFeedReader(fc *fetch.Client) *FeedReader {
	p := gofeed.NewParser()
	p.Client = fc.HTTPClient()
	return &FeedReader{fetch: fc, parser: p}
}

// Read fetches one feed and converts its recent items to alerts.
func (r *FeedReader) Read(ctx context.Context, f Feed) ([]Alert, error) {
	start := time.Now()
	parsed, err := r.parser.ParseURLWithContext(f.URL, ctx)
	err = classifyFeedError(ctx, err)
	r.fetch.Observe("advisories", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", f.Name, err)
	}

	cutoff := time.Now().Add(-maxAge)
	var alerts []Alert
	for _, item := range parsed.Items {
		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		alerts = append(alerts, Alert{
			Kind:     f.Name,
			Message:  title,
			Severity: severityOf(title + " " + item.Description),
			Link:     item.Link,
		})
		if len(alerts) == maxPerFeed {
			break
		}
	}
	return alerts, nil
}

// FetchResult collects alerts from all feeds plus per-feed failures.
type FetchResult struct {
	Alerts []Alert
	Errors []error
}

// ReadAll reads feeds concurrently. Alerts keep the order of feeds.
func (r *FeedReader) ReadAll(ctx context.Context, feeds []Feed) FetchResult {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result FetchResult
	)
	perFeed := make([][]Alert, len(feeds))
	for i, f := range feeds {
		wg.Add(1)
		go func(i int, f Feed) {
			defer wg.Done()
			alerts, err := r.Read(ctx, f)
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, err)
				mu.Unlock()
				return
			}
			perFeed[i] = alerts
		}(i, f)
	}
	wg.Wait()
	for _, a := range perFeed {
		result.Alerts = append(result.Alerts, a...)
	}
	return result
}

var severityKeywords = []struct {
	severity Severity
	words    []string
}{
	{Critical, []string{"locust", "cyclone", "flood", "outbreak", "red alert"}},
	{High, []string{"heavy rain", "heatwave", "heat wave", "hailstorm", "frost", "warning", "orange alert"}},
}

func severityOf(text string) Severity {
	text = strings.ToLower(text)
	for _, s := range severityKeywords {
		for _, w := range s.words {
			if strings.Contains(text, w) {
				return s.severity
			}
		}
	}
	return Medium
}

func classifyFeedError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return fetch.ErrHTTPStatus{Code: httpErr.StatusCode, Err: err}
	}
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return fetch.ErrMalformedResponse{Err: err}
	}
	return fetch.Classify(ctx, err)
}
