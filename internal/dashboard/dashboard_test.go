package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/weather"
)

func TestGenerateSample(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	o := Generate(GenerateOpts{Now: now})

	assert.Equal(t, "Good morning", o.Greeting)
	assert.False(t, o.Weather.Live)
	assert.Len(t, o.Trends, 4)
	assert.Len(t, o.Alerts, 3)
	assert.Len(t, o.Crops, 4)
	assert.Equal(t, 6.8, o.Soil.PH)
	assert.Equal(t, now, o.GeneratedAt)
}

func TestGenerateUsesLiveWeather(t *testing.T) {
	snap := &weather.Snapshot{Current: weather.Conditions{
		Location: "Nashik", Temp: 37, Humidity: 30, Description: "clear sky",
	}}
	o := Generate(GenerateOpts{Weather: snap})

	assert.True(t, o.Weather.Live)
	assert.Equal(t, "Nashik", o.Weather.Location)
	assert.Equal(t, "High (Heat stress)", o.Weather.Risk)
}

func TestGenerateAdvisoriesFirst(t *testing.T) {
	adv := []Alert{{Kind: "IMD", Message: "Cyclone watch", Severity: Critical}}
	o := Generate(GenerateOpts{Advisories: adv})

	require.Len(t, o.Alerts, 4)
	assert.Equal(t, "Cyclone watch", o.Alerts[0].Message)
	assert.Len(t, adv, 1, "caller slice untouched")
}

func TestGreeting(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{6, "Good morning"},
		{11, "Good morning"},
		{12, "Good afternoon"},
		{16, "Good afternoon"},
		{17, "Good evening"},
		{23, "Good evening"},
	}
	for _, tt := range tests {
		now := time.Date(2024, 1, 1, tt.hour, 0, 0, 0, time.Local)
		if got := greeting(now); got != tt.want {
			t.Errorf("greeting(%d:00) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func rssServer(t *testing.T) *httptest.Server {
	t.Helper()
	recent := time.Now().Add(-time.Hour).Format(time.RFC1123Z)
	old := time.Now().Add(-30 * 24 * time.Hour).Format(time.RFC1123Z)
	mux := http.NewServeMux()
	mux.HandleFunc("/advisories.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Agromet</title>
<item><title>Locust swarm sighted near Jodhpur</title><link>https://example.test/1</link><pubDate>%s</pubDate></item>
<item><title>Heavy rain warning for Konkan</title><link>https://example.test/2</link><pubDate>%s</pubDate></item>
<item><title>Sowing window for kharif opens</title><link>https://example.test/3</link><pubDate>%s</pubDate></item>
<item><title>Last month's bulletin</title><link>https://example.test/4</link><pubDate>%s</pubDate></item>
</channel></rss>`, recent, recent, recent, old)
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedReaderRead(t *testing.T) {
	srv := rssServer(t)
	r := NewFeedReader(fetch.New())

	alerts, err := r.Read(context.Background(), Feed{Name: "Agromet", URL: srv.URL + "/advisories.xml"})
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, Critical, alerts[0].Severity)
	assert.Equal(t, High, alerts[1].Severity)
	assert.Equal(t, Medium, alerts[2].Severity)
	assert.Equal(t, "Agromet", alerts[0].Kind)
	assert.Equal(t, "https://example.test/1", alerts[0].Link)
}

func TestFeedReaderReadAll(t *testing.T) {
	srv := rssServer(t)
	r := NewFeedReader(fetch.New())

	res := r.ReadAll(context.Background(), []Feed{
		{Name: "Broken", URL: srv.URL + "/broken.xml"},
		{Name: "Agromet", URL: srv.URL + "/advisories.xml"},
	})
	assert.Len(t, res.Alerts, 3)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "http_status", fetch.Kind(res.Errors[0]))
}
