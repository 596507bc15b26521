package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Godzilla108108/agritech/internal/fetch"
)

const currentJSON = `{
	"name": "Pune",
	"weather": [{"main": "Rain", "description": "light rain"}],
	"main": {"temp": 24.6, "feels_like": 25.1, "temp_min": 23, "temp_max": 26, "humidity": 88, "pressure": 1008},
	"wind": {"speed": 4.2},
	"rain": {"1h": 0.8},
	"sys": {"sunrise": 1700000000, "sunset": 1700040000},
	"dt": 1700020000
}`

func forecastJSON(n int) string {
	entries := make([]string, n)
	for i := range entries {
		entries[i] = fmt.Sprintf(`{"dt": %d, "main": {"temp": %d, "humidity": 60}, "weather": [{"main": "Clouds", "description": "overcast"}], "pop": 0.25}`, 1700000000+i*10800, 20+i)
	}
	return `{"list": [` + strings.Join(entries, ",") + `]}`
}

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(fetch.New(), srv.URL, "test-key")
}

func TestSnapshot(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Pune", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		switch r.URL.Path {
		case "/data/2.5/weather":
			fmt.Fprint(w, currentJSON)
		case "/data/2.5/forecast":
			fmt.Fprint(w, forecastJSON(40))
		default:
			http.NotFound(w, r)
		}
	})

	snap, err := c.Snapshot(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, "Pune", snap.Current.Location)
	assert.Equal(t, "light rain", snap.Current.Description)
	assert.True(t, snap.Current.Raining)
	assert.InDelta(t, 0.8, snap.Current.Rain1h, 1e-9)
	assert.Equal(t, 88, snap.Current.Humidity)
	assert.Equal(t, int64(1700000000), snap.Current.Sunrise.Unix())
	require.Len(t, snap.Forecast, 5)
	assert.Equal(t, 20.0, snap.Forecast[0].Temp)
	assert.Equal(t, 28.0, snap.Forecast[1].Temp)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestUnknownLocation(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"cod":"404","message":"city not found"}`)
	})

	_, err := c.Snapshot(context.Background(), "Atlantis")
	var notFound fetch.ErrLocationNotFound
	require.True(t, errors.As(err, &notFound), "expected ErrLocationNotFound, got %v", err)
	assert.Equal(t, "Atlantis", notFound.Location)

	var status fetch.ErrHTTPStatus
	assert.True(t, errors.As(err, &status), "location errors are also HTTP status errors")
}

func TestEmptyLocation(t *testing.T) {
	c := New(fetch.New(), "http://unused.invalid", "k")
	_, err := c.Current(context.Background(), "   ")
	assert.Equal(t, "location_not_found", fetch.Kind(err))
}

func TestServerErrorIsNotLocation(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Current(context.Background(), "Pune")
	assert.Equal(t, "http_status", fetch.Kind(err))
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no main", `{"name":"Pune","weather":[{"main":"Clear"}]}`},
		{"no weather", `{"name":"Pune","main":{"temp":30}}`},
		{"empty weather", `{"name":"Pune","weather":[],"main":{"temp":30}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			_, err := c.Current(context.Background(), "Pune")
			var malformed fetch.ErrMalformedResponse
			assert.True(t, errors.As(err, &malformed), "expected ErrMalformedResponse, got %v", err)
		})
	}
}

func TestForecastMissingList(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"cod":"200"}`)
	})

	_, err := c.Forecast(context.Background(), "Pune")
	assert.Equal(t, "malformed_response", fetch.Kind(err))
}

func TestDaily(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{1, 1},
		{8, 1},
		{9, 2},
		{40, 5},
	}
	for _, tt := range tests {
		samples := make([]Day, tt.in)
		for i := range samples {
			samples[i].Temp = float64(i)
		}
		got := Daily(samples)
		if len(got) != tt.want {
			t.Errorf("Daily(%d samples) = %d days, want %d", tt.in, len(got), tt.want)
		}
		for i, d := range got {
			if d.Temp != float64(i*8) {
				t.Errorf("day %d: expected sample %d, got %v", i, i*8, d.Temp)
			}
		}
	}
}
