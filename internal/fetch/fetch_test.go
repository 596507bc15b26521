package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://source.example.test/data"

func mockClient(t *testing.T, responder httpmock.Responder) (*Client, *Metrics) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, testURL, responder)
	transport.RegisterResponder(http.MethodPost, testURL, responder)
	m := NewMetrics(prometheus.NewRegistry())
	return New(WithHTTPClient(&http.Client{Transport: transport}), WithMetrics(m)), m
}

func TestGetJSONDecodes(t *testing.T) {
	c, m := mockClient(t, httpmock.NewStringResponder(200, `{"name":"Pune"}`))

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "weather", testURL, &out))
	assert.Equal(t, "Pune", out.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("weather", "ok")))
}

func TestGetJSONHTTPStatus(t *testing.T) {
	c, m := mockClient(t, httpmock.NewStringResponder(503, `busy`))

	err := c.GetJSON(context.Background(), "prices", testURL, &struct{}{})
	var status ErrHTTPStatus
	require.True(t, errors.As(err, &status), "expected ErrHTTPStatus, got %v", err)
	assert.Equal(t, 503, status.Code)
	assert.Equal(t, "http_status", Kind(err))
	assert.Equal(t, "API request failed with status 503", Message(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("prices", "http_status")))
}

func TestHTTPStatusKeepsFullBody(t *testing.T) {
	long := `{"message":"` + strings.Repeat("ज", 150) + `"}`
	c, _ := mockClient(t, httpmock.NewStringResponder(404, long))

	err := c.GetJSON(context.Background(), "weather", testURL, &struct{}{})
	var status ErrHTTPStatus
	require.True(t, errors.As(err, &status), "expected ErrHTTPStatus, got %v", err)
	assert.Equal(t, long, string(status.Body))
	assert.True(t, utf8.ValidString(err.Error()), "error text is not valid UTF-8: %q", err.Error())
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "  ", "empty body"},
		{"short", " busy\n", "busy"},
		{"ascii cut", strings.Repeat("a", 250), strings.Repeat("a", 200) + "..."},
		// 3-byte runes: 200 is not a boundary, 198 is.
		{"rune boundary", strings.Repeat("ज", 100), strings.Repeat("ज", 66) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snippet([]byte(tt.body))
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestGetJSONMalformed(t *testing.T) {
	c, _ := mockClient(t, httpmock.NewStringResponder(200, `<html>not json</html>`))

	err := c.GetJSON(context.Background(), "prices", testURL, &struct{}{})
	var malformed ErrMalformedResponse
	assert.True(t, errors.As(err, &malformed), "expected ErrMalformedResponse, got %v", err)
}

func TestGetJSONUnreachable(t *testing.T) {
	c, _ := mockClient(t, httpmock.NewErrorResponder(errors.New("dial tcp: connection refused")))

	err := c.GetJSON(context.Background(), "chat", testURL, &struct{}{})
	var unreachable ErrUnreachable
	assert.True(t, errors.As(err, &unreachable), "expected ErrUnreachable, got %v", err)
	assert.Equal(t, "unreachable", Kind(err))
}

func TestGetJSONCanceled(t *testing.T) {
	c, _ := mockClient(t, func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.GetJSON(ctx, "weather", testURL, &struct{}{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "canceled", Kind(err))
}

func TestPostJSONSendsBody(t *testing.T) {
	var got string
	c, _ := mockClient(t, func(req *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(req.Body)
		got = string(b)
		return httpmock.NewStringResponse(200, `{}`), nil
	})

	require.NoError(t, c.PostJSON(context.Background(), "chat", testURL, map[string]string{"q": "rice"}, nil))
	assert.JSONEq(t, `{"q":"rice"}`, got)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Observe("x", "ok", 0)
}
