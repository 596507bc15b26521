package proxy

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/prices"
	"github.com/Godzilla108108/agritech/internal/weather"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type stubWeather struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (s *stubWeather) Snapshot(ctx context.Context, location string) (weather.Snapshot, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return weather.Snapshot{}, s.err
	}
	return weather.Snapshot{Current: weather.Conditions{Location: location, Temp: 31}}, nil
}

type stubPrices struct {
	calls   atomic.Int32
	records []prices.Price
	err     error
}

func (s *stubPrices) Prices(ctx context.Context) ([]prices.Price, error) {
	s.calls.Add(1)
	return s.records, s.err
}

type stubChat struct {
	prompt string
	err    error
}

func (s *stubChat) Ask(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return "Use drip irrigation.", nil
}

func newTestServer(t *testing.T, up Upstreams) (*Server, *httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	s, err := NewServer(up, Options{CacheTTL: time.Minute, CacheSize: 8, Registry: reg})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv, reg
}

func testClient(srv *httptest.Server) *Client {
	return NewClient(fetch.New(fetch.WithHTTPClient(srv.Client())), srv.URL)
}

func TestWeatherRoundTripAndCache(t *testing.T) {
	w := &stubWeather{}
	_, srv, reg := newTestServer(t, Upstreams{Weather: w})
	c := testClient(srv)

	for i := 0; i < 2; i++ {
		snap, err := c.Snapshot(context.Background(), "Pune")
		require.NoError(t, err)
		assert.Equal(t, "Pune", snap.Current.Location)
		assert.Equal(t, 31.0, snap.Current.Temp)
	}
	assert.Equal(t, int32(1), w.calls.Load(), "second request should be served from cache")

	hits, err := testutil.GatherAndCount(reg, "agritech_proxy_cache_hits_total")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestConcurrentRequestsShareUpstreamCall(t *testing.T) {
	w := &stubWeather{release: make(chan struct{})}
	_, srv, _ := newTestServer(t, Upstreams{Weather: w})
	c := testClient(srv)

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Snapshot(context.Background(), "Nashik")
		}(i)
	}
	// Let every request reach the server before the upstream answers.
	require.Eventually(t, func() bool { return w.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(w.release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), w.calls.Load())
}

func TestErrorsSurviveTheProxy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		check      func(t *testing.T, err error)
	}{
		{
			name:       "location not found",
			err:        fetch.ErrLocationNotFound{Location: "Atlantis", Err: fetch.ErrHTTPStatus{Code: 404}},
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var nf fetch.ErrLocationNotFound
				require.True(t, errors.As(err, &nf), "got %v", err)
				assert.Equal(t, "Atlantis", nf.Location)
			},
		},
		{
			name:       "upstream status",
			err:        fetch.ErrHTTPStatus{Code: 401, Err: errors.New("invalid key")},
			wantStatus: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var st fetch.ErrHTTPStatus
				require.True(t, errors.As(err, &st), "got %v", err)
				assert.Equal(t, 401, st.Code)
			},
		},
		{
			name:       "malformed",
			err:        fetch.Malformed("missing main"),
			wantStatus: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				assert.Equal(t, "malformed_response", fetch.Kind(err))
			},
		},
		{
			name:       "unreachable",
			err:        fetch.ErrUnreachable{Err: errors.New("dial tcp: timeout")},
			wantStatus: http.StatusGatewayTimeout,
			check: func(t *testing.T, err error) {
				assert.Equal(t, "unreachable", fetch.Kind(err))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv, _ := newTestServer(t, Upstreams{Weather: &stubWeather{err: tt.err}})

			resp, err := srv.Client().Get(srv.URL + "/api/weather?location=x")
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			_, err = testClient(srv).Snapshot(context.Background(), "x")
			tt.check(t, err)
		})
	}
}

func TestLongLocationNotFound(t *testing.T) {
	locations := []string{
		strings.TrimSpace(strings.Repeat("नागपुर ग्रामीण ", 8)),
		strings.Repeat("Nowhere-", 15),
	}
	for _, loc := range locations {
		stub := &stubWeather{err: fetch.ErrLocationNotFound{Location: loc, Err: fetch.ErrHTTPStatus{Code: 404}}}
		_, srv, _ := newTestServer(t, Upstreams{Weather: stub})

		_, err := testClient(srv).Snapshot(context.Background(), loc)
		var nf fetch.ErrLocationNotFound
		require.True(t, errors.As(err, &nf), "got %v", err)
		assert.Equal(t, loc, nf.Location)
		assert.Equal(t, "location_not_found", fetch.Kind(err))
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	p := &stubPrices{err: fetch.ErrHTTPStatus{Code: 500}}
	_, srv, _ := newTestServer(t, Upstreams{Prices: p})
	c := testClient(srv)

	_, err := c.Prices(context.Background())
	require.Error(t, err)

	p.err = nil
	p.records = []prices.Price{{Commodity: "Onion"}}
	got, err := c.Prices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Onion", got[0].Commodity)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestChat(t *testing.T) {
	ch := &stubChat{}
	_, srv, reg := newTestServer(t, Upstreams{Chat: ch})

	text, err := testClient(srv).Ask(context.Background(), "how to irrigate?")
	require.NoError(t, err)
	assert.Equal(t, "Use drip irrigation.", text)
	assert.Equal(t, "how to irrigate?", ch.prompt)

	n, err := testutil.GatherAndCount(reg, "agritech_proxy_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestChatBadRequest(t *testing.T) {
	_, srv, _ := newTestServer(t, Upstreams{Chat: &stubChat{}})

	for _, body := range []string{`not json`, `{"contents":[]}`, `{"contents":[{"parts":[{"text":"  "}]}]}`} {
		resp, err := srv.Client().Post(srv.URL+"/api/chat", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %s", body)
	}
}

func TestUnconfiguredUpstream(t *testing.T) {
	_, srv, _ := newTestServer(t, Upstreams{})

	resp, err := srv.Client().Get(srv.URL + "/api/prices")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	_, srv, _ := newTestServer(t, Upstreams{Prices: &stubPrices{records: []prices.Price{}}})

	_, err := testClient(srv).Prices(context.Background())
	require.NoError(t, err)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "OK", string(body))

	resp, err = srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `agritech_proxy_requests_total{route="prices",status="200"} 1`)
}

func TestResponseCacheExpires(t *testing.T) {
	rc, err := newResponseCache(4, time.Minute)
	require.NoError(t, err)
	now := time.Now()
	rc.now = func() time.Time { return now }

	rc.add("k", []byte("v"))
	_, ok := rc.get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = rc.get("k")
	assert.False(t, ok)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, err := NewServer(Upstreams{}, Options{})
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	http.DefaultClient.CloseIdleConnections()
}
