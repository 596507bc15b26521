// Package proxy serves the weather, price and chat sources over HTTP so
// that API keys stay on the machine running `agritech serve`.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Godzilla108108/agritech/internal/chat"
	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/prices"
	"github.com/Godzilla108108/agritech/internal/weather"
)

const maxRequestBody = 64 << 10

// Upstreams are the credentialed sources the proxy fronts.
type Upstreams struct {
	Weather weather.Source
	Prices  prices.Source
	Chat    chat.Source
}

// Options tune a Server.
type Options struct {
	CacheTTL  time.Duration
	CacheSize int
	// Registry receives the proxy metrics and is exposed at /metrics.
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

type Server struct {
	up      Upstreams
	cache   *responseCache
	group   singleflight.Group
	metrics *Metrics
	reg     *prometheus.Registry
	log     *zap.Logger
}

// ErrorBody is the JSON shape of every proxy error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	// Status is the upstream status code for http_status errors,
	// otherwise the proxy's own response status.
	Status int `json:"status"`
	// Location is set for location_not_found.
	Location string `json:"location,omitempty"`
}

func NewServer(up Upstreams, opts Options) (*Server, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	rc, err := newResponseCache(opts.CacheSize, opts.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("creating response cache: %w", err)
	}
	return &Server{
		up:      up,
		cache:   rc,
		metrics: NewMetrics(opts.Registry),
		reg:     opts.Registry,
		log:     opts.Logger,
	}, nil
}

// Handler returns the proxy's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/weather", s.withLogging("weather", s.handleWeather))
	mux.HandleFunc("GET /api/prices", s.withLogging("prices", s.handlePrices))
	mux.HandleFunc("POST /api/chat", s.withLogging("chat", s.handleChat))

	return mux
}

// Serve listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("proxy listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("proxy server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down proxy: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("proxy stopped")
	return nil
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) int {
	if s.up.Weather == nil {
		return writeUnavailable(w, "weather")
	}
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	key := "weather:" + strings.ToLower(location)
	body, err := s.cachedJSON(r.Context(), "weather", key, func(ctx context.Context) (any, error) {
		return s.up.Weather.Snapshot(ctx, location)
	})
	if err != nil {
		return writeError(w, err)
	}
	return writeRaw(w, body)
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) int {
	if s.up.Prices == nil {
		return writeUnavailable(w, "prices")
	}
	body, err := s.cachedJSON(r.Context(), "prices", "prices", func(ctx context.Context) (any, error) {
		records, err := s.up.Prices.Prices(ctx)
		if err != nil {
			return nil, err
		}
		return PricesBody{Records: records}, nil
	})
	if err != nil {
		return writeError(w, err)
	}
	return writeRaw(w, body)
}

// PricesBody mirrors the upstream resource shape.
type PricesBody struct {
	Records []prices.Price `json:"records"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) int {
	if s.up.Chat == nil {
		return writeUnavailable(w, "chat")
	}
	var req chat.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		return writeJSON(w, http.StatusBadRequest, ErrorBody{
			Error: "bad_request", Message: "request body must be {contents:[{parts:[{text}]}]}", Status: http.StatusBadRequest,
		})
	}
	prompt := strings.TrimSpace(req.Prompt())
	if prompt == "" {
		return writeJSON(w, http.StatusBadRequest, ErrorBody{
			Error: "bad_request", Message: "prompt is empty", Status: http.StatusBadRequest,
		})
	}
	text, err := s.up.Chat.Ask(r.Context(), prompt)
	if err != nil {
		return writeError(w, err)
	}
	return writeJSON(w, http.StatusOK, chat.NewResponse(text))
}

// cachedJSON serves key from the response cache, or runs fn once for all
// concurrent callers and caches the encoded result. The upstream call is
// detached from any single caller's cancellation.
func (s *Server) cachedJSON(ctx context.Context, route, key string, fn func(context.Context) (any, error)) ([]byte, error) {
	if body, ok := s.cache.get(key); ok {
		s.metrics.observeHit(route)
		return body, nil
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		res, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("encoding %s response: %w", route, err)
		}
		s.cache.add(key, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

type statusHandler func(w http.ResponseWriter, r *http.Request) int

func (s *Server) withLogging(route string, next statusHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := next(w, r)
		s.metrics.observeRequest(route, status)
		s.log.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}

func writeRaw(w http.ResponseWriter, body []byte) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
	return status
}

// writeError maps err to a status and the ErrorBody contract.
func writeError(w http.ResponseWriter, err error) int {
	status := fetch.StatusFor(err)
	body := ErrorBody{Error: fetch.Kind(err), Message: fetch.Message(err), Status: status}

	var notFound fetch.ErrLocationNotFound
	var upstream fetch.ErrHTTPStatus
	switch {
	case errors.As(err, &notFound):
		body.Location = notFound.Location
	case errors.As(err, &upstream):
		body.Status = upstream.Code
	}
	return writeJSON(w, status, body)
}

func writeUnavailable(w http.ResponseWriter, source string) int {
	return writeJSON(w, http.StatusServiceUnavailable, ErrorBody{
		Error:   "not_configured",
		Message: source + " source is not configured on this proxy",
		Status:  http.StatusServiceUnavailable,
	})
}
