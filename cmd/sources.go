package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/cache"
	"github.com/Godzilla108108/agritech/internal/chat"
	"github.com/Godzilla108108/agritech/internal/config"
	"github.com/Godzilla108108/agritech/internal/dashboard"
	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/logging"
	"github.com/Godzilla108108/agritech/internal/prices"
	"github.com/Godzilla108108/agritech/internal/proxy"
	"github.com/Godzilla108108/agritech/internal/weather"
)

func loadEnv() error {
	if err := config.LoadEnv(flagEnv); err != nil {
		return fmt.Errorf("loading %s: %w", flagEnv, err)
	}
	return nil
}

// sources are the data sources a command works against, either direct
// clients holding API keys or a keyless proxy client.
type sources struct {
	fetch   *fetch.Client
	weather weather.Source
	prices  prices.Source
	// chat is nil when neither a key nor a proxy is configured.
	chat chat.Source
	// chatErr explains why chat is nil.
	chatErr error
	viaProxy bool
}

// newSources wires clients from cfg. Metrics are registered on reg when it
// is non-nil.
func newSources(ctx context.Context, cfg *config.Config, log *zap.Logger, reg prometheus.Registerer) *sources {
	fc := fetch.New(
		fetch.WithTimeout(cfg.TimeoutDuration()),
		fetch.WithLogger(log),
		fetch.WithMetrics(fetch.NewMetrics(reg)),
	)
	s := &sources{fetch: fc}

	if cfg.Keyless() {
		pc := proxy.NewClient(fc, cfg.ProxyURL())
		s.weather, s.prices, s.chat = pc, pc, pc
		s.viaProxy = true
		return s
	}

	s.weather = weather.New(fc, cfg.Weather.BaseURL, cfg.WeatherKey())
	s.prices = prices.New(fc, prices.Options{
		BaseURL:  cfg.Prices.BaseURL,
		Resource: cfg.Prices.Resource,
		APIKey:   cfg.PricesKey(),
		Limit:    cfg.Prices.Limit,
	})
	c, err := chat.New(ctx, fc, chat.Options{
		APIKey:  cfg.ChatKey(),
		Model:   cfg.Chat.Model,
		BaseURL: cfg.Chat.BaseURL,
	})
	if err != nil {
		s.chatErr = err
		log.Info("assistant disabled", zap.Error(err))
	} else {
		s.chat = c
	}
	return s
}

func (s *sources) feeds(cfg *config.Config) (*dashboard.FeedReader, []dashboard.Feed) {
	var feeds []dashboard.Feed
	for _, f := range cfg.EnabledFeeds() {
		feeds = append(feeds, dashboard.Feed{Name: f.Name, URL: f.URL})
	}
	if len(feeds) == 0 {
		return nil, nil
	}
	return dashboard.NewFeedReader(s.fetch), feeds
}

// env is what every command starts from.
type env struct {
	cfg *config.Config
	log *zap.Logger
}

// setup loads config and builds a logger. logPath "" logs to stderr.
func setup(logPath string) (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logging.New(logPath, flagDebug)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}

func openCache() (*cache.Cache, error) {
	db, err := cache.Open(config.CachePath())
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return db, nil
}
