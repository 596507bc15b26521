package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/proxy"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the credential proxy for keyless clients",
	Long: `Serve the weather, price and assistant sources over HTTP using the API keys
configured on this machine. Point other installs at it with proxy.url or
AGRITECH_PROXY_URL so they never hold keys themselves.

Routes: GET /api/weather?location=, GET /api/prices, POST /api/chat,
GET /health, GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup("")
		if err != nil {
			return err
		}
		defer e.log.Sync()

		if e.cfg.Keyless() {
			return fmt.Errorf("serve needs API keys; unset proxy.url to run the proxy itself")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		src := newSources(ctx, e.cfg, e.log, reg)
		up := proxy.Upstreams{Weather: src.weather, Prices: src.prices, Chat: src.chat}

		srv, err := proxy.NewServer(up, proxy.Options{
			CacheTTL:  e.cfg.ProxyCacheTTL(),
			CacheSize: e.cfg.ProxyCacheSize(),
			Registry:  reg,
			Logger:    e.log,
		})
		if err != nil {
			return err
		}

		addr := e.cfg.Proxy.Addr
		if flagAddr != "" {
			addr = flagAddr
		}
		e.log.Info("proxy configured", zap.Bool("chat", up.Chat != nil), zap.Duration("cache_ttl", e.cfg.ProxyCacheTTL()))
		return srv.Serve(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default from config, :8787)")
}
