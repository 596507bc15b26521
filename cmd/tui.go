package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/config"
	"github.com/Godzilla108108/agritech/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	start, err := tui.ParseRoute(flagPage)
	if err != nil {
		return fmt.Errorf("invalid --page value: %w", err)
	}

	// The terminal belongs to the UI, so logs go to a file.
	e, err := setup(config.LogPath())
	if err != nil {
		return err
	}
	defer e.log.Sync()

	db, err := openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	src := newSources(ctx, e.cfg, e.log, nil)
	reader, feeds := src.feeds(e.cfg)

	e.log.Info("starting tui",
		zap.String("page", string(start)),
		zap.Bool("proxy", src.viaProxy),
		zap.String("cache", db.Path()))

	return tui.Run(tui.RunOpts{
		Start: start,
		Deps: tui.Deps{
			Weather:    src.weather,
			Prices:     src.prices,
			Chat:       src.chat,
			Feeds:      reader,
			Advisories: feeds,
			DB:         db,
			Logger:     e.log,
			Timeout:    e.cfg.TimeoutDuration(),
			Location:   e.cfg.Weather.DefaultLocation,
		},
	})
}
