package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/advisory"
	"github.com/Godzilla108108/agritech/internal/cache"
	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/weather"
)

var weatherCmd = &cobra.Command{
	Use:   "weather [LOCATION]",
	Short: "Print current weather, crop advisory and forecast",
	Long: `Fetch current conditions and the 5-day forecast for LOCATION (default from
weather.default_location) and print them with the agricultural risk advisory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup("")
		if err != nil {
			return err
		}
		defer e.log.Sync()

		location := e.cfg.Weather.DefaultLocation
		if len(args) == 1 {
			location = strings.TrimSpace(args[0])
		}
		if location == "" {
			location = weather.DefaultLocation
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.TimeoutDuration())
		defer cancel()
		src := newSources(ctx, e.cfg, e.log, nil)
		snap, err := src.weather.Snapshot(ctx, location)
		if err != nil {
			var nf fetch.ErrLocationNotFound
			if errors.As(err, &nf) {
				return errors.New("location not found, please try another location")
			}
			return fmt.Errorf("%s: %w", fetch.Message(err), err)
		}

		if db, err := openCache(); err != nil {
			e.log.Warn("cache unavailable", zap.Error(err))
		} else {
			if err := cache.SaveValue(db, cache.KeyWeather, snap); err != nil {
				e.log.Warn("caching weather", zap.Error(err))
			}
			db.Close()
		}

		printWeather(cmd.OutOrStdout(), snap)
		return nil
	},
}

func printWeather(w io.Writer, s weather.Snapshot) {
	c := s.Current
	fmt.Fprintf(w, "%s: %s (%s)\n", c.Location, c.Main, c.Description)
	fmt.Fprintf(w, "  %.1f°C, feels like %.1f°C (min %.1f°C, max %.1f°C)\n", c.Temp, c.FeelsLike, c.TempMin, c.TempMax)
	fmt.Fprintf(w, "  humidity %d%%, pressure %d hPa, wind %.1f m/s, rain %.1f mm\n",
		c.Humidity, c.Pressure, c.WindSpeed, c.Rain1h)

	a := advisory.Assess(c)
	fmt.Fprintf(w, "\nRisk: %s\n", a.Label())
	for _, act := range a.Actions {
		fmt.Fprintf(w, "  - %s\n", act)
	}

	if len(s.Forecast) == 0 {
		return
	}
	fmt.Fprintln(w, "\nForecast:")
	for _, d := range s.Forecast {
		fmt.Fprintf(w, "  %-11s %-10s %5.1f°C  humidity %3d%%  rain %3.0f%%\n",
			d.Time.Local().Format("Mon 2 Jan"), d.Main, d.Temp, d.Humidity, d.Pop*100)
	}
}
