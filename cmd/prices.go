package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/cache"
	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/filter"
	"github.com/Godzilla108108/agritech/internal/prices"
)

var (
	flagSearch   string
	flagCategory string
	flagRefresh  bool
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Print mandi commodity prices",
	Long: `Print commodity prices from the local cache, fetching them first when the
cache is older than prices.refresh (default: 1h) or --refresh is given.

Categories: all, grains, vegetables, fruits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := prices.ResolveCategory(flagCategory)
		if err != nil {
			return err
		}

		e, err := setup("")
		if err != nil {
			return err
		}
		defer e.log.Sync()

		db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		records := cache.Load[prices.Price](db, cache.KeyPrices)
		if flagRefresh || records == nil || db.NeedsRefresh(cache.KeyPrices, e.cfg.PricesRefresh()) {
			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.TimeoutDuration())
			src := newSources(ctx, e.cfg, e.log, nil)
			fresh, err := src.prices.Prices(ctx)
			cancel()
			switch {
			case err != nil && records == nil:
				return fmt.Errorf("%s: %w", fetch.Message(err), err)
			case err != nil:
				e.log.Warn("refresh failed; showing cached prices", zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "  [warn] %s, showing cached prices\n", fetch.Message(err))
			default:
				records = fresh
				if err := cache.Save(db, cache.KeyPrices, records); err != nil {
					return fmt.Errorf("caching prices: %w", err)
				}
				if err := db.SetLastRefresh(cache.KeyPrices); err != nil {
					return err
				}
			}
		}

		visible := filter.Apply(records, filter.Criteria{Search: flagSearch, Category: category}, prices.Spec)
		printPrices(cmd.OutOrStdout(), visible, len(records))
		return nil
	},
}

func init() {
	pricesCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "match commodity, market, district or state")
	pricesCmd.Flags().StringVarP(&flagCategory, "category", "c", "all", "category tab (all, grains, vegetables, fruits)")
	pricesCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "fetch fresh prices even if the cache is recent")
}

func printPrices(w io.Writer, rows []prices.Price, total int) {
	if len(rows) == 0 {
		if total == 0 {
			fmt.Fprintln(w, "No price data loaded")
		} else {
			fmt.Fprintln(w, "No matching prices found")
		}
		return
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Commodity", "Market", "District", "State", "Min", "Max", "Modal", "Date").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, r := range rows {
		t.Row(r.Commodity, r.Market, r.District, r.State,
			r.MinPrice.Display(), r.MaxPrice.Display(), r.ModalPrice.Display(),
			prices.FormatDate(r.ArrivalDate))
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d of %d records\n", len(rows), total)
}
