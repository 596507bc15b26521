package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Godzilla108108/agritech/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		count, size, err := db.Stats()
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}
		entries, err := db.Entries()
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), db.Path(), count, size, entries)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached record",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Clear()
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache already empty.")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entr%s.\n", n, plural(n, "y", "ies"))
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func printStats(w io.Writer, path string, count int, size int64, entries []cache.Entry) {
	fmt.Fprintf(w, "Cache: %s\n", path)
	fmt.Fprintf(w, "Entries: %d\n", count)
	fmt.Fprintf(w, "Size: %s\n", formatBytes(size))
	for _, e := range entries {
		fmt.Fprintf(w, "  %-20s %10s  %s\n", e.Key, formatBytes(int64(e.Size)), e.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
