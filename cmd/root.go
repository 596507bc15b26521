package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagPage   string
	flagConfig string
	flagEnv    string
	flagDebug  bool
	flagCheck  bool
)

var rootCmd = &cobra.Command{
	Use:   "agritech",
	Short: "Farm dashboard for weather, mandi prices and advice",
	Long: `agritech brings live weather with crop advisories, mandi commodity prices,
a produce marketplace and a farming assistant into one terminal dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv()
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", ".env", "dotenv file with API keys (ignored when missing)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check for a newer release")
	rootCmd.Flags().StringVar(&flagPage, "page", "/", "page to open first (/, /login, /register, /dashboard, /weather, /marketplace, /prices, /chat)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pricesCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(cacheCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "agritech %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return
		}
		if res := update.Check(cmd.Context(), fetch.New(), update.ReleasesURL, version); res != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "agritech %s is available\n", res.LatestVersion)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Up to date.")
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
