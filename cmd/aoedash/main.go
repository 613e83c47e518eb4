// Package main implements the aoedash CLI.
//
// aoedash renders Age of Empires 2 statistics snapshots as an interactive
// terminal dashboard with three pages: the player leaderboard, the civ
// counter-picker and civ performance over time. Subcommands expose the same
// pipeline for scripting.
package main

import (
	"fmt"
	"os"
	"time"

	"aoedash/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	verbose    bool
	timeout    time.Duration

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "aoedash",
	Short: "aoedash - Age of Empires 2 analysis dashboard",
	Long: `aoedash downloads the weekly Age of Empires 2 statistics snapshots and
renders them as filterable tables and charts.

Run without arguments to start the interactive dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The dashboard logs to its file only; stderr belongs to the screen.
		if cmd.Use == "aoedash" && cmd.CalledAs() == "aoedash" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runDashboard,
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List the dashboard pages and their snapshot sources",
	Args:  cobra.NoArgs,
	RunE:  listPages,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [page...]",
	Short: "Download page snapshots and report their size",
	Long: `Downloads the snapshot of every named page (all pages when none are given)
and refreshes the local snapshot cache.

Example:
  aoedash fetch cc cp`,
	RunE: fetchPages,
}

var queryCmd = &cobra.Command{
	Use:   "query <page>",
	Short: "Render one page's table with the given filters",
	Long: `Runs a page's render cycle with fixed filter values and prints the table.

Examples:
  aoedash query cc --filter opponent_civ=Franks,Britons
  aoedash query cp --filter civ=Franks --filter map=Arabia --csv
  aoedash query l --filter country=BR --raw`,
	Args: cobra.ExactArgs(1),
	RunE: queryPage,
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Export the civ performance win-rate chart as PNG",
	Long: `Renders "Win Percentage Over Time" for one civ, map and Elo bucket.

Example:
  aoedash chart --civ Franks --map Arabia --elo 1000-1200 -o franks.png`,
	Args: cobra.NoArgs,
	RunE: exportChart,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the aoedash configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  initConfig,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  showConfig,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	queryCmd.Flags().StringArrayVarP(&queryFilters, "filter", "f", nil, "Filter as column=v1,v2 (repeatable)")
	queryCmd.Flags().BoolVar(&queryCSV, "csv", false, "Print CSV instead of a table")
	queryCmd.Flags().BoolVar(&queryRaw, "raw", false, "Print the selected snapshot rows as CSV instead of the page table")

	chartCmd.Flags().StringVar(&chartCiv, "civ", "", "Civ (default: the page's default option)")
	chartCmd.Flags().StringVar(&chartMap, "map", "", "Map (default: the page's default option)")
	chartCmd.Flags().StringVar(&chartElo, "elo", "", "Elo bucket (default: the page's default option)")
	chartCmd.Flags().StringVarP(&chartOut, "output", "o", "", "Output file (default: derived from the filters)")

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
