package cmd

import (
	"fmt"
	"log/slog"

	"github.com/fector/harvest/internal/core/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
	strict     bool
)

// Resolved by the root command before any subcommand runs.
var (
	cfg    *config.HarvestConfig
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:               "harvest",
	Short:             "Harvest declarative filter compiler",
	Long:              `Harvest compiles declarative filter mappings into parameterized SQL and runs them against application tables.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "reject unrecognized filter shapes instead of ignoring them")
}

// loadConfig merges the config file and environment, then applies flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db-url") {
		loaded.DatabaseURL = dbURL
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		loaded.LogFormat = logFormat
	}
	if flags.Changed("strict") {
		loaded.Strict = strict
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := loaded.NewLogger()
	if err != nil {
		return err
	}
	cfg, logger = loaded, l
	slog.SetDefault(l)
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}
