// Package main provides the cvescout command line tool: a set of batch
// pipelines that search GitHub for exploit repositories, summarize the hits
// per day/month/year and cross-index them by vulnerability identifier.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cvescout/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "cvescout",
	Short: "Search GitHub for exploit repositories and summarize the results",
	Long:  "cvescout scrapes the GitHub repository search API for vulnerability-identifier matches, deduplicates and ranks the hits per day/month/year, and cross-indexes repositories by the CVE identifiers they matched.",
}

var (
	flagVerbose bool
	flagQuiet   bool
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log warnings and errors")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and initializes the structured logger shared by
// every subcommand.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logLevel := new(slog.LevelVar)
	switch {
	case flagVerbose:
		logLevel.Set(slog.LevelDebug)
	case flagQuiet:
		logLevel.Set(slog.LevelWarn)
	default:
		setLogLevel(cfg.LogLevel, logLevel)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
