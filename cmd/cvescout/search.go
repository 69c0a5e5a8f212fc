package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cvescout/internal/collector"
	"cvescout/internal/config"
	"cvescout/internal/github"
	"cvescout/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run the configured GitHub searches and store the raw hits",
	Long:  "Runs every configured search query against the GitHub repository search API and merges new repositories into the target day's hits files.",
	RunE:  runSearch,
}

var searchDate string

func init() {
	searchCmd.Flags().StringVar(&searchDate, "date", "", "Target day in YYYY-MM-DD format (default: today, UTC)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(_ *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if err := validateSearchConfig(cfg); err != nil {
		return err
	}

	day := time.Now().UTC()
	if searchDate != "" {
		day, err = time.Parse("2006-01-02", searchDate)
		if err != nil {
			return errors.New("--date must be in YYYY-MM-DD format")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := store.New(cfg.DataDir, logger)
	ghClient := github.NewClient(cfg.GithubToken, logger)
	c := collector.New(st, ghClient, logger, cfg.SearchTerms)

	return c.Run(ctx, day)
}

func validateSearchConfig(cfg *config.Config) error {
	if cfg.GithubToken == "" {
		return errors.New("GITHUB_TOKEN is required for the search command")
	}
	if len(cfg.SearchTerms) == 0 {
		return errors.New("SEARCH_TERMS must contain at least one query")
	}
	return nil
}
