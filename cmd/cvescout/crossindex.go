package main

import (
	"github.com/spf13/cobra"

	"cvescout/internal/crossindex"
)

var crossindexCmd = &cobra.Command{
	Use:   "crossindex",
	Short: "Invert match listings into one CSV per vulnerability identifier",
	Long:  "Loads every per-repository match-listing file, normalizes and deduplicates the identifiers, weights each repository by 1/<distinct identifier count> and writes one listing CSV per identifier, fanned out by year bucket.",
	RunE:  runCrossindex,
}

func init() {
	rootCmd.AddCommand(crossindexCmd)
}

func runCrossindex(_ *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	return crossindex.New(logger).Run(cfg.MatchesDir, cfg.VulViewsDir)
}
