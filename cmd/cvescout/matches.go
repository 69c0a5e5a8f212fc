package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cvescout/internal/store"
	"cvescout/internal/summary"
)

var extractMatchesCmd = &cobra.Command{
	Use:   "extract-matches",
	Short: "Write per-repository match-listing files for a scope's summary",
	Long:  "Reads a scope's ranked summary and writes one small CSV per repository listing the vulnerability identifiers it matched. These files are the cross-indexer's input.",
	RunE:  runExtractMatches,
}

var (
	matchesDate  string
	matchesMonth string
	matchesYear  string
)

func init() {
	extractMatchesCmd.Flags().StringVar(&matchesDate, "date", "", "Day scope in YYYY-MM-DD format")
	extractMatchesCmd.Flags().StringVar(&matchesMonth, "month", "", "Month scope in YYYY-MM format")
	extractMatchesCmd.Flags().StringVar(&matchesYear, "year", "", "Year scope in YYYY format")
	rootCmd.AddCommand(extractMatchesCmd)
}

func runExtractMatches(_ *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	scope, err := summary.ParseScope(matchesDate, matchesMonth, matchesYear)
	if err != nil {
		return err
	}

	st := store.New(cfg.DataDir, logger)
	records, err := st.LoadSummary(scope.Dir(st))
	if err != nil {
		return fmt.Errorf("failed to load summary (run summarize first?): %w", err)
	}

	written := 0
	for _, r := range records {
		if len(r.VulIDs) == 0 {
			continue
		}
		if err := store.WriteMatchFile(cfg.MatchesDir, r); err != nil {
			return err
		}
		written++
	}
	logger.Info("Wrote match-listing files", "dir", cfg.MatchesDir, "repositories", written)

	return nil
}
