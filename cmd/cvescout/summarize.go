package main

import (
	"time"

	"github.com/spf13/cobra"

	"cvescout/internal/store"
	"cvescout/internal/summary"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Deduplicate, rank and report the hits for one aggregation scope",
	Long:  "Loads every stored search hit within the selected day, month or year, collapses duplicate repositories, ranks them by composite score and writes data.json, data.csv and README.md into the scope directory.",
	RunE:  runSummarize,
}

var (
	summarizeDate      string
	summarizeMonth     string
	summarizeYear      string
	summarizeRecursive bool
)

func init() {
	summarizeCmd.Flags().StringVar(&summarizeDate, "date", "", "Day scope in YYYY-MM-DD format")
	summarizeCmd.Flags().StringVar(&summarizeMonth, "month", "", "Month scope in YYYY-MM format")
	summarizeCmd.Flags().StringVar(&summarizeYear, "year", "", "Year scope in YYYY format")
	summarizeCmd.Flags().BoolVarP(&summarizeRecursive, "recursive", "r", false, "Also regenerate the enclosing month and year scopes")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(_ *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	scope, err := summary.ParseScope(summarizeDate, summarizeMonth, summarizeYear)
	if err != nil {
		return err
	}

	st := store.New(cfg.DataDir, logger)
	s := summary.New(st, logger)

	now := time.Now().UTC()
	for _, sc := range scope.Expand(summarizeRecursive) {
		if err := s.Run(sc, now); err != nil {
			return err
		}
	}
	return nil
}
