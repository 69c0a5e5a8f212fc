// Package summary ties the loader, aggregator and ranker together and writes
// the per-scope output artifacts.
package summary

import (
	"log/slog"
	"time"

	"cvescout/internal/aggregate"
	"cvescout/internal/rank"
	"cvescout/internal/report"
	"cvescout/internal/store"
)

// Summarizer regenerates the summary artifacts for one aggregation scope.
type Summarizer struct {
	st     *store.Store
	logger *slog.Logger
}

func New(st *store.Store, logger *slog.Logger) *Summarizer {
	return &Summarizer{st: st, logger: logger}
}

// Run loads every hits page under the scope directory, deduplicates, ranks
// and writes data.json, data.csv and README.md into it. No input files is
// not an error; it produces an empty output set.
func (s *Summarizer) Run(scope Scope, now time.Time) error {
	scopeDir := scope.Dir(s.st)
	logger := s.logger.With("scope", scopeDir)

	records, err := s.st.LoadRecords(scopeDir)
	if err != nil {
		return err
	}
	logger.Info("Loaded search hits", "rows", len(records))

	deduped := aggregate.Dedupe(records)
	ranked := rank.Rank(deduped, now)
	logger.Info("Aggregated records", "deduplicated", len(deduped), "ranked", len(ranked))

	return report.WriteAll(scopeDir, ranked)
}
