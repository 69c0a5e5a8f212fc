// Package collector runs the configured search queries and lands the raw
// hits in the day's page files.
package collector

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"cvescout/internal/model"
	"cvescout/internal/store"
)

// Searcher is the slice of the GitHub client the collector needs.
type Searcher interface {
	SearchRepositories(ctx context.Context, query string) ([]model.Repository, error)
}

const (
	// Number of search queries to run in parallel
	concurrency = 3

	// Each query is restricted to repositories pushed within this window,
	// keeping result sets under the search API's 1000-result cap.
	searchWindowDays = 7
)

// Collector orchestrates the fetching and storing of search hits.
type Collector struct {
	st       *store.Store
	ghClient Searcher
	logger   *slog.Logger
	queries  []string
}

// New creates a new Collector instance.
func New(st *store.Store, ghClient Searcher, logger *slog.Logger, queries []string) *Collector {
	return &Collector{
		st:       st,
		ghClient: ghClient,
		logger:   logger,
		queries:  queries,
	}
}

// Run performs one collection pass for all configured queries concurrently,
// merging new repositories into the given day's hits files. A failing query
// is logged and does not abort the others.
func (c *Collector) Run(ctx context.Context, day time.Time) error {
	c.logger.Info("Starting collection pass", "day", day.Format("2006-01-02"), "queries", len(c.queries), "concurrency", concurrency)

	since := day.AddDate(0, 0, -searchWindowDays)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, term := range c.queries {
		// The pushed qualifier becomes part of matched_on and is stripped
		// again during aggregation.
		query := term + " pushed:>" + since.Format("2006-01-02")
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			err := c.collectQuery(gctx, day, query)
			if err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Error("Failed to collect query", "query", query, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.Error("Collection pass finished with an error", "error", err)
		return err
	}
	c.logger.Info("Collection pass finished")
	return nil
}

// collectQuery fetches one query's results and merges them into the day file.
func (c *Collector) collectQuery(ctx context.Context, day time.Time, query string) error {
	logger := c.logger.With("query", query)
	logger.Info("Searching repositories")

	records, err := c.ghClient.SearchRepositories(ctx, query)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		logger.Info("No repositories matched")
		return nil
	}

	logger.Info("Found repositories", "count", len(records))
	return c.st.MergeDayHits(day, query, records)
}
