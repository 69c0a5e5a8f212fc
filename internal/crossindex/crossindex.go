// Package crossindex inverts repository-centric match listings into one
// listing per vulnerability identifier.
package crossindex

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	custom_errors "cvescout/internal/errors"
	"cvescout/internal/extract"
	"cvescout/internal/model"
	"cvescout/internal/store"
)

// Indexer builds identifier-centric listings from per-repository match files.
type Indexer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Indexer {
	return &Indexer{logger: logger}
}

// Run loads every match-listing file under matchesDir, builds the identifier
// listings and writes one CSV per identifier under outDir. An empty aggregate
// input is fatal: it signals a configuration problem upstream.
func (ix *Indexer) Run(matchesDir, outDir string) error {
	matches, err := store.LoadMatches(matchesDir, ix.logger)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return &custom_errors.ErrNoMatchData{Dir: matchesDir}
	}

	listings := Build(matches)
	ix.logger.Info("Cross-indexed match records", "records", len(matches), "identifiers", len(listings))

	for _, listing := range listings {
		if err := writeListing(outDir, listing); err != nil {
			return err
		}
	}
	return nil
}

// Build normalizes identifiers, drops duplicate (repo, identifier) pairs,
// assigns each row match_weight = 1/k where k is its repository's distinct
// identifier count, derives repo_url, and groups rows by identifier. Listings
// are returned sorted by identifier; rows within a listing are sorted by
// (match_weight desc, repo_id desc).
func Build(matches []model.Match) []model.IdentifierListing {
	type pair struct {
		repoID int64
		id     string
	}
	seen := make(map[pair]bool)
	var cleaned []model.Match
	for _, m := range matches {
		m.Match = extract.Normalize(m.Match)
		if m.Match == "" {
			continue
		}
		key := pair{m.RepoID, m.Match}
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, m)
	}

	perRepo := make(map[int64]int)
	for _, m := range cleaned {
		perRepo[m.RepoID]++
	}

	groups := make(map[string][]model.Match)
	for _, m := range cleaned {
		m.MatchWeight = 1 / float64(perRepo[m.RepoID])
		m.RepoURL = "https://github.com/" + m.RepoFullName
		groups[m.Match] = append(groups[m.Match], m)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	listings := make([]model.IdentifierListing, 0, len(ids))
	for _, id := range ids {
		rows := groups[id]
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].MatchWeight != rows[j].MatchWeight {
				return rows[i].MatchWeight > rows[j].MatchWeight
			}
			return rows[i].RepoID > rows[j].RepoID
		})
		listings = append(listings, model.IdentifierListing{Identifier: id, Matches: rows})
	}
	return listings
}

// ListingPath returns the output file for an identifier, fanned out by the
// identifier's year bucket so no single directory holds every listing.
func ListingPath(outDir, identifier string) string {
	return filepath.Join(outDir, extract.Bucket(identifier), identifier+".csv")
}

func writeListing(outDir string, listing model.IdentifierListing) error {
	path := ListingPath(outDir, listing.Identifier)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create listing directory %s: %w", filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create listing %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"match", "match_weight", "repo_url", "repo_full_name", "repo_id"}); err != nil {
		return err
	}
	for _, m := range listing.Matches {
		row := []string{
			m.Match,
			strconv.FormatFloat(m.MatchWeight, 'f', 8, 64),
			m.RepoURL,
			m.RepoFullName,
			strconv.FormatInt(m.RepoID, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
