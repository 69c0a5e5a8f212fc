// Package store handles the date-partitioned flat-file layout shared by the
// pipelines. All state is reconstructed from these files on every run.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cvescout/internal/model"
)

// HitsDirName is the per-scope subdirectory holding raw search page files.
const HitsDirName = "hits"

// Store reads and writes the data tree rooted at BaseDir:
//
//	<base>/<YYYY>/<MM>/<DD>/hits/<query>.json   raw search pages
//	<base>/<scope>/data.json                    ranked summary, full records
//	<base>/<scope>/data.csv                     ranked summary, restricted columns
//	<base>/<scope>/README.md                    human-readable table
type Store struct {
	BaseDir string
	logger  *slog.Logger
}

func New(baseDir string, logger *slog.Logger) *Store {
	return &Store{BaseDir: baseDir, logger: logger}
}

// DayDir returns the scope directory for a single day.
func (s *Store) DayDir(t time.Time) string {
	return filepath.Join(s.BaseDir, t.Format("2006"), t.Format("01"), t.Format("02"))
}

// MonthDir returns the scope directory for a month.
func (s *Store) MonthDir(t time.Time) string {
	return filepath.Join(s.BaseDir, t.Format("2006"), t.Format("01"))
}

// YearDir returns the scope directory for a year.
func (s *Store) YearDir(t time.Time) string {
	return filepath.Join(s.BaseDir, t.Format("2006"))
}

// LoadRecords walks scopeDir and concatenates every page file found under a
// hits directory into one table. Malformed or empty files are skipped with a
// log line; a missing scope directory yields an empty table.
func (s *Store) LoadRecords(scopeDir string) ([]model.Repository, error) {
	var records []model.Repository

	err := filepath.WalkDir(scopeDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) != HitsDirName {
			return nil
		}

		page, err := readPage(path)
		if err != nil {
			s.logger.Warn("Skipping unreadable page file", "path", path, "error", err)
			return nil
		}
		records = append(records, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", scopeDir, err)
	}
	return records, nil
}

func readPage(path string) ([]model.Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var page []model.Repository
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// MergeDayHits merges newly collected records for one query into the day's
// hits file, keyed by repository ID. Rows already present win; only unseen
// repositories are appended. This is the only mutation of existing files in
// the system.
func (s *Store) MergeDayHits(day time.Time, query string, records []model.Repository) error {
	dir := filepath.Join(s.DayDir(day), HitsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create hits directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, querySlug(query)+".json")
	existing, err := readPage(path)
	if err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Replacing unreadable hits file", "path", path, "error", err)
		existing = nil
	}

	seen := make(map[int64]bool, len(existing))
	for _, r := range existing {
		seen[r.ID] = true
	}
	merged := existing
	added := 0
	for _, r := range records {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		merged = append(merged, r)
		added++
	}

	s.logger.Info("Merged search hits", "path", path, "existing", len(existing), "added", added)
	return writeJSONFile(path, merged)
}

// LoadSummary reads a scope's ranked data.json.
func (s *Store) LoadSummary(scopeDir string) ([]model.Repository, error) {
	data, err := os.ReadFile(filepath.Join(scopeDir, "data.json"))
	if err != nil {
		return nil, err
	}
	var records []model.Repository
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode summary in %s: %w", scopeDir, err)
	}
	return records, nil
}

// WriteMatchFile writes one repository's match-listing CSV under matchesDir.
func WriteMatchFile(matchesDir string, repo model.Repository) error {
	if err := os.MkdirAll(matchesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create matches directory %s: %w", matchesDir, err)
	}

	path := filepath.Join(matchesDir, strconv.FormatInt(repo.ID, 10)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create match file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"repo_id", "repo_full_name", "match"}); err != nil {
		return err
	}
	for _, id := range repo.VulIDs {
		row := []string{strconv.FormatInt(repo.ID, 10), repo.FullName, id}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadMatches walks matchesDir and concatenates every match-listing CSV.
// Empty or corrupt files are skipped with a log line, not fatal.
func LoadMatches(matchesDir string, logger *slog.Logger) ([]model.Match, error) {
	var matches []model.Match

	err := filepath.WalkDir(matchesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".csv" {
			return nil
		}

		rows, err := readMatchFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable match file", "path", path, "error", err)
			return nil
		}
		matches = append(matches, rows...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", matchesDir, err)
	}
	return matches, nil
}

func readMatchFile(path string) ([]model.Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	matches := make([]model.Match, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		if len(row) < 3 {
			return nil, fmt.Errorf("short row in %s", path)
		}
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad repo_id in %s: %w", path, err)
		}
		matches = append(matches, model.Match{
			RepoID:       id,
			RepoFullName: row[1],
			Match:        row[2],
		})
	}
	return matches, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// querySlug makes a search query safe to use as a file name.
func querySlug(query string) string {
	slug := make([]rune, 0, len(query))
	for _, r := range query {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			slug = append(slug, r)
		default:
			slug = append(slug, '_')
		}
	}
	return string(slug)
}
