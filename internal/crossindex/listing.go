package crossindex

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"cvescout/internal/model"
)

// ReadListing reads one identifier listing CSV back into match records.
func ReadListing(path string) ([]model.Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read listing %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty listing %s", path)
	}

	matches := make([]model.Match, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		if len(row) < 5 {
			return nil, fmt.Errorf("short row in %s", path)
		}
		weight, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad match_weight in %s: %w", path, err)
		}
		id, err := strconv.ParseInt(row[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad repo_id in %s: %w", path, err)
		}
		matches = append(matches, model.Match{
			Match:        row[0],
			MatchWeight:  weight,
			RepoURL:      row[2],
			RepoFullName: row[3],
			RepoID:       id,
		})
	}
	return matches, nil
}
