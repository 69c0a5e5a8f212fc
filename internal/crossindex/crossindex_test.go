package crossindex

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "cvescout/internal/errors"
	"cvescout/internal/model"
	"cvescout/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestBuild(t *testing.T) {
	t.Run("weights each repository by its distinct identifier count", func(t *testing.T) {
		matches := []model.Match{
			{RepoID: 1, RepoFullName: "a/one", Match: "CVE-2021-1"},
			{RepoID: 1, RepoFullName: "a/one", Match: "CVE-2021-2"},
			{RepoID: 1, RepoFullName: "a/one", Match: "CVE-2021-3"},
			{RepoID: 2, RepoFullName: "b/two", Match: "CVE-2021-1"},
		}

		listings := Build(matches)

		require.Len(t, listings, 3)
		total := 0.0
		for _, l := range listings {
			for _, m := range l.Matches {
				if m.RepoID == 1 {
					assert.InDelta(t, 1.0/3.0, m.MatchWeight, 1e-9)
					total += m.MatchWeight
				}
			}
		}
		// A repository's weights across all its listings sum to one.
		assert.InDelta(t, 1.0, total, 1e-9)
	})

	t.Run("deduplicates identifier spellings per repository", func(t *testing.T) {
		matches := []model.Match{
			{RepoID: 1, RepoFullName: "a/one", Match: "CVE-2021-1"},
			{RepoID: 1, RepoFullName: "a/one", Match: "cve-2021-1"},
			{RepoID: 1, RepoFullName: "a/one", Match: "CVE-2021-2"},
		}

		listings := Build(matches)

		require.Len(t, listings, 2)
		for _, l := range listings {
			require.Len(t, l.Matches, 1)
			assert.InDelta(t, 0.5, l.Matches[0].MatchWeight, 1e-9)
		}
	})

	t.Run("derives the repository url", func(t *testing.T) {
		listings := Build([]model.Match{{RepoID: 1, RepoFullName: "a/one", Match: "CVE-2021-1"}})

		require.Len(t, listings, 1)
		assert.Equal(t, "https://github.com/a/one", listings[0].Matches[0].RepoURL)
	})

	t.Run("sorts rows by weight then repo id, both descending", func(t *testing.T) {
		matches := []model.Match{
			{RepoID: 1, RepoFullName: "a/one", Match: "CVE-2021-1"},
			{RepoID: 1, RepoFullName: "a/one", Match: "CVE-2021-2"}, // weight 0.5
			{RepoID: 2, RepoFullName: "b/two", Match: "CVE-2021-1"}, // weight 1.0
			{RepoID: 3, RepoFullName: "c/three", Match: "CVE-2021-1"},
		}

		listings := Build(matches)

		require.Len(t, listings, 2)
		first := listings[0]
		require.Equal(t, "CVE-2021-1", first.Identifier)
		require.Len(t, first.Matches, 3)
		assert.Equal(t, int64(3), first.Matches[0].RepoID)
		assert.Equal(t, int64(2), first.Matches[1].RepoID)
		assert.Equal(t, int64(1), first.Matches[2].RepoID)
	})
}

func TestIndexer_Run(t *testing.T) {
	t.Run("round trip from match files to listing files", func(t *testing.T) {
		matchesDir := t.TempDir()
		outDir := t.TempDir()

		writeMatchCSV(t, filepath.Join(matchesDir, "1.csv"), [][]string{
			{"1", "a/one", "CVE-2021-1"},
			{"1", "a/one", "cve-2021-1"},
			{"1", "a/one", "CVE-2021-2"},
		})

		err := New(testLogger()).Run(matchesDir, outDir)
		require.NoError(t, err)

		for _, id := range []string{"CVE-2021-1", "CVE-2021-2"} {
			rows, err := ReadListing(filepath.Join(outDir, "CVE-2021", id+".csv"))
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, int64(1), rows[0].RepoID)
			assert.Equal(t, id, rows[0].Match)
			assert.InDelta(t, 0.5, rows[0].MatchWeight, 1e-9)
		}
	})

	t.Run("skips corrupt files but keeps the rest", func(t *testing.T) {
		matchesDir := t.TempDir()
		outDir := t.TempDir()

		require.NoError(t, os.WriteFile(filepath.Join(matchesDir, "bad.csv"), []byte("only-a-header\n"), 0o644))
		writeMatchCSV(t, filepath.Join(matchesDir, "1.csv"), [][]string{{"1", "a/one", "CVE-2021-1"}})

		err := New(testLogger()).Run(matchesDir, outDir)
		require.NoError(t, err)

		_, err = ReadListing(filepath.Join(outDir, "CVE-2021", "CVE-2021-1.csv"))
		assert.NoError(t, err)
	})

	t.Run("empty aggregate input is fatal", func(t *testing.T) {
		err := New(testLogger()).Run(t.TempDir(), t.TempDir())

		var noData *custom_errors.ErrNoMatchData
		require.ErrorAs(t, err, &noData)
	})

	t.Run("rerunning reproduces the same artifacts", func(t *testing.T) {
		matchesDir := t.TempDir()
		outDir := t.TempDir()
		writeMatchCSV(t, filepath.Join(matchesDir, "1.csv"), [][]string{
			{"1", "a/one", "CVE-2021-1"},
			{"2", "b/two", "CVE-2021-1"},
		})

		ix := New(testLogger())
		require.NoError(t, ix.Run(matchesDir, outDir))
		path := filepath.Join(outDir, "CVE-2021", "CVE-2021-1.csv")
		first, err := os.ReadFile(path)
		require.NoError(t, err)

		require.NoError(t, ix.Run(matchesDir, outDir))
		second, err := os.ReadFile(path)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestListingPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "CVE-2021", "CVE-2021-44228.csv"), ListingPath("out", "CVE-2021-44228"))
}

// writeMatchCSV writes a match-listing file the way store.WriteMatchFile does.
func writeMatchCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write([]string{"repo_id", "repo_full_name", "match"}))
	for _, row := range rows {
		require.NoError(t, w.Write(row))
	}
	w.Flush()
	require.NoError(t, w.Error())
}

// Guard against the store and indexer drifting apart on the file format.
func TestMatchFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo := model.Repository{ID: 42, FullName: "a/one", VulIDs: []string{"CVE-2021-1", "CVE-2021-2"}}
	require.NoError(t, store.WriteMatchFile(dir, repo))

	matches, err := store.LoadMatches(dir, testLogger())
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(42), matches[0].RepoID)
	assert.Equal(t, "a/one", matches[0].RepoFullName)
}
