package summary

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvescout/internal/model"
	"cvescout/internal/store"
)

func TestSummarizer_Run(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	day := time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2021, 7, 15, 0, 0, 0, 0, time.UTC)

	t.Run("produces ranked artifacts from raw hits", func(t *testing.T) {
		st := store.New(t.TempDir(), logger)
		records := []model.Repository{
			{ID: 1, FullName: "a/cve-2021-1-poc", MatchedOn: "CVE-2021 pushed:>2021-06-24", PushedAt: "2021-07-01T00:00:00Z"},
			{ID: 1, FullName: "a/cve-2021-1-poc", MatchedOn: "exploit pushed:>2021-06-24", PushedAt: "2021-07-01T00:00:00Z"},
			{ID: 2, FullName: "b/tool", MatchedOn: "CVE-2021 pushed:>2021-06-24", PushedAt: "bogus"},
		}
		require.NoError(t, st.MergeDayHits(day, "CVE-2021", records[:1]))
		require.NoError(t, st.MergeDayHits(day, "exploit", records[1:2]))
		require.NoError(t, st.MergeDayHits(day, "CVE-2021", records[2:]))

		scope := Scope{Level: Day, Time: day}
		require.NoError(t, New(st, logger).Run(scope, now))

		summary, err := st.LoadSummary(scope.Dir(st))
		require.NoError(t, err)
		// Repo 2's timestamp is unparseable, so only repo 1 survives ranking.
		require.Len(t, summary, 1)
		assert.Equal(t, int64(1), summary[0].ID)
		assert.Equal(t, []string{"CVE-2021", "exploit"}, summary[0].MatchedList)
		assert.Equal(t, 2, summary[0].MatchedCount)
		assert.Equal(t, []string{"CVE-2021-1"}, summary[0].VulIDs)

		for _, name := range []string{"data.csv", "README.md"} {
			_, err := os.Stat(filepath.Join(scope.Dir(st), name))
			assert.NoError(t, err, name)
		}
	})

	t.Run("no input files produce an empty output set", func(t *testing.T) {
		st := store.New(t.TempDir(), logger)
		scope := Scope{Level: Day, Time: day}

		require.NoError(t, New(st, logger).Run(scope, now))

		summary, err := st.LoadSummary(scope.Dir(st))
		require.NoError(t, err)
		assert.Empty(t, summary)
	})
}
