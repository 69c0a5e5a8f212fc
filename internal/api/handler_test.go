package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvescout/internal/crossindex"
	"cvescout/internal/model"
	"cvescout/internal/report"
	"cvescout/internal/store"
)

func setupHandler(t *testing.T) (*store.Store, string, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	st := store.New(t.TempDir(), logger)
	vulViews := t.TempDir()
	return st, vulViews, NewRouter(st, vulViews, logger)
}

func TestHealthCheck(t *testing.T) {
	_, _, router := setupHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestGetSummary(t *testing.T) {
	t.Run("serves a day summary", func(t *testing.T) {
		st, _, router := setupHandler(t)
		dir := filepath.Join(st.BaseDir, "2021", "07", "01")
		require.NoError(t, report.WriteAll(dir, []model.Repository{{ID: 1, FullName: "a/poc"}}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/summaries/2021/07/01", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var records []model.Repository
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "a/poc", records[0].FullName)
	})

	t.Run("missing summary yields 404", func(t *testing.T) {
		_, _, router := setupHandler(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/summaries/2021/07/01", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad selector yields 400", func(t *testing.T) {
		_, _, router := setupHandler(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/summaries/not-a-year", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetIdentifier(t *testing.T) {
	t.Run("serves an identifier listing", func(t *testing.T) {
		_, vulViews, router := setupHandler(t)

		path := crossindex.ListingPath(vulViews, "CVE-2021-1")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(
			"match,match_weight,repo_url,repo_full_name,repo_id\nCVE-2021-1,1.00000000,https://github.com/a/poc,a/poc,1\n"), 0o644))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/identifiers/cve-2021-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var matches []model.Match
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
		require.Len(t, matches, 1)
		assert.Equal(t, "a/poc", matches[0].RepoFullName)
	})

	t.Run("invalid identifier yields 400", func(t *testing.T) {
		_, _, router := setupHandler(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/identifiers/droptables", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown identifier yields 404", func(t *testing.T) {
		_, _, router := setupHandler(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/identifiers/CVE-1999-9999", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
