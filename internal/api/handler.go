package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cvescout/internal/crossindex"
	"cvescout/internal/extract"
	"cvescout/internal/store"
	"cvescout/internal/summary"
)

// Handler is the container for API dependencies.
type Handler struct {
	st          *store.Store
	vulViewsDir string
	logger      *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
// The API is read-only: it serves artifacts the batch pipelines wrote.
func NewRouter(st *store.Store, vulViewsDir string, logger *slog.Logger) http.Handler {
	h := &Handler{
		st:          st,
		vulViewsDir: vulViewsDir,
		logger:      logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/summaries/{year}", h.getSummary)
		r.Get("/summaries/{year}/{month}", h.getSummary)
		r.Get("/summaries/{year}/{month}/{day}", h.getSummary)
		r.Get("/identifiers/{id}", h.getIdentifier)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getSummary serves a scope's ranked summary.
// GET /v1/summaries/{year}[/{month}[/{day}]]
func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	scope, err := summary.ParseScope(
		datePath(chi.URLParam(r, "year"), chi.URLParam(r, "month"), chi.URLParam(r, "day")))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date selector")
		return
	}

	records, err := h.st.LoadSummary(scope.Dir(h.st))
	if err != nil {
		if os.IsNotExist(err) {
			respondWithError(w, http.StatusNotFound, "Summary not found")
			return
		}
		h.logger.Error("Failed to load summary", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, records)
}

// getIdentifier serves the cross-index listing for one identifier.
// GET /v1/identifiers/{id}
func (h *Handler) getIdentifier(w http.ResponseWriter, r *http.Request) {
	id := extract.Normalize(chi.URLParam(r, "id"))
	if ids := extract.CVEs(id); len(ids) != 1 || ids[0] != id {
		respondWithError(w, http.StatusBadRequest, "Invalid identifier")
		return
	}

	matches, err := crossindex.ReadListing(crossindex.ListingPath(h.vulViewsDir, id))
	if err != nil {
		if os.IsNotExist(err) {
			respondWithError(w, http.StatusNotFound, "Identifier not found")
			return
		}
		h.logger.Error("Failed to read listing", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, matches)
}

// datePath turns URL parts into the selector strings ParseScope expects.
func datePath(year, month, day string) (date, monthSel, yearSel string) {
	switch {
	case day != "":
		return year + "-" + month + "-" + day, "", ""
	case month != "":
		return "", year + "-" + month, ""
	default:
		return "", "", year
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
