package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/windtools/fstdeck/internal/log"
	"github.com/windtools/fstdeck/internal/store"
)

// handleListReports returns archived reports, newest first. Query
// parameters: hash, origin, limit.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	filter := store.Filter{
		DeckHash: r.URL.Query().Get("hash"),
		Origin:   r.URL.Query().Get("origin"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	reports, err := s.store.List(r.Context(), filter)
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).
			Str("event", "reports.list_failed").Msg("failed to list reports")
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"count":   len(reports),
	})
}

// handleGetReport returns one archived report by id.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rep, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w)
			return
		}
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).
			Str("event", "reports.get_failed").Msg("failed to load report")
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}
