package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/windtools/fstdeck/internal/api/middleware"
	"github.com/windtools/fstdeck/internal/cache"
	"github.com/windtools/fstdeck/internal/deck"
	"github.com/windtools/fstdeck/internal/log"
	"github.com/windtools/fstdeck/internal/metrics"
	"github.com/windtools/fstdeck/internal/store"
	"github.com/windtools/fstdeck/internal/telemetry"
)

// ValidationResponse is the JSON result of one deck submission.
type ValidationResponse struct {
	ReportID  string       `json:"reportId,omitempty"`
	DeckHash  string       `json:"deckHash"`
	Name      string       `json:"name,omitempty"`
	Clean     bool         `json:"clean"`
	Issues    []deck.Issue `json:"issues"`
	CheckedAt time.Time    `json:"checkedAt"`
	Cached    bool         `json:"cached"`
}

// ParseFailure is the JSON body of a 422 response.
type ParseFailure struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Line    int    `json:"line,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// handleValidate parses and validates a submitted deck. The response is 200
// whether or not findings exist; 422 marks a deck that could not be parsed
// at all. Results are cached by content hash and archived. The optional
// ?name= query labels the submission in reports.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	lg := log.WithComponentFromContext(r.Context(), "api")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxDeckBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			lg.Warn().Int64("limit", maxErr.Limit).Str("event", "validate.too_large").Msg("deck rejected")
			writeErr(w, http.StatusRequestEntityTooLarge, "deck exceeds size limit")
			return
		}
		lg.Error().Err(err).Str("event", "validate.read_failed").Msg("failed to read request body")
		writeInternalError(w)
		return
	}
	if len(body) == 0 {
		writeBadRequest(w, "empty request body")
		return
	}

	name := r.URL.Query().Get("name")
	key := cache.Key(body)
	middleware.AddSpanAttributes(r, telemetry.DeckAttributes(key, name, store.OriginAPI)...)

	if res, ok := s.cache.Get(key); ok {
		middleware.AddSpanAttributes(r, telemetry.ValidationAttributes(
			len(res.Issues), len(deck.Errors(res.Issues)), res.Clean, true)...)
		writeJSON(w, http.StatusOK, ValidationResponse{
			DeckHash:  res.DeckHash,
			Name:      name,
			Clean:     res.Clean,
			Issues:    res.Issues,
			CheckedAt: res.CheckedAt,
			Cached:    true,
		})
		return
	}

	start := time.Now()
	doc, err := deck.Parse(body)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		var perr *deck.ParseError
		if !errors.As(err, &perr) {
			lg.Error().Err(err).Str("event", "validate.parse_failed").Msg("deck parse failed")
			writeInternalError(w)
			return
		}
		metrics.ObserveParse(parseOutcome(perr.Kind), elapsed)
		lg.Warn().
			Str("event", "validate.parse_failed").
			Str("kind", perr.Kind.String()).
			Int("line", perr.Line).
			Str("field", perr.Field).
			Msg("deck parse failed")
		writeJSON(w, http.StatusUnprocessableEntity, ParseFailure{
			Error:   "deck parse failed",
			Kind:    kindLabel(perr.Kind),
			Line:    perr.Line,
			Field:   perr.Field,
			Message: perr.Msg,
		})
		return
	}
	metrics.ObserveParse("success", elapsed)

	issues := deck.Validate(doc)
	clean := len(issues) == 0
	metrics.RecordValidation(clean)
	for _, issue := range issues {
		metrics.IncValidationIssue(issue.Kind.String())
	}

	checkedAt := time.Now().UTC().Truncate(time.Millisecond)
	rep := &store.Report{
		DeckHash:  key,
		Origin:    store.OriginAPI,
		DeckPath:  name,
		Clean:     clean,
		Issues:    issues,
		CreatedAt: checkedAt,
	}
	if _, err := s.store.Archive(r.Context(), rep); err != nil {
		// The validation itself succeeded; a lost archive entry is logged
		// but does not fail the request.
		lg.Error().Err(err).Str("event", "validate.archive_failed").Msg("failed to archive report")
		rep.ID = ""
	}

	s.cache.Set(key, cache.Result{
		DeckHash:  key,
		Clean:     clean,
		Issues:    issues,
		CheckedAt: checkedAt,
	}, s.cfg.Cache.TTL)

	middleware.AddSpanAttributes(r, telemetry.ValidationAttributes(
		len(issues), len(deck.Errors(issues)), clean, false)...)

	lg.Info().
		Str("event", "validate.completed").
		Str("deck_hash", key).
		Bool("clean", clean).
		Int("issues", len(issues)).
		Msg("deck validated")

	writeJSON(w, http.StatusOK, ValidationResponse{
		ReportID:  rep.ID,
		DeckHash:  key,
		Name:      name,
		Clean:     clean,
		Issues:    issues,
		CheckedAt: checkedAt,
	})
}

func parseOutcome(k deck.ErrKind) string {
	if k == deck.ErrMalformedLine {
		return "malformed"
	}
	return "schema"
}

func kindLabel(k deck.ErrKind) string {
	if k == deck.ErrMalformedLine {
		return "malformed_line"
	}
	return "schema_violation"
}
