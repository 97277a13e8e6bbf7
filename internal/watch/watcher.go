// Package watch revalidates deck files as they change on disk. Results are
// archived and cached exactly like API submissions, so operators get one
// shared validation history regardless of how a deck reached the daemon.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/windtools/fstdeck/internal/cache"
	"github.com/windtools/fstdeck/internal/config"
	"github.com/windtools/fstdeck/internal/deck"
	"github.com/windtools/fstdeck/internal/log"
	"github.com/windtools/fstdeck/internal/metrics"
	"github.com/windtools/fstdeck/internal/store"
	"github.com/windtools/fstdeck/internal/telemetry"
)

// Watcher revalidates .fst files in the configured directories whenever
// they are created or written. Rapid write bursts to one file are debounced
// into a single revalidation; a rate limiter caps the revalidation rate
// across all files.
type Watcher struct {
	cfg      config.WatchConfig
	cache    cache.Cache
	store    *store.Store
	cacheTTL time.Duration
	logger   zerolog.Logger
	limiter  *rate.Limiter

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher. The cache and store are owned by the caller.
func New(cfg config.WatchConfig, c cache.Cache, st *store.Store, cacheTTL time.Duration) *Watcher {
	burst := int(cfg.MaxPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Watcher{
		cfg:      cfg,
		cache:    c,
		store:    st,
		cacheTTL: cacheTTL,
		logger:   log.WithComponent("watch"),
		limiter:  rate.NewLimiter(rate.Limit(cfg.MaxPerSecond), burst),
		pending:  make(map[string]*time.Timer),
	}
}

// Run watches the configured directories until ctx is canceled. It returns
// nil immediately when no directories are configured.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.cfg.Dirs) == 0 {
		w.logger.Info().Str("event", "watch.disabled").Msg("no watch directories configured")
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fsw.Close() }()

	for _, dir := range w.cfg.Dirs {
		if err := fsw.Add(dir); err != nil {
			return err
		}
	}
	w.logger.Info().
		Str("event", "watch.started").
		Strs("dirs", w.cfg.Dirs).
		Dur("debounce", w.cfg.Debounce).
		Msg("watching deck directories")

	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("event", "watch.stopped").Msg("deck watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Str("event", "watch.error").Msg("watcher error")
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	countEvent(event.Op)

	if !strings.EqualFold(filepath.Ext(event.Name), ".fst") {
		return
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.cancelPending(event.Name)
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	w.logger.Debug().
		Str("event", "watch.deck_changed").
		Str("path", event.Name).
		Str("op", event.Op.String()).
		Msg("deck file changed")

	// Debounce: editors fire several events per save, and only the last
	// write matters.
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.revalidate(ctx, path)
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// revalidate parses, validates and archives one deck file. It blocks on the
// rate limiter, so a burst across many files is worked off at the
// configured pace.
func (w *Watcher) revalidate(ctx context.Context, path string) {
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	ctx, span := telemetry.Tracer("fstdeck/watch").Start(ctx, "deck.revalidate")
	defer span.End()

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from a configured watch directory
	if err != nil {
		metrics.IncRevalidation("read_error")
		w.logger.Warn().Err(err).Str("event", "watch.read_failed").Str("path", path).Msg("failed to read deck")
		return
	}

	key := cache.Key(data)
	span.SetAttributes(telemetry.DeckAttributes(key, path, store.OriginWatcher)...)

	start := time.Now()
	doc, err := deck.Parse(data)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		var perr *deck.ParseError
		if errors.As(err, &perr) {
			metrics.ObserveParse(parseOutcome(perr.Kind), elapsed)
			w.logger.Warn().
				Str("event", "watch.parse_failed").
				Str("path", path).
				Str("kind", perr.Kind.String()).
				Int("line", perr.Line).
				Str("field", perr.Field).
				Msg(perr.Msg)
		}
		metrics.IncRevalidation("parse_error")
		span.SetAttributes(telemetry.ErrorAttributes(err, "parse_error")...)
		return
	}
	metrics.ObserveParse("success", elapsed)

	issues := deck.Validate(doc)
	clean := len(issues) == 0
	metrics.RecordValidation(clean)
	for _, issue := range issues {
		metrics.IncValidationIssue(issue.Kind.String())
	}
	if clean {
		metrics.IncRevalidation("clean")
	} else {
		metrics.IncRevalidation("issues")
	}

	checkedAt := time.Now().UTC().Truncate(time.Millisecond)
	rep := &store.Report{
		DeckHash:  key,
		Origin:    store.OriginWatcher,
		DeckPath:  path,
		Clean:     clean,
		Issues:    issues,
		CreatedAt: checkedAt,
	}
	if _, err := w.store.Archive(ctx, rep); err != nil {
		w.logger.Error().Err(err).Str("event", "watch.archive_failed").Str("path", path).Msg("failed to archive report")
	}

	w.cache.Set(key, cache.Result{
		DeckHash:  key,
		Clean:     clean,
		Issues:    issues,
		CheckedAt: checkedAt,
	}, w.cacheTTL)

	span.SetAttributes(telemetry.ValidationAttributes(len(issues), len(deck.Errors(issues)), clean, false)...)

	w.logger.Info().
		Str("event", "watch.revalidated").
		Str("path", path).
		Str("deck_hash", key).
		Bool("clean", clean).
		Int("issues", len(issues)).
		Msg("deck revalidated")
}

func countEvent(op fsnotify.Op) {
	for _, bit := range []struct {
		op    fsnotify.Op
		label string
	}{
		{fsnotify.Create, "create"},
		{fsnotify.Write, "write"},
		{fsnotify.Remove, "remove"},
		{fsnotify.Rename, "rename"},
		{fsnotify.Chmod, "chmod"},
	} {
		if op.Has(bit.op) {
			metrics.IncWatchEvent(bit.label)
		}
	}
}

func parseOutcome(k deck.ErrKind) string {
	if k == deck.ErrMalformedLine {
		return "malformed"
	}
	return "schema"
}
