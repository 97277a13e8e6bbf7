package api

import (
	"net/http"
	"time"

	"github.com/windtools/fstdeck/internal/cache"
	"github.com/windtools/fstdeck/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.health.ServeHealth(w, r)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.health.ServeReady(w, r)
}

// StatusResponse summarizes the daemon for operators.
type StatusResponse struct {
	Version      string      `json:"version"`
	Uptime       int64       `json:"uptime"`
	CacheBackend string      `json:"cacheBackend"`
	Cache        cache.Stats `json:"cache"`
	Reports      int         `json:"reports"`
	WatchDirs    []string    `json:"watchDirs,omitempty"`
}

// handleStatus reports version, uptime, cache statistics and archive size.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).
			Str("event", "status.count_failed").Msg("failed to count reports")
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Version:      s.cfg.Version,
		Uptime:       int64(time.Since(s.started).Seconds()),
		CacheBackend: s.cfg.Cache.Backend,
		Cache:        s.cache.Stats(),
		Reports:      count,
		WatchDirs:    s.cfg.Watch.Dirs,
	})
}
