// Package api serves the fstdeck validation HTTP API: deck submission,
// the field schema, archived reports and operational endpoints.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/windtools/fstdeck/internal/api/middleware"
	"github.com/windtools/fstdeck/internal/cache"
	"github.com/windtools/fstdeck/internal/config"
	"github.com/windtools/fstdeck/internal/health"
	"github.com/windtools/fstdeck/internal/store"
)

// Server holds the dependencies of the HTTP handlers. The cache and store
// are owned by the caller; the server never closes them.
type Server struct {
	cfg     config.AppConfig
	cache   cache.Cache
	store   *store.Store
	health  *health.Manager
	started time.Time
}

// New creates an API server.
func New(cfg config.AppConfig, c cache.Cache, st *store.Store, hm *health.Manager) *Server {
	return &Server{
		cfg:     cfg,
		cache:   c,
		store:   st,
		health:  hm,
		started: time.Now(),
	}
}

// Router assembles the full handler: the ingress middleware stack, the
// operational endpoints and the versioned API. Health and metrics sit
// outside the rate limit so probes are never throttled.
func (s *Server) Router() http.Handler {
	tracingService := ""
	if s.cfg.Telemetry.Enabled {
		tracingService = "fstdeck"
	}

	r := chi.NewRouter()
	middleware.Apply(r, middleware.Config{
		Metrics:      true,
		AccessLog:    true,
		TraceService: tracingService,
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.cfg.RateLimit, s.cfg.RateInterval))
		r.Post("/validate", s.handleValidate)
		r.Get("/schema", s.handleSchema)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Get("/status", s.handleStatus)
	})

	return r
}
