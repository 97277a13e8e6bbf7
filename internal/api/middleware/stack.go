package middleware

import (
	"github.com/go-chi/chi/v5"
)

// Config selects which cross-cutting middlewares Apply installs.
type Config struct {
	Metrics      bool
	AccessLog    bool
	TraceService string // service.name for spans; empty leaves tracing off
}

// Apply installs the ingress middleware in its canonical order. The
// recoverer must stay outermost, and correlation IDs must exist before
// anything that logs runs.
func Apply(r chi.Router, cfg Config) {
	r.Use(Recoverer, RequestID)

	if cfg.Metrics {
		r.Use(Metrics())
	}
	if cfg.TraceService != "" {
		r.Use(Tracing(cfg.TraceService))
	}
	if cfg.AccessLog {
		r.Use(AccessLog)
	}
}
