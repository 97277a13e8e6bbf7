// Package health implements the liveness and readiness probes the daemon
// exposes for Docker HEALTHCHECK and Kubernetes deployments, plus the
// component checkers (archive, cache, watched directories) wired into them.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/windtools/fstdeck/internal/log"
)

// Status is an aggregate or per-component probe outcome.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// severity orders statuses so aggregation can keep the worst one.
func severity(s Status) int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// CheckResult is one component's probe outcome.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Uptime    int64                  `json:"uptime"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadinessResponse is the readiness probe body.
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker probes one component.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager runs registered checkers and serves the probe endpoints.
type Manager struct {
	version  string
	started  time.Time
	checkers []Checker
}

func NewManager(version string) *Manager {
	return &Manager{
		version:  version,
		started:  time.Now(),
		checkers: make([]Checker, 0),
	}
}

// RegisterChecker adds a component checker. Not safe to call once the
// probe endpoints are serving.
func (m *Manager) RegisterChecker(checker Checker) {
	m.checkers = append(m.checkers, checker)
}

// runChecks probes every registered component and reduces the results
// to the worst status seen.
func (m *Manager) runChecks(ctx context.Context) (map[string]CheckResult, Status) {
	results := make(map[string]CheckResult, len(m.checkers))
	worst := StatusHealthy
	for _, c := range m.checkers {
		res := c.Check(ctx)
		results[c.Name()] = res
		if severity(res.Status) > severity(worst) {
			worst = res.Status
		}
	}
	return results, worst
}

// Health answers the liveness probe. The process answering at all is the
// signal; component results are attached only in verbose mode.
func (m *Manager) Health(ctx context.Context, verbose bool) HealthResponse {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Uptime:    int64(time.Since(m.started).Seconds()),
		Timestamp: time.Now(),
	}
	if verbose && len(m.checkers) > 0 {
		resp.Checks, resp.Status = m.runChecks(ctx)
	}
	return resp
}

// Ready answers the readiness probe. Only an unhealthy component takes
// the daemon out of rotation; degraded ones keep serving.
func (m *Manager) Ready(ctx context.Context, _ bool) ReadinessResponse {
	resp := ReadinessResponse{
		Ready:     true,
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}
	if len(m.checkers) == 0 {
		return resp
	}
	resp.Checks, resp.Status = m.runChecks(ctx)
	resp.Ready = resp.Status != StatusUnhealthy
	return resp
}

func verboseQuery(r *http.Request) bool {
	return r.URL.Query().Get("verbose") == "true"
}

func writeProbe(w http.ResponseWriter, logger zerolog.Logger, code int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str("event", "probe.encode_error").Msg("failed to encode probe response")
	}
}

// ServeHealth handles GET /healthz. Liveness always answers 200.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "health")
	verbose := verboseQuery(r)

	resp := m.Health(r.Context(), verbose)
	writeProbe(w, logger, http.StatusOK, resp)

	logger.Debug().
		Str("event", "health.served").
		Str("status", string(resp.Status)).
		Bool("verbose", verbose).
		Msg("liveness probe answered")
}

// ServeReady handles GET /readyz and answers 503 while any component is
// unhealthy so load balancers drain traffic.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "readiness")
	verbose := verboseQuery(r)

	resp := m.Ready(r.Context(), verbose)
	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
	}
	writeProbe(w, logger, code, resp)

	logger.Debug().
		Str("event", "readiness.served").
		Str("status", string(resp.Status)).
		Bool("ready", resp.Ready).
		Bool("verbose", verbose).
		Msg("readiness probe answered")
}

// PingChecker wraps a connectivity probe as a Checker. It covers the
// report archive (Store.Ping) and the Redis cache (HealthCheck) alike.
type PingChecker struct {
	name string
	ping func(ctx context.Context) error
}

// NewPingChecker creates a checker from a probe function.
func NewPingChecker(name string, ping func(ctx context.Context) error) *PingChecker {
	return &PingChecker{name: name, ping: ping}
}

func (c *PingChecker) Name() string {
	return c.name
}

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.ping(ctx); err != nil {
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  err.Error(),
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "reachable",
	}
}

// DirsChecker verifies that watched deck directories still exist. A
// vanished directory degrades the daemon; it keeps serving the API and
// watching the remaining ones.
type DirsChecker struct {
	name string
	dirs []string
}

// NewDirsChecker creates a checker for directory existence.
func NewDirsChecker(name string, dirs []string) *DirsChecker {
	return &DirsChecker{name: name, dirs: dirs}
}

func (c *DirsChecker) Name() string {
	return c.name
}

func (c *DirsChecker) Check(_ context.Context) CheckResult {
	if len(c.dirs) == 0 {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "no directories configured",
		}
	}

	missing := 0
	var firstMissing string
	for _, dir := range c.dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			missing++
			if firstMissing == "" {
				firstMissing = dir
			}
		}
	}

	switch {
	case missing == 0:
		return CheckResult{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%d directories watched", len(c.dirs)),
		}
	case missing < len(c.dirs):
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d of %d directories missing", missing, len(c.dirs)),
			Error:   firstMissing,
		}
	default:
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "all watched directories missing",
			Error:   firstMissing,
		}
	}
}
