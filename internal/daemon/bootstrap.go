// Package daemon provides the fstdeck daemon bootstrapping and lifecycle
// management: configuration, storage, cache, watcher and HTTP API share
// one startup and shutdown path here.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/windtools/fstdeck/internal/api"
	"github.com/windtools/fstdeck/internal/cache"
	"github.com/windtools/fstdeck/internal/config"
	"github.com/windtools/fstdeck/internal/health"
	"github.com/windtools/fstdeck/internal/log"
	"github.com/windtools/fstdeck/internal/store"
	"github.com/windtools/fstdeck/internal/telemetry"
	"github.com/windtools/fstdeck/internal/watch"
)

// Config carries what the binary knows and the application config does not:
// build identity, the optional config file, and HTTP server tuning.
type Config struct {
	Version    string
	ConfigPath string // empty means env-and-defaults only

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// DefaultConfig is the tuning fstdeckd ships with.
func DefaultConfig() Config {
	return Config{
		Version:         "dev",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     90 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Daemon ties the long-running components to one lifecycle.
type Daemon struct {
	config    Config
	appCfg    config.AppConfig
	logger    zerolog.Logger
	server    *http.Server
	telemetry *telemetry.Provider
	store     *store.Store
	cache     cache.Cache
	watcher   *watch.Watcher
	health    *health.Manager
}

// New loads configuration, runs startup checks and assembles the daemon's
// components. Nothing is listening yet; Start does that.
func New(ctx context.Context, cfg Config) (*Daemon, error) {
	log.Configure(log.Config{Service: "fstdeck"})

	loader := config.NewLoader(cfg.ConfigPath, cfg.Version)
	appCfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log.SetLevel(appCfg.LogLevel)
	logger := log.WithComponent("daemon")

	if err := health.PerformStartupChecks(ctx, appCfg); err != nil {
		return nil, fmt.Errorf("startup checks: %w", err)
	}

	st, err := store.New(appCfg.Store.Path, appCfg.Store.MaxReports)
	if err != nil {
		return nil, fmt.Errorf("open report store: %w", err)
	}

	hm := health.NewManager(appCfg.Version)
	hm.RegisterChecker(health.NewPingChecker("store", st.Ping))
	hm.RegisterChecker(health.NewPingChecker("store-integrity", st.Integrity))
	if len(appCfg.Watch.Dirs) > 0 {
		hm.RegisterChecker(health.NewDirsChecker("watch-dirs", appCfg.Watch.Dirs))
	}

	c, err := buildCache(appCfg, hm, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &Daemon{
		config:  cfg,
		appCfg:  appCfg,
		logger:  logger,
		store:   st,
		cache:   c,
		watcher: watch.New(appCfg.Watch, c, st, appCfg.Cache.TTL),
		health:  hm,
	}, nil
}

// buildCache selects the report cache backend. The redis backend registers
// its own readiness checker since a lost connection should flip readiness,
// not crash the daemon.
func buildCache(cfg config.AppConfig, hm *health.Manager, logger zerolog.Logger) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{Addr: cfg.Cache.RedisAddr}, logger)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		hm.RegisterChecker(health.NewPingChecker("redis", rc.HealthCheck))
		return rc, nil
	default:
		return cache.NewMemoryCache(cfg.Cache.MaxEntries, time.Minute), nil
	}
}

// Start runs the daemon until ctx is cancelled or a component fails, then
// shuts everything down. It always returns after shutdown has completed.
func (d *Daemon) Start(ctx context.Context) error {
	d.logger.Info().
		Str("version", d.appCfg.Version).
		Str("listen", d.appCfg.Listen).
		Str("cache_backend", d.appCfg.Cache.Backend).
		Strs("watch_dirs", d.appCfg.Watch.Dirs).
		Msg("starting fstdeck daemon")

	if err := d.startTelemetry(ctx); err != nil {
		d.logger.Warn().Err(err).Msg("telemetry setup failed, continuing without tracing")
	}

	d.server = &http.Server{
		Addr:              d.appCfg.Listen,
		Handler:           api.New(d.appCfg, d.cache, d.store, d.health).Router(),
		ReadTimeout:       d.config.ReadTimeout,
		ReadHeaderTimeout: d.config.ReadTimeout / 2,
		WriteTimeout:      d.config.WriteTimeout,
		IdleTimeout:       d.config.IdleTimeout,
		MaxHeaderBytes:    d.config.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.logger.Info().Msgf("HTTP server listening on %s", d.appCfg.Listen)
		err := d.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return d.watcher.Run(gctx)
	})

	// Unblocks ListenAndServe once the group context dies, whether through
	// cancellation or a failing sibling.
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), d.config.ShutdownTimeout)
		defer cancel()
		return d.server.Shutdown(stopCtx)
	})

	runErr := g.Wait()
	shutdownErr := d.Shutdown(context.Background())
	if runErr != nil {
		return runErr
	}
	return shutdownErr
}

// Shutdown gracefully stops the HTTP server and releases every component.
// It tolerates partially built daemons, so New's error paths can reuse it.
func (d *Daemon) Shutdown(ctx context.Context) error {
	d.logger.Info().Msg("shutting down daemon")

	stopCtx, cancel := context.WithTimeout(ctx, d.config.ShutdownTimeout)
	defer cancel()

	steps := []struct {
		component string
		stop      func() error
	}{
		{"http server", func() error {
			if d.server == nil {
				return nil
			}
			return d.server.Shutdown(stopCtx)
		}},
		{"telemetry", func() error {
			if d.telemetry == nil {
				return nil
			}
			return d.telemetry.Shutdown(stopCtx)
		}},
		{"cache", func() error {
			if d.cache == nil {
				return nil
			}
			return d.cache.Close()
		}},
		{"report store", func() error {
			if d.store == nil {
				return nil
			}
			return d.store.Close()
		}},
	}
	for _, s := range steps {
		if err := s.stop(); err != nil {
			d.logger.Error().Err(err).Str("component", s.component).Msg("unclean component shutdown")
		}
	}

	d.logger.Info().Msg("daemon stopped")
	return nil
}

// startTelemetry brings up the OTLP trace exporter when enabled.
func (d *Daemon) startTelemetry(ctx context.Context) error {
	tel := d.appCfg.Telemetry
	if !tel.Enabled {
		return nil
	}

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        true,
		ServiceName:    "fstdeck",
		ServiceVersion: d.appCfg.Version,
		Protocol:       tel.Protocol,
		Endpoint:       tel.Endpoint,
		Insecure:       tel.Insecure,
		SampleRatio:    tel.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("otlp setup: %w", err)
	}

	d.telemetry = provider
	d.logger.Info().
		Str("endpoint", tel.Endpoint).
		Str("protocol", tel.Protocol).
		Float64("sample_ratio", tel.SampleRatio).
		Msg("telemetry initialized")
	return nil
}

// WaitForShutdown returns a context cancelled by SIGINT or SIGTERM.
func WaitForShutdown() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}
