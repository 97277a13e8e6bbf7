package config

import (
	"github.com/windtools/fstdeck/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.HostPort("Listen", cfg.Listen)
	v.OneOf("LogLevel", cfg.LogLevel, []string{"debug", "info", "warn", "error"})

	// Creates the directory on first start.
	v.WritableDirectory("DataDir", cfg.DataDir, false)

	if cfg.MaxDeckBytes <= 0 {
		v.AddError("MaxDeckBytes", "must be positive", cfg.MaxDeckBytes)
	}
	v.Positive("RateLimit", cfg.RateLimit)
	if cfg.RateInterval <= 0 {
		v.AddError("RateInterval", "must be positive", cfg.RateInterval)
	}

	v.OneOf("Cache.Backend", cfg.Cache.Backend, []string{"memory", "redis"})
	if cfg.Cache.Backend == "redis" {
		v.HostPort("Cache.RedisAddr", cfg.Cache.RedisAddr)
	}
	if cfg.Cache.TTL <= 0 {
		v.AddError("Cache.TTL", "must be positive", cfg.Cache.TTL)
	}
	v.Positive("Cache.MaxEntries", cfg.Cache.MaxEntries)

	v.NotEmpty("Store.Path", cfg.Store.Path)
	v.Positive("Store.MaxReports", cfg.Store.MaxReports)

	// Watched directories must exist up front; the watcher does not create
	// deck directories.
	for _, dir := range cfg.Watch.Dirs {
		v.Directory("Watch.Dirs", dir, true)
	}
	if cfg.Watch.Debounce < 0 {
		v.AddError("Watch.Debounce", "cannot be negative", cfg.Watch.Debounce)
	}
	if len(cfg.Watch.Dirs) > 0 && cfg.Watch.MaxPerSecond <= 0 {
		v.AddError("Watch.MaxPerSecond", "must be positive", cfg.Watch.MaxPerSecond)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Protocol", cfg.Telemetry.Protocol, []string{"http", "grpc"})
		// OTLP endpoints are host:port for both protocols; the exporter
		// picks the scheme from the Insecure flag.
		v.HostPort("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.RangeFloat("Telemetry.SampleRatio", cfg.Telemetry.SampleRatio, 0, 1)
	}

	if !v.IsValid() {
		return v.Err()
	}

	return nil
}
