// Package config resolves the fstdeck daemon configuration with the
// precedence ENV > file > defaults.
package config

import "time"

// AppConfig is the fully resolved daemon configuration.
type AppConfig struct {
	Listen   string // HTTP listen address (host:port)
	DataDir  string // working directory for the report archive
	LogLevel string // zerolog level name
	Version  string // injected by the binary

	MaxDeckBytes int64         // request body cap for submitted decks
	RateLimit    int           // requests allowed per interval and client
	RateInterval time.Duration

	Cache     CacheConfig
	Store     StoreConfig
	Watch     WatchConfig
	Telemetry TelemetryConfig
}

// CacheConfig controls the validation report cache.
type CacheConfig struct {
	Backend    string // "memory" or "redis"
	RedisAddr  string // host:port, redis backend only
	TTL        time.Duration
	MaxEntries int // memory backend only
}

// StoreConfig controls the SQLite report archive.
type StoreConfig struct {
	Path       string // database file, resolved under DataDir when relative
	MaxReports int    // oldest reports are pruned beyond this count
}

// WatchConfig controls directory watching.
type WatchConfig struct {
	Dirs         []string // deck directories to watch; empty disables watching
	Debounce     time.Duration
	MaxPerSecond float64 // revalidation rate cap
}

// TelemetryConfig controls the OTLP trace exporter.
type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string // collector endpoint
	Protocol    string // "http" or "grpc"
	Insecure    bool
	SampleRatio float64
}

// Default returns the built-in defaults, the lowest precedence layer.
func Default() AppConfig {
	return AppConfig{
		Listen:       ":8080",
		DataDir:      "data",
		LogLevel:     "info",
		MaxDeckBytes: 1 << 20,
		RateLimit:    120,
		RateInterval: time.Minute,
		Cache: CacheConfig{
			Backend:    "memory",
			TTL:        15 * time.Minute,
			MaxEntries: 1024,
		},
		Store: StoreConfig{
			MaxReports: 1000,
		},
		Watch: WatchConfig{
			Debounce:     2 * time.Second,
			MaxPerSecond: 4,
		},
		Telemetry: TelemetryConfig{
			Protocol:    "http",
			SampleRatio: 1.0,
		},
	}
}
