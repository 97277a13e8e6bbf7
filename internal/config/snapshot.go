package config

import "github.com/rs/zerolog"

// LogSnapshot emits the resolved configuration at startup, shape and limits
// only. There are no secrets in the fstdeck config surface.
func (c AppConfig) LogSnapshot(logger zerolog.Logger) {
	logger.Info().
		Str("listen", c.Listen).
		Str("data_dir", c.DataDir).
		Str("log_level", c.LogLevel).
		Int64("max_deck_bytes", c.MaxDeckBytes).
		Int("rate_limit", c.RateLimit).
		Dur("rate_interval", c.RateInterval).
		Str("cache_backend", c.Cache.Backend).
		Dur("cache_ttl", c.Cache.TTL).
		Int("cache_max_entries", c.Cache.MaxEntries).
		Str("store_path", c.Store.Path).
		Int("store_max_reports", c.Store.MaxReports).
		Strs("watch_dirs", c.Watch.Dirs).
		Dur("watch_debounce", c.Watch.Debounce).
		Bool("otel_enabled", c.Telemetry.Enabled).
		Str("version", c.Version).
		Msg("configuration resolved")
}
