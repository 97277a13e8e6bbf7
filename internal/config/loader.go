package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/windtools/fstdeck/internal/log"
)

// Loader assembles the runtime configuration from defaults, an optional
// YAML file and FSTDECK_* environment variables, in rising precedence.
type Loader struct {
	configPath string
	version    string

	// ConsumedEnvKeys records every environment key the loader looked at,
	// so leftover FSTDECK_* variables can be flagged as likely typos.
	ConsumedEnvKeys map[string]struct{}
}

func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// mark records key as consumed and hands it back, so env lookups stay
// one-liners in applyEnv.
func (l *Loader) mark(key string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return key
}

// Load builds the effective configuration. File values override defaults,
// environment variables override both, then paths are resolved and the
// result validated.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()

	if l.configPath != "" {
		fileCfg, err := readConfigFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("apply config file: %w", err)
		}
	}

	l.applyEnv(&cfg)
	l.warnUnknownEnv()
	resolvePaths(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// resolvePaths absolutizes DataDir and anchors a missing or relative
// store path inside it.
func resolvePaths(cfg *AppConfig) {
	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	switch {
	case cfg.Store.Path == "":
		cfg.Store.Path = filepath.Join(cfg.DataDir, "reports.db")
	case !filepath.IsAbs(cfg.Store.Path):
		cfg.Store.Path = filepath.Join(cfg.DataDir, cfg.Store.Path)
	}
}

// readConfigFile parses a YAML file with unknown keys rejected, so a
// misspelled key fails loudly instead of being silently ignored.
func readConfigFile(path string) (*FileConfig, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("unsupported config format: %s (want .yaml or .yml)", ext)
	}

	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- the operator picks this path
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var fc FileConfig
	switch err := dec.Decode(&fc); {
	case errors.Is(err, io.EOF):
		// An empty file configures nothing.
		return &FileConfig{}, nil
	case err != nil:
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		return nil, errors.New("multiple documents in config file")
	}
	return &fc, nil
}

func mergeFileConfig(cfg *AppConfig, f *FileConfig) error {
	if f.Listen != "" {
		cfg.Listen = f.Listen
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.MaxDeckBytes != nil {
		cfg.MaxDeckBytes = *f.MaxDeckBytes
	}
	if f.RateLimit != nil {
		cfg.RateLimit = *f.RateLimit
	}
	if err := overrideDuration(&cfg.RateInterval, f.RateInterval, "rateInterval"); err != nil {
		return err
	}

	if c := f.Cache; c != nil {
		if c.Backend != "" {
			cfg.Cache.Backend = c.Backend
		}
		if c.RedisAddr != "" {
			cfg.Cache.RedisAddr = c.RedisAddr
		}
		if err := overrideDuration(&cfg.Cache.TTL, c.TTL, "cache.ttl"); err != nil {
			return err
		}
		if c.MaxEntries != nil {
			cfg.Cache.MaxEntries = *c.MaxEntries
		}
	}

	if s := f.Store; s != nil {
		if s.Path != "" {
			cfg.Store.Path = s.Path
		}
		if s.MaxReports != nil {
			cfg.Store.MaxReports = *s.MaxReports
		}
	}

	if w := f.Watch; w != nil {
		if len(w.Dirs) > 0 {
			cfg.Watch.Dirs = append([]string(nil), w.Dirs...)
		}
		if err := overrideDuration(&cfg.Watch.Debounce, w.Debounce, "watch.debounce"); err != nil {
			return err
		}
		if w.MaxPerSecond != nil {
			cfg.Watch.MaxPerSecond = *w.MaxPerSecond
		}
	}

	if t := f.Telemetry; t != nil {
		if t.Enabled != nil {
			cfg.Telemetry.Enabled = *t.Enabled
		}
		if t.Endpoint != "" {
			cfg.Telemetry.Endpoint = t.Endpoint
		}
		if t.Protocol != "" {
			cfg.Telemetry.Protocol = t.Protocol
		}
		if t.Insecure != nil {
			cfg.Telemetry.Insecure = *t.Insecure
		}
		if t.SampleRatio != nil {
			cfg.Telemetry.SampleRatio = *t.SampleRatio
		}
	}

	return nil
}

func overrideDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}

func (l *Loader) applyEnv(cfg *AppConfig) {
	cfg.Listen = ParseString(l.mark("FSTDECK_LISTEN"), cfg.Listen)
	cfg.DataDir = ParseString(l.mark("FSTDECK_DATA_DIR"), cfg.DataDir)
	cfg.LogLevel = ParseString(l.mark("FSTDECK_LOG_LEVEL"), cfg.LogLevel)
	cfg.MaxDeckBytes = ParseInt64(l.mark("FSTDECK_MAX_DECK_BYTES"), cfg.MaxDeckBytes)
	cfg.RateLimit = ParseInt(l.mark("FSTDECK_RATE_LIMIT"), cfg.RateLimit)
	cfg.RateInterval = ParseDuration(l.mark("FSTDECK_RATE_INTERVAL"), cfg.RateInterval)

	cfg.Cache.Backend = ParseString(l.mark("FSTDECK_CACHE_BACKEND"), cfg.Cache.Backend)
	cfg.Cache.RedisAddr = ParseString(l.mark("FSTDECK_REDIS_ADDR"), cfg.Cache.RedisAddr)
	cfg.Cache.TTL = ParseDuration(l.mark("FSTDECK_CACHE_TTL"), cfg.Cache.TTL)
	cfg.Cache.MaxEntries = ParseInt(l.mark("FSTDECK_CACHE_MAX_ENTRIES"), cfg.Cache.MaxEntries)

	cfg.Store.Path = ParseString(l.mark("FSTDECK_STORE_PATH"), cfg.Store.Path)
	cfg.Store.MaxReports = ParseInt(l.mark("FSTDECK_STORE_MAX_REPORTS"), cfg.Store.MaxReports)

	cfg.Watch.Dirs = ParseStringList(l.mark("FSTDECK_WATCH_DIRS"), cfg.Watch.Dirs)
	cfg.Watch.Debounce = ParseDuration(l.mark("FSTDECK_WATCH_DEBOUNCE"), cfg.Watch.Debounce)
	cfg.Watch.MaxPerSecond = ParseFloat(l.mark("FSTDECK_WATCH_MAX_PER_SECOND"), cfg.Watch.MaxPerSecond)

	cfg.Telemetry.Enabled = ParseBool(l.mark("FSTDECK_OTEL_ENABLED"), cfg.Telemetry.Enabled)
	cfg.Telemetry.Endpoint = ParseString(l.mark("FSTDECK_OTEL_ENDPOINT"), cfg.Telemetry.Endpoint)
	cfg.Telemetry.Protocol = ParseString(l.mark("FSTDECK_OTEL_PROTOCOL"), cfg.Telemetry.Protocol)
	cfg.Telemetry.Insecure = ParseBool(l.mark("FSTDECK_OTEL_INSECURE"), cfg.Telemetry.Insecure)
	cfg.Telemetry.SampleRatio = ParseFloat(l.mark("FSTDECK_OTEL_SAMPLE_RATIO"), cfg.Telemetry.SampleRatio)
}

// warnUnknownEnv flags FSTDECK_* variables nothing consumed, which usually
// means a typo in a deployment manifest.
func (l *Loader) warnUnknownEnv() {
	logger := log.WithComponent("config")
	for _, kv := range os.Environ() {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "FSTDECK_") {
			continue
		}
		if _, consumed := l.ConsumedEnvKeys[key]; consumed {
			continue
		}
		// Owned by internal/log, read before config loads.
		if key == "FSTDECK_LOG_FORMAT" || key == "FSTDECK_LOG_SERVICE" {
			continue
		}
		logger.Warn().Str("key", key).Msg("unknown FSTDECK_ environment variable")
	}
}
