package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/windtools/fstdeck/internal/log"
)

// parseEnv reads key and converts it with parse. Unset or empty variables
// fall back silently; values parse rejects fall back with a warning, so a
// typo in a unit suffix never silently changes a limit.
func parseEnv[T any](key string, defaultValue T, kind string, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	parsed, err := parse(v)
	if err != nil {
		log.WithComponent("config").Warn().
			Str("key", key).
			Str("value", v).
			Str("want", kind).
			Msg("invalid environment value, using default")
		return defaultValue
	}
	return parsed
}

// ParseString reads a string from the environment. Unset or empty
// variables yield the default.
func ParseString(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

// ParseInt reads an integer, falling back to the default on parse errors.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, "integer", strconv.Atoi)
}

// ParseInt64 reads an int64, falling back to the default on parse errors.
func ParseInt64(key string, defaultValue int64) int64 {
	return parseEnv(key, defaultValue, "integer", func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// ParseDuration reads a Go duration such as "5s" or "2m30s".
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, "duration", time.ParseDuration)
}

// ParseBool reads a boolean. On top of the strconv spellings (true/false,
// 1/0, t/f) it accepts yes/no in any case.
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, "boolean", func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "yes":
			return true, nil
		case "no":
			return false, nil
		}
		return strconv.ParseBool(s)
	})
}

// ParseFloat reads a float64, falling back to the default on parse errors.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseStringList reads a comma-separated list. Entries are trimmed,
// empties skipped, duplicates dropped in first-seen order.
func ParseStringList(key string, defaultValue []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return defaultValue
	}

	var out []string
	seen := map[string]struct{}{}
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
