package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for the process-wide logger.
type Config struct {
	Level   string    // level name; falls back to FSTDECK_LOG_LEVEL, then info
	Output  io.Writer // destination; defaults to os.Stderr
	Console bool      // human-readable console output instead of JSON
	Service string    // service field on every entry; defaults to "fstdeck"
}

var (
	once sync.Once
	base zerolog.Logger
)

// parseLevel resolves the first parseable level name, defaulting to info.
func parseLevel(names ...string) zerolog.Level {
	for _, name := range names {
		if name == "" {
			continue
		}
		if lvl, err := zerolog.ParseLevel(name); err == nil {
			return lvl
		}
	}
	return zerolog.InfoLevel
}

func resolveWriter(cfg Config) io.Writer {
	w := cfg.Output
	if w == nil {
		// stdout stays reserved for command output (show, diff, fmt).
		w = os.Stderr
	}
	if cfg.Console || os.Getenv("FSTDECK_LOG_FORMAT") == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return w
}

func resolveService(name string) string {
	if name != "" {
		return name
	}
	if env := os.Getenv("FSTDECK_LOG_SERVICE"); env != "" {
		return env
	}
	return "fstdeck"
}

// Configure initialises the process-wide zerolog logger exactly once.
// Binaries call it first thing in main; libraries can rely on a ready
// logger without it.
func Configure(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level, os.Getenv("FSTDECK_LOG_LEVEL")))
		zerolog.TimeFieldFormat = time.RFC3339

		base = zerolog.New(resolveWriter(cfg)).With().
			Timestamp().
			Str("service", resolveService(cfg.Service)).
			Logger()
	})
}

func logger() zerolog.Logger {
	Configure(Config{})
	return base
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	return logger()
}

// SetLevel adjusts the global level after configuration, for binaries
// that only learn the level once their config is loaded. Unknown names
// are ignored.
func SetLevel(level string) {
	if level == "" {
		return
	}
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return logger().With().Str(FieldComponent, component).Logger()
}

// Derive attaches arbitrary fields to a child logger via the builder.
func Derive(build func(*zerolog.Context)) zerolog.Logger {
	ctx := logger().With()
	if build != nil {
		build(&ctx)
	}
	return ctx.Logger()
}
