package health

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/windtools/fstdeck/internal/config"
	"github.com/windtools/fstdeck/internal/log"
	"github.com/windtools/fstdeck/internal/store"
)

// startupCheck pairs a label for error wrapping with the probe to run.
type startupCheck struct {
	label string
	run   func(zerolog.Logger) error
}

// PerformStartupChecks validates the environment right before the daemon
// starts serving. Config validation has already run; these guard against
// the filesystem shifting between load and start.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("Running pre-flight startup checks...")

	checks := []startupCheck{
		{"data directory", func(l zerolog.Logger) error { return checkDataDir(l, cfg.DataDir) }},
		{"listen address", func(l zerolog.Logger) error { return checkListenAddr(l, cfg.Listen) }},
		{"report archive", func(l zerolog.Logger) error { return checkArchive(l, cfg.Store.Path) }},
		{"watch directory", func(l zerolog.Logger) error { return checkWatchDirs(l, cfg.Watch.Dirs) }},
	}
	for _, c := range checks {
		if err := c.run(logger); err != nil {
			return fmt.Errorf("%s check failed: %w", c.label, err)
		}
	}

	logger.Info().Msg("✅ All startup checks passed")
	return nil
}

// checkDataDir proves the data directory exists and takes writes before
// anything opens the archive inside it.
func checkDataDir(logger zerolog.Logger, path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("directory does not exist: %s", path)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("path is not a directory: %s", path)
	}

	probe, err := os.CreateTemp(path, ".startup-probe-*")
	if err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", path, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	logger.Info().Str("path", path).Msg("✓ Data directory writable")
	return nil
}

func checkListenAddr(logger zerolog.Logger, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid listen port %q in %q", port, addr)
	}

	logger.Info().Str("addr", addr).Msg("✓ Listen address valid")
	return nil
}

// checkArchive runs a quick integrity check on an existing archive so a
// corrupted database fails the boot instead of the first write.
func checkArchive(logger zerolog.Logger, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Info().Str("path", path).Msg("✓ Report archive will be created on first write")
		return nil
	}

	diags, err := store.VerifyIntegrity(path, "quick")
	if err != nil {
		return fmt.Errorf("could not verify %s: %w", path, err)
	}
	if diags != nil {
		return fmt.Errorf("archive %s is corrupt: %v", path, diags)
	}

	logger.Info().Str("path", path).Msg("✓ Report archive passed quick_check")
	return nil
}

func checkWatchDirs(logger zerolog.Logger, dirs []string) error {
	if len(dirs) == 0 {
		return nil
	}

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("watch path is not a directory: %s", dir)
		}
	}

	logger.Info().Int("count", len(dirs)).Msg("✓ Watch directories validated")
	return nil
}
