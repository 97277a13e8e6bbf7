// fstdeckd is the fstdeck validation daemon. It serves the HTTP validation
// API, watches configured deck directories for changes, and archives every
// validation report.
//
// Usage:
//
//	fstdeckd --config /etc/fstdeck/config.yaml
//	fstdeckd --version
//
// Configuration precedence is ENV > file > defaults; see internal/config.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/windtools/fstdeck/internal/daemon"
	"github.com/windtools/fstdeck/internal/log"
	"github.com/windtools/fstdeck/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println("fstdeckd " + version.String())
		os.Exit(0)
	}

	ctx := daemon.WaitForShutdown()

	cfg := daemon.DefaultConfig()
	cfg.Version = version.Version
	cfg.ConfigPath = *configPath

	d, err := daemon.New(ctx, cfg)
	if err != nil {
		// The logger may not be fully configured yet, so report on both.
		log.WithComponent("daemon").Error().Err(err).Str("event", "daemon.bootstrap_failed").Msg("bootstrap failed")
		fmt.Fprintf(os.Stderr, "fstdeckd: %v\n", err)
		os.Exit(1)
	}

	if err := d.Start(ctx); err != nil {
		log.WithComponent("daemon").Error().Err(err).Str("event", "daemon.failed").Msg("daemon exited with error")
		os.Exit(1)
	}
}
