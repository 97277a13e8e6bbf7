// configgen emits an example fstdeck configuration file populated with the
// built-in defaults. Loading the generated file unchanged yields the same
// configuration as running without one, so it is a safe starting point.
//
// Usage:
//
//	configgen                  # write to stdout
//	configgen -o config.yaml   # write to a file
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/windtools/fstdeck/internal/config"
)

const header = `# fstdeck daemon configuration.
# Precedence: FSTDECK_* environment variables > this file > built-in defaults.
# Durations use Go syntax ("30s", "15m"). All keys are optional.
`

func main() {
	out := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	body, err := yaml.Marshal(config.ExampleFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
		os.Exit(1)
	}
	data := append([]byte(header), body...)

	if *out == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}
