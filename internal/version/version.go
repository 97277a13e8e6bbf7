// Package version holds build metadata stamped in via -ldflags.
package version

import "fmt"

// Stamped by the release build; the zero values identify dev builds.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the release, commit, and build date on one line, the
// form both binaries print for --version.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
