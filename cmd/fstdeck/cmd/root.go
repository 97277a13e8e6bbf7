// Package cmd wires the fstdeck subcommands.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/windtools/fstdeck/internal/log"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "fstdeck",
	Short: "Work with OpenFAST primary input (.fst) decks",
	Long: `fstdeck parses, validates, formats and rewrites OpenFAST primary input
decks, and expands case matrices into batches of variant decks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		log.Configure(log.Config{Level: logLevel, Console: true})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(validateCmd, fmtCmd, showCmd, setCmd, diffCmd, initCmd, casesCmd, versionCmd)
}

// exitError carries a process exit code through cobra's error return. A nil
// wrapped error means the command already reported the outcome itself.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

// fail marks an operational failure: reported on stderr, exit code 1.
func fail(err error) error { return &exitError{code: 1, err: err} }

func failf(format string, args ...any) error {
	return &exitError{code: 1, err: fmt.Errorf(format, args...)}
}

// silentExit sets the exit code without reporting anything further.
func silentExit(code int) error { return &exitError{code: code} }

func checkFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fail(err)
	}
	return nil
}

// Execute runs the root command and returns the process exit code: 0 on
// success, 1 for operational failures, 2 for usage errors.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var coded *exitError
		if errors.As(err, &coded) {
			if coded.err != nil {
				fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", coded.err)
			}
			return coded.code
		}
		// Anything uncoded comes from cobra or argument checking:
		// unknown commands, flags or bad arity.
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return 2
	}
	return 0
}
