package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/windtools/fstdeck/internal/deck"
)

var diffFormat string

var diffCmd = &cobra.Command{
	Use:   "diff <a.fst> <b.fst>",
	Short: "Compare two decks field by field",
	Long: `diff parses both decks and reports every field whose typed value
differs. Formatting differences that do not change a value are ignored.
The exit code is 1 when the decks differ and 0 when they match.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffFormat, "format", "text", "output format (text, json)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	if err := checkFormat(diffFormat); err != nil {
		return err
	}
	a, err := deck.ParseFile(args[0])
	if err != nil {
		return failf("%s: %w", args[0], err)
	}
	b, err := deck.ParseFile(args[1])
	if err != nil {
		return failf("%s: %w", args[1], err)
	}

	diffs := deck.Diff(a, b)
	if diffFormat == "json" {
		if diffs == nil {
			diffs = []deck.FieldDiff{}
		}
		if err := writeJSON(cmd, diffs); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		for _, d := range diffs {
			fmt.Fprintf(out, "%-16s %s -> %s\n", d.Field, d.Old, d.New)
		}
	}

	if len(diffs) > 0 {
		return silentExit(1)
	}
	return nil
}
