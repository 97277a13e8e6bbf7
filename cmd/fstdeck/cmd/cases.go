package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/windtools/fstdeck/internal/cases"
)

var (
	casesOutDir   string
	casesParallel int
)

var casesCmd = &cobra.Command{
	Use:   "cases <base.fst> <matrix.yaml>",
	Short: "Generate variant decks from a case matrix",
	Long: `cases expands a base deck into one deck per matrix case. Each case's
overrides are applied on top of the matrix defaults, the result is
validated, and conforming decks are written as <base>_<case>.fst. Cases
with validation errors are reported and skipped; the exit code is 1 when
any case fails.`,
	Args: cobra.ExactArgs(2),
	RunE: runCases,
}

func init() {
	casesCmd.Flags().StringVar(&casesOutDir, "out-dir", "", "output directory (defaults to the base deck's directory)")
	casesCmd.Flags().IntVar(&casesParallel, "parallel", 0, "max concurrent cases (0 uses the default)")
}

func runCases(cmd *cobra.Command, args []string) error {
	m, err := cases.LoadMatrix(args[1])
	if err != nil {
		return fail(err)
	}
	results, err := cases.Generate(cmd.Context(), args[0], m, cases.Options{
		OutDir:   casesOutDir,
		Parallel: casesParallel,
	})
	if err != nil {
		return fail(err)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", res.Case, res.Err)
			continue
		}
		fmt.Fprintf(out, "✓ %s: %s\n", res.Case, res.Path)
	}
	fmt.Fprintf(out, "%d generated, %d failed\n", len(results)-failed, failed)

	if failed > 0 {
		return silentExit(1)
	}
	return nil
}
