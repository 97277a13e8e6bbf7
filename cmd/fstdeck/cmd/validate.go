package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/windtools/fstdeck/internal/deck"
)

var (
	validateFormat string
	validateStrict bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <deck.fst>",
	Short: "Check a deck against the schema and report every issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "output format (text, json)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "treat informational issues as failures")
}

// validateReport is the JSON shape of a completed validation run.
type validateReport struct {
	File      string       `json:"file"`
	Valid     bool         `json:"valid"`
	Issues    []deck.Issue `json:"issues"`
	CheckedAt time.Time    `json:"checkedAt"`
}

// parseReport is the JSON shape when the deck does not parse at all.
type parseReport struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Line  int    `json:"line,omitempty"`
	Field string `json:"field,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := checkFormat(validateFormat); err != nil {
		return err
	}
	path := args[0]

	doc, err := deck.ParseFile(path)
	if err != nil {
		var perr *deck.ParseError
		if !errors.As(err, &perr) {
			return fail(err)
		}
		if validateFormat == "json" {
			if jerr := writeJSON(cmd, parseReport{
				File:  path,
				Error: perr.Error(),
				Kind:  perr.Kind.String(),
				Line:  perr.Line,
				Field: perr.Field,
			}); jerr != nil {
				return jerr
			}
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Parse error in %s:\n  %v\n", path, perr)
		}
		return silentExit(1)
	}

	issues := deck.Validate(doc)
	failed := len(deck.Errors(issues)) > 0 || (validateStrict && len(issues) > 0)

	if validateFormat == "json" {
		if issues == nil {
			issues = []deck.Issue{}
		}
		if err := writeJSON(cmd, validateReport{
			File:      path,
			Valid:     !failed,
			Issues:    issues,
			CheckedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
	} else {
		printVerdict(cmd.OutOrStdout(), path, issues, failed)
	}

	if failed {
		return silentExit(1)
	}
	return nil
}

func printVerdict(out io.Writer, path string, issues []deck.Issue, failed bool) {
	errs := len(deck.Errors(issues))
	infos := len(issues) - errs
	switch {
	case failed:
		fmt.Fprintf(out, "✗ %s: %s\n", path, issueCounts(errs, infos))
	case len(issues) > 0:
		fmt.Fprintf(out, "✓ %s is valid (%s)\n", path, issueCounts(errs, infos))
	default:
		fmt.Fprintf(out, "✓ %s is valid\n", path)
	}
	for _, is := range issues {
		fmt.Fprintf(out, "  [%s] %s: %s\n", is.Severity, is.Field, is.Message)
	}
}

func issueCounts(errs, infos int) string {
	switch {
	case errs > 0 && infos > 0:
		return fmt.Sprintf("%s, %s", plural(errs, "error"), plural(infos, "informational issue"))
	case errs > 0:
		return plural(errs, "error")
	default:
		return plural(infos, "informational issue")
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
