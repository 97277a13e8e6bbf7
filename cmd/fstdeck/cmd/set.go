package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/windtools/fstdeck/internal/deck"
)

var setCmd = &cobra.Command{
	Use:   "set <deck.fst> <Name=value>...",
	Short: "Set field values and rewrite the deck in place",
	Long: `set parses the deck, applies each Name=value assignment with the
field's declared type, and rewrites the file atomically. Assignments that
leave the deck with validation errors are still written, but each finding
is reported on stderr.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	path := args[0]
	doc, err := deck.ParseFile(path)
	if err != nil {
		return fail(err)
	}

	for _, arg := range args[1:] {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return fmt.Errorf("argument %q is not of the form Name=value", arg)
		}
		if err := doc.Set(name, value); err != nil {
			return fail(err)
		}
	}

	for _, is := range deck.Validate(doc) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: [%s] %s: %s\n", is.Severity, is.Field, is.Message)
	}

	if err := doc.WriteFile(path); err != nil {
		return fail(err)
	}
	return nil
}
