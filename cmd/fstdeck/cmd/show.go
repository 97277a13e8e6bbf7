package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/windtools/fstdeck/internal/deck"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <deck.fst> [field...]",
	Short: "Print field values from a deck",
	Long: `show prints field values as they appear in the deck. With no field
arguments every field is listed in schema order; otherwise only the named
fields are printed, in the order given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "text", "output format (text, json)")
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := checkFormat(showFormat); err != nil {
		return err
	}
	doc, err := deck.ParseFile(args[0])
	if err != nil {
		return fail(err)
	}

	fields := doc.Fields()
	if len(args) > 1 {
		picked := make([]*deck.Field, 0, len(args)-1)
		for _, name := range args[1:] {
			f, ok := doc.Field(name)
			if !ok {
				return failf("unknown field %q", name)
			}
			picked = append(picked, f)
		}
		fields = picked
	}

	if showFormat == "json" {
		values := make(map[string]string, len(fields))
		for _, f := range fields {
			values[f.Name] = f.Value.Raw()
		}
		return writeJSON(cmd, values)
	}
	out := cmd.OutOrStdout()
	for _, f := range fields {
		fmt.Fprintf(out, "%-16s %s\n", f.Name, f.Value.Raw())
	}
	return nil
}
