package cmd

import (
	"github.com/spf13/cobra"

	"github.com/windtools/fstdeck/internal/deck"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <deck.fst>",
	Short: "Rewrite a deck in canonical column layout",
	Long: `fmt parses a deck and emits it in canonical layout: values padded to
column 14, names to column 16, sections and fields in schema order.
Without --write the result goes to stdout and the file is untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtWrite, "write", false, "rewrite the file in place instead of printing")
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := args[0]
	doc, err := deck.ParseFile(path)
	if err != nil {
		return fail(err)
	}
	if fmtWrite {
		if err := doc.WriteFile(path); err != nil {
			return fail(err)
		}
		return nil
	}
	if _, err := cmd.OutOrStdout().Write(doc.Bytes()); err != nil {
		return fail(err)
	}
	return nil
}
