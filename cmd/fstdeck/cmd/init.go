package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/windtools/fstdeck/internal/deck"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a baseline deck with template values",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "turbine.fst"
	if len(args) == 1 {
		path = args[0]
	}
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return failf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := deck.New().WriteFile(path); err != nil {
		return fail(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
