package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/windtools/fstdeck/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fstdeck version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "fstdeck "+version.String())
	},
}
