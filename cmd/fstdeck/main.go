// fstdeck is the command line front end for OpenFAST primary input decks:
// validation, canonical formatting, field inspection and mutation, and
// batch case generation.
//
// Usage:
//
//	fstdeck validate turbine.fst
//	fstdeck fmt --write turbine.fst
//	fstdeck set turbine.fst TMax=120
//
// Exit codes:
//   - 0: Success
//   - 1: Operation failed (parse error, validation issues, differing decks)
//   - 2: Usage error (unknown command, flag or argument)
package main

import (
	"os"

	"github.com/windtools/fstdeck/cmd/fstdeck/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
