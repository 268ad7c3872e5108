// Package main provides the movfx CLI: safe file moves inside a
// monorepo workspace, with import rewriting and a move journal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "movfx",
		Short:         "Move files inside a monorepo and rewrite their importers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		buildMoveCmd(),
		buildCheckCmd(),
		buildHistoryCmd(),
		buildRevertCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
