package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand that touches a workspace.
type globalFlags struct {
	workspace string
	jsonOut   bool
	verbose   bool
}

func (g *globalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&g.workspace, "workspace", "w", "",
		"Workspace root (discovered from the current directory if omitted)")
	cmd.Flags().BoolVar(&g.jsonOut, "json", false,
		"Emit machine-readable JSON on stdout")
	cmd.Flags().BoolVarP(&g.verbose, "verbose", "v", false,
		"Enable debug logging")
}

func buildMoveCmd() *cobra.Command {
	var (
		g       globalFlags
		dryRun  bool
		include []string
		exclude []string
	)

	cmd := &cobra.Command{
		Use:   "move SOURCE DESTINATION",
		Short: "Move a file and rewrite every import that references it",
		Long: `Move a workspace-relative file to a new location.

Both paths are sanitized before anything happens: separators are
normalized, an absolute-looking path is treated as workspace-relative,
and any ".." segment aborts the operation. After the move, importers
across the workspace are rewritten to the new location and the moved
file's own relative imports are rebased.`,
		Example: `  # Move a file between projects
  movfx move packages/lib1/src/file.ts packages/lib2/src/file.ts

  # Preview without writing
  movfx move --dry-run packages/lib1/src/file.ts packages/lib2/src/file.ts`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(cmd.Context(), g, args[0], args[1], dryRun, include, exclude)
		},
	}

	g.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().StringArrayVar(&include, "include", []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx"},
		"Glob of files to consider for rewriting (repeatable)")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "Glob of files to skip (repeatable)")

	return cmd
}

func buildCheckCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   "check PATH...",
		Short: "Sanitize paths and report which project owns them",
		Long: `Run one or more paths through the workspace sanitizer without
performing any operation. Exits non-zero if any path is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(g, args)
		},
	}

	g.register(cmd)
	return cmd
}

func buildHistoryCmd() *cobra.Command {
	var (
		g     globalFlags
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded move operations for this workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(g, limit)
		},
	}

	g.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to show (default from config)")
	return cmd
}

func buildRevertCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   "revert OPERATION_ID",
		Short: "Undo a recorded move by moving the file back",
		Long: `Revert a previously applied move. The current content of the moved
file must still match the digest recorded at move time; otherwise the
revert is refused rather than guessed at.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevert(cmd.Context(), g, args[0])
		},
	}

	g.register(cmd)
	return cmd
}
