package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	dir      string
	adapter  string
	dsn      string
	verbose  bool
	lenient  bool
	readOnly bool

	level  *slog.LevelVar
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{level: new(slog.LevelVar)}

	cmd := &cobra.Command{
		Use:   "quire",
		Short: "A small notes keeper with categories, tags and themes",
		Long: `Quire keeps notes in a local data directory (or a SQL database).
Notes carry a category and free-form tags, can be pinned, and are searched
by title, content and tags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.verbose {
				g.level.Set(slog.LevelDebug)
			}
			opts := &slog.HandlerOptions{Level: g.level}
			g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
			slog.SetDefault(g.logger)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.dir, "dir", "", "Root directory (default: nearest parent with .quire or quire.yaml, else $HOME)")
	flags.StringVar(&g.adapter, "adapter", "", "Storage adapter: fs, badger, sqlite, postgres, memory (default from quire.yaml)")
	flags.StringVar(&g.dsn, "dsn", "", "Connection string for the sqlite and postgres adapters")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&g.lenient, "lenient", false, "Keep readable notes when the stored blob is partially malformed")
	flags.BoolVar(&g.readOnly, "read-only", false, "Open the storage read-only")

	cmd.AddCommand(
		newInitCmd(g),
		newAddCmd(g),
		newEditCmd(g),
		newRmCmd(g),
		newPinCmd(g),
		newListCmd(g),
		newSearchCmd(g),
		newCategoriesCmd(g),
		newTagsCmd(g),
		newThemeCmd(g),
		newWatchCmd(g),
		newStatusCmd(g),
		newVersionCmd(),
	)
	return cmd
}
