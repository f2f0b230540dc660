package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/core"
)

func newWatchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload and report whenever another process changes the notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := app.Notes.Follow(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "watching %d notes, press Ctrl+C to stop\n", len(app.Notes.Notes()))
			report(cmd.OutOrStdout(), app.Notes, events)
			return nil
		},
	}
}

// report prints one line per change until events is closed.
func report(w io.Writer, s *core.Store, events <-chan core.Event) {
	for e := range events {
		fmt.Fprintf(w, "%s %s %s: %d notes\n",
			time.Unix(e.Timestamp, 0).Format(time.TimeOnly), e.Type, e.Key, len(s.Notes()))
	}
}
