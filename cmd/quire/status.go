package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/metrics"
)

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the internal state of the stores and the storage as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := g.settings(cmd)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			rec, err := metrics.New(reg)
			if err != nil {
				return err
			}
			app, err := g.open(cmd, quire.WithRecorder(rec))
			if err != nil {
				return err
			}
			defer app.Close()

			snapshot, err := metrics.Snapshot(reg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"root":       root,
				"adapter":    cfg.Adapter,
				"components": app.States(),
				"metrics":    snapshot,
			})
		},
	}
}
