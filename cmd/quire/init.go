package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/config"
)

func newInitCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a quire root (quire.yaml and .quire/) in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := g.dir
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				root = wd
			}

			cfg := config.Default()
			if cmd.Flags().Changed("adapter") {
				cfg.Adapter = g.adapter
			}
			if cmd.Flags().Changed("dsn") {
				cfg.DSN = g.dsn
			}
			if _, err := os.Stat(config.Path(root)); err == nil {
				return fmt.Errorf("%s already exists", config.Path(root))
			}
			if err := config.Save(root, cfg); err != nil {
				return err
			}
			if err := os.MkdirAll(quire.DataDir(root), 0o755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized quire root in %s (adapter %s)\n", root, cfg.Adapter)
			return nil
		},
	}
}
