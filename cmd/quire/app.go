package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/config"
	"github.com/aretw0/quire/internal/platform"
)

// resolveRoot returns --dir, or the root found from the working directory.
func (g *globals) resolveRoot() (string, error) {
	if g.dir != "" {
		return g.dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return platform.ResolveRoot(wd)
}

// settings merges quire.yaml with the flags the user set.
func (g *globals) settings(cmd *cobra.Command) (root string, cfg config.Config, err error) {
	root, err = g.resolveRoot()
	if err != nil {
		return "", config.Config{}, err
	}
	if g.readOnly {
		cfg, err = config.Read(root)
	} else {
		var created bool
		cfg, created, err = config.Load(root)
		if created {
			g.logger.Info("first run, wrote default configuration", "path", config.Path(root))
		}
	}
	if err != nil {
		return "", config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter = g.adapter
	}
	if flags.Changed("dsn") {
		cfg.DSN = g.dsn
	}
	if flags.Changed("lenient") {
		cfg.Lenient = g.lenient
	}
	if !g.verbose {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
			g.level.Set(level)
		}
	}
	return root, cfg, cfg.Validate()
}

// open opens and loads the application. Load failures are logged: the
// stores fall back to their defaults and the command carries on.
func (g *globals) open(cmd *cobra.Command, extra ...quire.Option) (*quire.App, error) {
	root, cfg, err := g.settings(cmd)
	if err != nil {
		return nil, err
	}

	opts := append([]quire.Option{
		quire.WithLogger(g.logger),
		quire.WithAdapter(cfg.Adapter),
		quire.WithDSN(cfg.DSN),
		quire.WithLenient(cfg.Lenient),
		quire.WithReadOnly(g.readOnly),
		quire.WithWatchDebounce(cfg.Watch.Debounce),
		quire.WithGCInterval(cfg.Badger.GCInterval),
	}, extra...)
	app, err := quire.Open(cmd.Context(), quire.DataDir(root), opts...)
	if app == nil {
		return nil, err
	}
	if err != nil {
		g.logger.Warn("storage could not be fully loaded, using defaults", "error", err)
	}
	g.logger.Debug("opened", "root", root, "adapter", cfg.Adapter)
	return app, nil
}
