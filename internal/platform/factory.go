package platform

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/introspection"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/theme"
)

// App wires the notes and theme stores over one storage.
type App struct {
	Notes *core.Store
	Theme *theme.Store
	KV    core.KV

	closer io.Closer
	logger *slog.Logger
}

// New opens the storage and builds the stores. Nothing is read until Load.
//
//	app, err := platform.New(ctx, "./.quire", platform.WithAdapter("badger"))
func New(ctx context.Context, dir string, opts ...Option) (*App, error) {
	o := parse(opts)
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	kv, closer, err := openKV(ctx, dir, o)
	if err != nil {
		return nil, err
	}

	lenient, _ := o.config["lenient"].(bool)
	notes := core.NewStore(kv, core.StoreConfig{
		Logger:   o.logger.With("component", "notes"),
		Clock:    o.clock,
		NewID:    o.newID,
		Lenient:  lenient,
		Recorder: o.recorder,
	})
	th := theme.NewStore(kv, theme.Config{
		Logger:     o.logger.With("component", "theme"),
		Appearance: o.appearance,
	})

	return &App{Notes: notes, Theme: th, KV: kv, closer: closer, logger: o.logger}, nil
}

// Load reads both stores concurrently. Each store stays usable after a
// failed load (with defaults), so the error is informative rather than fatal.
func (a *App) Load(ctx context.Context) error {
	var g errgroup.Group
	var notesErr, themeErr error
	g.Go(func() error {
		notesErr = a.Notes.Load(ctx)
		return nil
	})
	g.Go(func() error {
		themeErr = a.Theme.Load(ctx)
		return nil
	})
	_ = g.Wait()
	return errors.Join(notesErr, themeErr)
}

// Close releases the storage.
func (a *App) Close() error {
	return a.closer.Close()
}

// States returns the introspection state of every component, keyed by
// component type.
func (a *App) States() map[string]any {
	out := map[string]any{}
	for _, c := range []any{a.Notes, a.Theme, a.KV} {
		comp, ok := c.(introspection.Component)
		if !ok {
			continue
		}
		if s, ok := c.(introspection.Introspectable); ok {
			out[comp.ComponentType()] = s.State()
		} else {
			out[comp.ComponentType()] = nil
		}
	}
	return out
}
