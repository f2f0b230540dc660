package quire

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/theme"
)

// --- Types ---

// App is an opened notes application: notes store, theme store and storage.
type App = platform.App

// Option defines a functional option for configuring Quire.
type Option = platform.Option

// --- Configuration ---

// WithLogger sets the logger for the stores and adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithKV injects a custom storage.
func WithKV(kv core.KV) Option {
	return platform.WithKV(kv)
}

// WithAdapter selects the storage adapter: fs, badger, sqlite, postgres or memory.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithDSN sets the sqlite/postgres connection string.
func WithDSN(dsn string) Option {
	return platform.WithDSN(dsn)
}

// WithReadOnly rejects every write.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithMustExist fails when the data directory is missing.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLenient keeps the readable notes of a partially malformed blob.
func WithLenient(lenient bool) Option {
	return platform.WithLenient(lenient)
}

// WithWatchDebounce sets how long storage change events are coalesced.
func WithWatchDebounce(d time.Duration) Option {
	return platform.WithWatchDebounce(d)
}

// WithWatcherErrorHandler receives runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithGCInterval sets the badger value log collection interval.
func WithGCInterval(d time.Duration) Option {
	return platform.WithGCInterval(d)
}

// WithRecorder receives store activity.
func WithRecorder(r core.Recorder) Option {
	return platform.WithRecorder(r)
}

// WithIDGenerator replaces the note ID generator.
func WithIDGenerator(fn func() string) Option {
	return platform.WithIDGenerator(fn)
}

// WithClock replaces the notes store clock.
func WithClock(fn func() time.Time) Option {
	return platform.WithClock(fn)
}

// WithAppearance reports the system color scheme for the auto theme.
func WithAppearance(fn func() theme.Appearance) Option {
	return platform.WithAppearance(fn)
}

// --- Factory ---

// New opens the storage in dir and builds the stores without loading them.
func New(ctx context.Context, dir string, opts ...Option) (*App, error) {
	return platform.New(ctx, dir, opts...)
}

// Open is New followed by Load. A load error is returned together with a
// usable App, whose stores fell back to their defaults.
func Open(ctx context.Context, dir string, opts ...Option) (*App, error) {
	app, err := platform.New(ctx, dir, opts...)
	if err != nil {
		return nil, err
	}
	return app, app.Load(ctx)
}

// --- Utils ---

// FindRoot looks upwards for a directory holding .quire or quire.yaml.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// DataDir is the storage directory under root.
func DataDir(root string) string {
	return platform.DataDir(root)
}
