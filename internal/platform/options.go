package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/theme"
)

// Adapter names.
const (
	AdapterFS       = "fs"
	AdapterBadger   = "badger"
	AdapterSQLite   = "sqlite"
	AdapterPostgres = "postgres"
	AdapterMemory   = "memory"
)

// Adapters lists the supported adapter names.
var Adapters = []string{AdapterFS, AdapterBadger, AdapterSQLite, AdapterPostgres, AdapterMemory}

// options holds the internal configuration for a Quire application.
type options struct {
	kv         core.KV
	logger     *slog.Logger
	adapter    string
	dsn        string
	recorder   core.Recorder
	newID      func() string
	clock      func() time.Time
	appearance func() theme.Appearance
	config     map[string]any
}

// Option defines a functional option for configuring Quire.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapter: AdapterFS,
		config:  make(map[string]any),
	}
}

func parse(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger shared by the stores and adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithKV injects a storage, skipping adapter selection.
func WithKV(kv core.KV) Option {
	return func(o *options) {
		o.kv = kv
	}
}

// WithAdapter selects the storage adapter by name. Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithDSN sets the connection string of the sqlite and postgres adapters.
// For sqlite it defaults to a database file in the data directory.
func WithDSN(dsn string) Option {
	return func(o *options) {
		o.dsn = dsn
	}
}

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithMustExist fails instead of creating a missing data directory.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLenient keeps the readable notes of a partially malformed blob.
func WithLenient(lenient bool) Option {
	return func(o *options) {
		o.config["lenient"] = lenient
	}
}

// WithWatchDebounce sets how long file events are coalesced.
func WithWatchDebounce(d time.Duration) Option {
	return func(o *options) {
		o.config["debounce"] = d
	}
}

// WithWatcherErrorHandler receives runtime watcher failures, which are
// otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithGCInterval sets the badger value log collection interval.
func WithGCInterval(d time.Duration) Option {
	return func(o *options) {
		o.config["gc_interval"] = d
	}
}

// WithRecorder receives store activity (see pkg/metrics).
func WithRecorder(r core.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithIDGenerator replaces the note ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithClock replaces the time source of the notes store.
func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		o.clock = fn
	}
}

// WithAppearance reports the system color scheme for the auto theme.
func WithAppearance(fn func() theme.Appearance) Option {
	return func(o *options) {
		o.appearance = fn
	}
}
