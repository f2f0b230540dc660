package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/quire/pkg/adapters/badger"
	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/adapters/sqlkv"
	"github.com/aretw0/quire/pkg/core"
)

// SQLiteFile is the database file name used when no sqlite DSN is given.
const SQLiteFile = "quire.db"

// BadgerDir is the badger directory inside the data directory.
const BadgerDir = "badger"

// ErrUnknownAdapter is returned for adapter names outside Adapters.
var ErrUnknownAdapter = errors.New("unknown adapter")

// OpenKV opens the storage selected by the options.
// The dir argument is the data directory used by the fs, badger and sqlite
// adapters. The returned closer releases the storage and is never nil.
func OpenKV(ctx context.Context, dir string, opts ...Option) (core.KV, io.Closer, error) {
	return openKV(ctx, dir, parse(opts))
}

func openKV(ctx context.Context, dir string, o *options) (core.KV, io.Closer, error) {
	if o.kv != nil {
		return o.kv, nopCloser{}, nil
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	readOnly, _ := o.config["read_only"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)

	switch o.adapter {
	case AdapterFS:
		debounce, _ := o.config["debounce"].(time.Duration)
		errorHandler, _ := o.config["watcher_error_handler"].(func(error))
		kv, err := fs.New(dir, fs.Config{
			Logger:       logger.With("adapter", AdapterFS),
			ReadOnly:     readOnly,
			MustExist:    mustExist,
			Debounce:     debounce,
			ErrorHandler: errorHandler,
		})
		if err != nil {
			return nil, nil, err
		}
		return kv, nopCloser{}, nil

	case AdapterBadger:
		cfg := badger.DefaultConfig(filepath.Join(dir, BadgerDir))
		cfg.ReadOnly = readOnly
		cfg.Logger = logger.With("adapter", AdapterBadger)
		if d, ok := o.config["gc_interval"].(time.Duration); ok {
			cfg.GCInterval = d
		}
		kv, err := badger.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv, nil

	case AdapterSQLite, AdapterPostgres:
		cfg := sqlkv.Config{Driver: sqlkv.SQLite, DSN: o.dsn, Logger: logger.With("adapter", o.adapter)}
		if o.adapter == AdapterPostgres {
			cfg.Driver = sqlkv.Postgres
			if o.dsn == "" {
				return nil, nil, errors.New("postgres adapter requires a dsn")
			}
		} else if cfg.DSN == "" {
			if !readOnly && !mustExist {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
				}
			}
			cfg.DSN = filepath.Join(dir, SQLiteFile)
		}
		kv, err := sqlkv.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return guard(kv, readOnly), kv, nil

	case AdapterMemory:
		return guard(memory.New(), readOnly), nopCloser{}, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, o.adapter)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
