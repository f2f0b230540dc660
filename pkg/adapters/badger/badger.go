// Package badger stores keys in an embedded BadgerDB.
//
// Writes of several keys go through a single transaction, so the notes and
// categories blobs are always replaced together.
package badger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/dgraph-io/badger/v4"

	"github.com/aretw0/quire/pkg/core"
)

// Config holds the configuration of a BadgerDB-backed KV.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool

	SyncWrites bool
	ReadOnly   bool
	Logger     *slog.Logger

	// GCInterval is how often the value log is garbage collected.
	// Zero disables collection.
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// DefaultConfig returns the configuration used for on-disk databases.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration for tests. Nothing touches disk.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog to badger's logger. Badger's info chatter is
// demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// KV is a core.KV backed by BadgerDB.
type KV struct {
	db     *badger.DB
	config Config
	logger *slog.Logger

	stopGC    context.CancelFunc
	closeOnce sync.Once

	mu     sync.Mutex
	lastGC *time.Time
}

// Open opens (creating when needed) the database described by config and
// starts the value log collector.
func Open(config Config) (*KV, error) {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !config.InMemory && config.Path == "" {
		return nil, errors.New("path is required for a persistent database")
	}
	if config.GCDiscardRatio < 0 || config.GCDiscardRatio > 1 {
		return nil, fmt.Errorf("gc discard ratio %v is not within [0,1]", config.GCDiscardRatio)
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if !config.ReadOnly {
			if err := os.MkdirAll(config.Path, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", config.Path, err)
			}
		}
		opts = badger.DefaultOptions(config.Path).WithReadOnly(config.ReadOnly)
	}
	opts = opts.
		WithSyncWrites(config.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: config.Logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	kv := &KV{db: db, config: config, logger: config.Logger}
	kv.startGC()
	return kv, nil
}

// Close stops the collector and closes the database.
func (kv *KV) Close() error {
	var err error
	kv.closeOnce.Do(func() {
		if kv.stopGC != nil {
			kv.stopGC()
		}
		err = kv.db.Close()
	})
	return err
}

// Get implements core.KV.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		value string
		found bool
	)
	err := kv.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			value = string(v)
			found = true
			return nil
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, found, nil
}

// Set implements core.KV.
func (kv *KV) Set(ctx context.Context, key, value string) error {
	return kv.SetMany(ctx, map[string]string{key: value})
}

// SetMany implements core.Batcher: all values are committed in one
// transaction or none is.
func (kv *KV) SetMany(ctx context.Context, values map[string]string) error {
	return kv.update(ctx, func(txn *badger.Txn) error {
		for k, v := range values {
			if err := txn.Set([]byte(k), []byte(v)); err != nil {
				return fmt.Errorf("failed to write %s: %w", k, err)
			}
		}
		return nil
	})
}

// Delete implements core.KV.
func (kv *KV) Delete(ctx context.Context, key string) error {
	return kv.update(ctx, func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		return nil
	})
}

func (kv *KV) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if kv.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return kv.db.Update(fn)
}

// Keys lists the stored keys in lexical order.
func (kv *KV) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys := []string{}
	err := kv.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func (kv *KV) startGC() {
	if kv.config.InMemory || kv.config.ReadOnly || kv.config.GCInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	kv.stopGC = cancel

	lifecycle.Go(ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(kv.config.GCInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				kv.collect()
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		kv.logger.Error("badger gc panic", "error", err)
	}))
}

// collect rewrites value log files until badger reports nothing to reclaim.
func (kv *KV) collect() {
	rewritten := 0
	for {
		err := kv.db.RunValueLogGC(kv.config.GCDiscardRatio)
		if err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
				kv.logger.Warn("badger gc failed", "error", err)
			}
			break
		}
		rewritten++
	}
	now := time.Now()
	kv.mu.Lock()
	kv.lastGC = &now
	kv.mu.Unlock()
	kv.logger.Debug("badger gc finished", "rewritten", rewritten)
}

var _ core.KV = (*KV)(nil)
var _ core.Batcher = (*KV)(nil)
var _ core.Lister = (*KV)(nil)
