// Package fs stores keys as files in a directory.
//
// Each key lives in its own file (see EncodeKey), written atomically through a
// temporary file and a rename, so readers in other processes never observe a
// partial value. The directory can be watched for external changes.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/quire/pkg/core"
)

// Config holds the configuration of a directory-backed KV.
type Config struct {
	Logger *slog.Logger

	// ReadOnly rejects writes with core.ErrReadOnly.
	ReadOnly bool

	// MustExist fails New when the directory is missing instead of creating it.
	MustExist bool

	// Debounce coalesces bursts of file events per key. Zero means 50ms.
	Debounce time.Duration

	// ErrorHandler receives watcher errors. Optional.
	ErrorHandler func(error)
}

// KV is a core.KV backed by a directory.
type KV struct {
	Path   string
	config Config
	logger *slog.Logger

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     *time.Time
}

// New opens the directory at path as a KV.
func New(path string, config Config) (*KV, error) {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("%s is not a directory", abs)
	case os.IsNotExist(err):
		if config.MustExist || config.ReadOnly {
			return nil, fmt.Errorf("data directory %s does not exist: %w", abs, err)
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		config.Logger.Debug("created data directory", "path", abs)
	case err != nil:
		return nil, fmt.Errorf("failed to stat %s: %w", abs, err)
	}

	if !config.ReadOnly {
		n, err := sweepTemp(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to clean %s: %w", abs, err)
		}
		if n > 0 {
			config.Logger.Warn("removed interrupted writes", "path", abs, "files", n)
		}
	}

	return &KV{Path: abs, config: config, logger: config.Logger}, nil
}

func (kv *KV) file(key string) string {
	return filepath.Join(kv.Path, EncodeKey(key))
}

// Get implements core.KV.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(kv.file(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements core.KV.
func (kv *KV) Set(ctx context.Context, key, value string) error {
	if kv.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := replaceFile(kv.Path, EncodeKey(key), value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	kv.touch()
	kv.logger.Debug("key written", "key", key, "bytes", len(value))
	return nil
}

// Delete implements core.KV.
func (kv *KV) Delete(ctx context.Context, key string) error {
	if kv.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := removeFile(kv.Path, EncodeKey(key)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	kv.touch()
	return nil
}

// Keys lists the stored keys in lexical order.
func (kv *KV) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(kv.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kv.Path, err)
	}
	keys := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := DecodeKey(e.Name()); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (kv *KV) touch() {
	now := time.Now()
	kv.mu.Lock()
	kv.lastWrite = &now
	kv.mu.Unlock()
}

var _ core.KV = (*KV)(nil)
var _ core.Lister = (*KV)(nil)
var _ core.Watchable = (*KV)(nil)
