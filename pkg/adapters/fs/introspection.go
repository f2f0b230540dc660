package fs

import (
	"context"
	"time"

	"github.com/aretw0/introspection"
)

// KVState exposes internal state for observability.
type KVState struct {
	Path          string     `json:"path"`
	ReadOnly      bool       `json:"read_only"`
	Keys          []string   `json:"keys"`
	WatcherActive bool       `json:"watcher_active"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
}

// State implements introspection.Introspectable.
func (kv *KV) State() any {
	keys, err := kv.Keys(context.Background())
	if err != nil {
		kv.logger.Debug("failed to list keys for state", "error", err)
	}

	kv.mu.RLock()
	defer kv.mu.RUnlock()
	return KVState{
		Path:          kv.Path,
		ReadOnly:      kv.config.ReadOnly,
		Keys:          keys,
		WatcherActive: kv.watcherActive,
		LastWrite:     kv.lastWrite,
	}
}

// ComponentType implements introspection.Component.
func (kv *KV) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*KV)(nil)
var _ introspection.Component = (*KV)(nil)
