package badger

import (
	"context"
	"time"

	"github.com/aretw0/introspection"
)

// KVState exposes internal state for observability.
type KVState struct {
	Path     string     `json:"path,omitempty"`
	InMemory bool       `json:"in_memory"`
	ReadOnly bool       `json:"read_only"`
	Keys     []string   `json:"keys"`
	LSMSize  int64      `json:"lsm_size"`
	VLogSize int64      `json:"vlog_size"`
	LastGC   *time.Time `json:"last_gc,omitempty"`
}

// State implements introspection.Introspectable.
func (kv *KV) State() any {
	keys, err := kv.Keys(context.Background())
	if err != nil {
		kv.logger.Debug("failed to list keys for state", "error", err)
	}
	lsm, vlog := kv.db.Size()

	kv.mu.Lock()
	defer kv.mu.Unlock()
	return KVState{
		Path:     kv.config.Path,
		InMemory: kv.config.InMemory,
		ReadOnly: kv.config.ReadOnly,
		Keys:     keys,
		LSMSize:  lsm,
		VLogSize: vlog,
		LastGC:   kv.lastGC,
	}
}

// ComponentType implements introspection.Component.
func (kv *KV) ComponentType() string {
	return "badger"
}

var _ introspection.Introspectable = (*KV)(nil)
var _ introspection.Component = (*KV)(nil)
