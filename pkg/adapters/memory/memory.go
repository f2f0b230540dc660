// Package memory provides a map-backed key-value storage.
//
// It is meant for tests and throwaway sessions: nothing survives the process.
// Faults can be injected to exercise the stores' failure paths.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/quire/pkg/core"
)

// KV implements core.KV in memory.
type KV struct {
	mu       sync.RWMutex
	data     map[string]string
	writes   map[string]int
	readErr  error
	writeErr map[string]error
	readOnly bool
}

// New creates an empty KV.
func New() *KV {
	return &KV{
		data:     make(map[string]string),
		writes:   make(map[string]int),
		writeErr: make(map[string]error),
	}
}

// NewReadOnly creates a KV seeded with data that rejects every write.
func NewReadOnly(seed map[string]string) *KV {
	kv := New()
	maps.Copy(kv.data, seed)
	kv.readOnly = true
	return kv
}

func (m *KV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.readErr != nil {
		return "", false, m.readErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *KV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkWrite(key); err != nil {
		return err
	}
	m.data[key] = value
	m.writes[key]++
	return nil
}

func (m *KV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkWrite(key); err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

func (m *KV) checkWrite(key string) error {
	if m.readOnly {
		return core.ErrReadOnly
	}
	if err, ok := m.writeErr[key]; ok {
		return err
	}
	if err, ok := m.writeErr["*"]; ok {
		return err
	}
	return nil
}

// Keys implements core.Lister.
func (m *KV) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.data)), nil
}

// FailReads makes every Get return err. A nil err clears the fault.
func (m *KV) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes writes to key return err; key "*" matches every key.
// A nil err clears the fault.
func (m *KV) FailWrites(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.writeErr, key)
		return
	}
	m.writeErr[key] = err
}

// Writes returns how many successful writes key received.
func (m *KV) Writes(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes[key]
}

// Snapshot returns a copy of the stored data.
func (m *KV) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}

// State implements introspection.Introspectable.
func (m *KV) State() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]any{
		"keys":      len(m.data),
		"read_only": m.readOnly,
	}
}

// ComponentType implements introspection.Component.
func (m *KV) ComponentType() string {
	return "memory"
}

var _ core.KV = (*KV)(nil)
var _ core.Lister = (*KV)(nil)
var _ introspection.Introspectable = (*KV)(nil)
var _ introspection.Component = (*KV)(nil)
