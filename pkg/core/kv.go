package core

import "context"

// KV is the persistent key-value capability consumed by the stores.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored at key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Batcher is implemented by storages able to write several keys atomically.
type Batcher interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// Lister is implemented by storages that can enumerate their keys.
type Lister interface {
	// Keys returns every stored key in lexical order.
	Keys(ctx context.Context) ([]string, error)
}

// Watchable is implemented by storages that can report external changes.
// The pattern is matched against keys (doublestar syntax).
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
