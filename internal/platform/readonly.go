package platform

import (
	"context"

	"github.com/aretw0/introspection"

	"github.com/aretw0/quire/pkg/core"
)

// readOnlyKV rejects writes for adapters without a native read-only mode.
type readOnlyKV struct {
	core.KV
}

func guard(kv core.KV, readOnly bool) core.KV {
	if !readOnly {
		return kv
	}
	return readOnlyKV{KV: kv}
}

func (readOnlyKV) Set(context.Context, string, string) error { return core.ErrReadOnly }
func (readOnlyKV) Delete(context.Context, string) error      { return core.ErrReadOnly }

func (r readOnlyKV) ComponentType() string {
	if c, ok := r.KV.(introspection.Component); ok {
		return c.ComponentType()
	}
	return "unknown"
}

func (r readOnlyKV) State() any {
	if s, ok := r.KV.(introspection.Introspectable); ok {
		return s.State()
	}
	return nil
}
