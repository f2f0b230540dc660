package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Loading       bool           `json:"loading"`
	Notes         int            `json:"notes"`
	Pinned        int            `json:"pinned"`
	Categories    map[string]int `json:"categories"`
	Uncategorized int            `json:"uncategorized"`
	StorageType   string         `json:"storage_type"`
	Lenient       bool           `json:"lenient"`
	LastLoad      *time.Time     `json:"last_load,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storageType := "unknown"
	if comp, ok := s.kv.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}

	state := StoreState{
		Loading:     s.loading.Load(),
		Notes:       len(s.notes),
		Categories:  make(map[string]int, len(s.categories)),
		StorageType: storageType,
		Lenient:     s.config.Lenient,
		LastLoad:    s.lastLoad,
	}

	attributed := 0
	for _, c := range s.categories {
		state.Categories[c.Name] = c.NoteCount
		attributed += c.NoteCount
	}
	state.Uncategorized = len(s.notes) - attributed

	for _, n := range s.notes {
		if n.IsPinned {
			state.Pinned++
		}
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "notes-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
