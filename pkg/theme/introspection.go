package theme

import "github.com/aretw0/introspection"

// StoreState exposes internal state for observability.
type StoreState struct {
	Ready     bool   `json:"ready"`
	ThemeID   string `json:"theme_id"`
	Resolved  string `json:"resolved"`
	Accent    string `json:"accent"`
	AutoTheme bool   `json:"auto_theme"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	return StoreState{
		Ready:     s.Ready(),
		ThemeID:   s.ThemeID(),
		Resolved:  s.Current().ID,
		Accent:    s.AccentColor(),
		AutoTheme: s.AutoTheme(),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "theme-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
