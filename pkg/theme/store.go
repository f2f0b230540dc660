// Package theme holds the user's appearance settings and resolves them into a
// color palette.
package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/quire/pkg/core"
)

// Storage keys, one per setting.
const (
	ThemeKey     = "@notes_app_theme"
	AccentKey    = "@notes_app_accent"
	AutoThemeKey = "@notes_app_auto_theme"
)

// Appearance is the light/dark preference reported by the host system.
type Appearance int

const (
	AppearanceUnknown Appearance = iota
	AppearanceLight
	AppearanceDark
)

// Config holds the configuration of a theme Store.
type Config struct {
	Logger *slog.Logger
	// Appearance reports the system appearance. It is consulted by Current
	// when auto theme is enabled; nil disables following the system.
	Appearance func() Appearance
}

// Store holds the theme id, accent color and auto-theme flag.
// Setters apply in memory first and then persist; a failed write is logged
// and returned but never rolled back.
type Store struct {
	kv         core.KV
	logger     *slog.Logger
	appearance func() Appearance

	loaded atomic.Bool

	writeMu sync.Mutex // serializes set+persist so writes land in call order

	mu      sync.RWMutex
	themeID string
	accent  string
	auto    bool
}

// NewStore creates a Store with default settings.
func NewStore(kv core.KV, config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		kv:         kv,
		logger:     config.Logger,
		appearance: config.Appearance,
		themeID:    DefaultThemeID,
		accent:     DefaultAccentColor,
	}
}

// Load reads the three settings concurrently. Absent keys keep their
// defaults. Ready reports true afterwards whatever the outcome.
func (s *Store) Load(ctx context.Context) error {
	defer s.loaded.Store(true)

	var (
		themeID, accent, auto    string
		hasTheme, hasAcc, hasAut bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		themeID, hasTheme, err = s.kv.Get(gctx, ThemeKey)
		return err
	})
	g.Go(func() error {
		var err error
		accent, hasAcc, err = s.kv.Get(gctx, AccentKey)
		return err
	})
	g.Go(func() error {
		var err error
		auto, hasAut, err = s.kv.Get(gctx, AutoThemeKey)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("error loading theme preferences", "error", err)
		return fmt.Errorf("failed to read theme preferences: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if hasTheme && themeID != "" {
		s.themeID = themeID
	}
	if hasAcc && accent != "" {
		s.accent = accent
	}
	if hasAut {
		var enabled bool
		if err := json.Unmarshal([]byte(auto), &enabled); err != nil {
			s.logger.Warn("ignoring malformed auto theme flag", "key", AutoThemeKey, "value", auto)
			return fmt.Errorf("%w: %s: %v", core.ErrCorruptBlob, AutoThemeKey, err)
		}
		s.auto = enabled
	}

	s.logger.Debug("theme preferences loaded", "theme", s.themeID, "accent", s.accent, "auto", s.auto)
	return nil
}

// Ready reports whether Load has completed.
func (s *Store) Ready() bool {
	return s.loaded.Load()
}

// SetTheme selects the theme. Any id is accepted; unknown ids resolve to the
// default theme.
func (s *Store) SetTheme(ctx context.Context, id string) error {
	return s.set(ctx, ThemeKey, id, func() { s.themeID = id })
}

// SetAccentColor changes the accent color.
func (s *Store) SetAccentColor(ctx context.Context, color string) error {
	return s.set(ctx, AccentKey, color, func() { s.accent = color })
}

// SetAutoTheme enables or disables following the system appearance.
func (s *Store) SetAutoTheme(ctx context.Context, enabled bool) error {
	return s.set(ctx, AutoThemeKey, strconv.FormatBool(enabled), func() { s.auto = enabled })
}

func (s *Store) set(ctx context.Context, key, value string, apply func()) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	apply()
	s.mu.Unlock()

	if err := s.kv.Set(ctx, key, value); err != nil {
		s.logger.Error("error saving theme preference", "key", key, "error", err)
		return errors.Join(core.ErrPersist, fmt.Errorf("%s: %w", key, err))
	}
	return nil
}

// ThemeID returns the selected theme id as stored, which may be unknown.
func (s *Store) ThemeID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.themeID
}

// AccentColor returns the current accent color.
func (s *Store) AccentColor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accent
}

// AutoTheme reports whether the theme follows the system appearance.
func (s *Store) AutoTheme() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auto
}

// Current returns the resolved theme.
//
// With auto theme on and a known system appearance, a light appearance
// selects the light theme and a dark one selects the dark theme (midnight is
// kept if it is the chosen theme).
func (s *Store) Current() Theme {
	s.mu.RLock()
	id, accent, auto := s.themeID, s.accent, s.auto
	s.mu.RUnlock()

	if auto && s.appearance != nil {
		switch s.appearance() {
		case AppearanceLight:
			id = Light
		case AppearanceDark:
			if id != Midnight {
				id = Dark
			}
		}
	}
	return Resolve(id, accent)
}

// Themes returns every known theme built with the current accent color.
func (s *Store) Themes() []Theme {
	return Build(s.AccentColor())
}
