package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Recorder receives store activity for metrics.
type Recorder interface {
	RecordOperation(op string, err error)
	RecordNoteCount(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, error) {}
func (nopRecorder) RecordNoteCount(int)           {}

// StoreConfig holds the configuration of a notes Store.
type StoreConfig struct {
	Logger   *slog.Logger
	Clock    func() time.Time
	NewID    func() string
	Lenient  bool // drop malformed note records instead of the whole blob
	Recorder Recorder
}

// Store owns the note and category collections and keeps them durable.
//
// Mutations are serialized by a single lock held across
// compute -> persist -> apply. Reads return copies.
type Store struct {
	kv     KV
	config StoreConfig
	logger *slog.Logger

	loading atomic.Bool

	mu         sync.RWMutex
	notes      []Note
	categories []Category
	lastLoad   *time.Time
}

// NewStore creates a Store over kv. The store reports Loading until Load
// completes.
func NewStore(kv KV, config StoreConfig) *Store {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Clock == nil {
		config.Clock = func() time.Time { return time.Now().UTC() }
	}
	if config.NewID == nil {
		config.NewID = UUIDs()
	}
	if config.Recorder == nil {
		config.Recorder = nopRecorder{}
	}

	s := &Store{
		kv:         kv,
		config:     config,
		logger:     config.Logger,
		notes:      []Note{},
		categories: []Category{},
	}
	s.loading.Store(true)
	return s
}

// Load reads both collections from storage.
//
// The notes and categories keys are read concurrently. A malformed notes blob
// leaves the store without notes (or, in lenient mode, without the malformed
// records). Missing categories are replaced by the defaults, which are
// persisted. Loading is cleared whatever the outcome and never set again, so
// reloads triggered by Follow keep serving the previous data until they
// finish. The returned error describes everything that went wrong.
func (s *Store) Load(ctx context.Context) error {
	defer s.loading.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		notesBlob, catBlob string
		hasNotes, hasCats  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		notesBlob, hasNotes, err = s.kv.Get(gctx, NotesKey)
		return err
	})
	g.Go(func() error {
		var err error
		catBlob, hasCats, err = s.kv.Get(gctx, CategoriesKey)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("error loading data", "error", err)
		s.notes = []Note{}
		s.categories = DefaultCategories()
		s.config.Recorder.RecordOperation("load", err)
		return fmt.Errorf("failed to read storage: %w", err)
	}

	var errs []error

	notes := []Note{}
	if hasNotes {
		decoded, dropped, err := DecodeNotes(notesBlob, s.config.Lenient)
		switch {
		case err != nil:
			s.logger.Error("discarding notes blob", "key", NotesKey, "error", err)
			errs = append(errs, err)
		case dropped > 0:
			s.logger.Warn("dropped malformed note records", "key", NotesKey, "dropped", dropped)
			notes = decoded
		default:
			notes = decoded
		}
	}

	var categories []Category
	if hasCats {
		decoded, err := DecodeCategories(catBlob)
		if err != nil {
			s.logger.Error("falling back to default categories", "key", CategoriesKey, "error", err)
			errs = append(errs, err)
			categories = DefaultCategories()
		} else {
			categories = decoded
		}
	} else {
		categories = DefaultCategories()
		if err := s.writeCategories(ctx, categories); err != nil {
			errs = append(errs, err)
		}
	}

	s.notes = notes
	s.categories = RecountCategories(categories, notes)
	now := s.config.Clock()
	s.lastLoad = &now

	err := errors.Join(errs...)
	s.config.Recorder.RecordOperation("load", err)
	s.config.Recorder.RecordNoteCount(len(notes))
	s.logger.Debug("store loaded", "notes", len(notes), "categories", len(categories))
	return err
}

// Loading reports whether the initial load is still pending.
func (s *Store) Loading() bool {
	return s.loading.Load()
}

// Notes returns the notes in storage order (most recently created first).
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.notes)
}

// Categories returns the categories with their derived counts.
func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Note returns the note with the given ID.
func (s *Store) Note(id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n.Clone(), nil
		}
	}
	return Note{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// AddNote creates a note and prepends it to the collection.
// The returned note is valid even when the error reports a failed write.
func (s *Store) AddNote(ctx context.Context, in NoteInput) (Note, error) {
	var created Note
	err := s.mutate(ctx, "add", func(notes []Note, now time.Time) []Note {
		created = Note{
			ID:        s.uniqueID(notes),
			Title:     in.Title,
			Content:   in.Content,
			Category:  in.Category,
			Tags:      in.Tags,
			CreatedAt: now,
			UpdatedAt: now,
			IsPinned:  in.IsPinned,
		}
		created = created.Clone()
		return append([]Note{created}, notes...)
	})
	return created.Clone(), err
}

// UpdateNote merges patch over the note with the given ID and refreshes its
// UpdatedAt. An unknown ID leaves the collection unchanged.
func (s *Store) UpdateNote(ctx context.Context, id string, patch NotePatch) error {
	return s.mutate(ctx, "update", func(notes []Note, now time.Time) []Note {
		for i, n := range notes {
			if n.ID == id {
				n = patch.apply(n)
				n.UpdatedAt = later(now, n.UpdatedAt)
				notes[i] = n
			}
		}
		return notes
	})
}

// DeleteNote removes the note with the given ID. An unknown ID is a no-op.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete", func(notes []Note, _ time.Time) []Note {
		out := notes[:0]
		for _, n := range notes {
			if n.ID != id {
				out = append(out, n)
			}
		}
		return out
	})
}

// TogglePin flips IsPinned on the note with the given ID.
func (s *Store) TogglePin(ctx context.Context, id string) error {
	return s.mutate(ctx, "pin", func(notes []Note, now time.Time) []Note {
		for i, n := range notes {
			if n.ID == id {
				n.IsPinned = !n.IsPinned
				n.UpdatedAt = later(now, n.UpdatedAt)
				notes[i] = n
			}
		}
		return notes
	})
}

// SearchNotes returns the notes whose title, content or any tag contains
// query, ignoring case, in storage order. A blank query returns every note.
func (s *Store) SearchNotes(query string) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(query) == "" {
		return cloneNotes(s.notes)
	}

	q := strings.ToLower(query)
	out := []Note{}
	for _, n := range s.notes {
		if matches(n, q) {
			out = append(out, n.Clone())
		}
	}
	return out
}

func matches(n Note, q string) bool {
	if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// NotesByCategory returns the notes whose Category equals name exactly.
func (s *Store) NotesByCategory(name string) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Note{}
	for _, n := range s.notes {
		if n.Category == name {
			out = append(out, n.Clone())
		}
	}
	return out
}

// mutate runs fn over a copy of the notes, persists the result together with
// the recounted categories and applies it in memory. The in-memory state is
// updated even when persisting fails.
func (s *Store) mutate(ctx context.Context, op string, fn func(notes []Note, now time.Time) []Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(cloneNotes(s.notes), s.config.Clock())
	categories := RecountCategories(s.categories, next)

	err := s.persist(ctx, next, categories)

	s.notes = next
	s.categories = categories

	s.config.Recorder.RecordOperation(op, err)
	s.config.Recorder.RecordNoteCount(len(next))
	if err != nil {
		s.logger.Error("error saving notes", "op", op, "error", err)
		return err
	}
	return nil
}

func (s *Store) persist(ctx context.Context, notes []Note, categories []Category) error {
	notesBlob, err := EncodeNotes(notes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	catBlob, err := EncodeCategories(categories)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	if b, ok := s.kv.(Batcher); ok {
		if err := b.SetMany(ctx, map[string]string{NotesKey: notesBlob, CategoriesKey: catBlob}); err != nil {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
		return nil
	}

	var errs []error
	if err := s.kv.Set(ctx, NotesKey, notesBlob); err != nil {
		errs = append(errs, fmt.Errorf("%w %s: %w", ErrPersist, NotesKey, err))
	}
	if err := s.kv.Set(ctx, CategoriesKey, catBlob); err != nil {
		errs = append(errs, fmt.Errorf("%w %s: %w", ErrPersist, CategoriesKey, err))
	}
	return errors.Join(errs...)
}

func (s *Store) writeCategories(ctx context.Context, categories []Category) error {
	blob, err := EncodeCategories(categories)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.kv.Set(ctx, CategoriesKey, blob); err != nil {
		s.logger.Error("error saving default categories", "error", err)
		return fmt.Errorf("%w %s: %w", ErrPersist, CategoriesKey, err)
	}
	return nil
}

// uniqueID draws IDs until one is unused by notes.
func (s *Store) uniqueID(notes []Note) string {
	for {
		id := s.config.NewID()
		taken := false
		for _, n := range notes {
			if n.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

func later(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}

func cloneNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}
