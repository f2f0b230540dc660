package core_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/core"
)

// stepClock advances by one second on every reading.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// batchKV records how many atomic batches it received.
type batchKV struct {
	*memory.KV
	batches int
}

func (b *batchKV) SetMany(ctx context.Context, values map[string]string) error {
	b.batches++
	for k, v := range values {
		if err := b.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// gatedKV blocks reads on gate once armed.
type gatedKV struct {
	*memory.KV
	armed   atomic.Bool
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedKV) Get(ctx context.Context, key string) (string, bool, error) {
	if g.armed.Load() {
		select {
		case g.entered <- struct{}{}:
		default:
		}
		<-g.gate
	}
	return g.KV.Get(ctx, key)
}

func newLoadedStore(t *testing.T, kv core.KV) *core.Store {
	t.Helper()
	store := core.NewStore(kv, core.StoreConfig{Clock: newStepClock().Now})
	require.NoError(t, store.Load(context.Background()))
	return store
}

func categoryCount(t *testing.T, store *core.Store, name string) int {
	t.Helper()
	for _, c := range store.Categories() {
		if c.Name == name {
			return c.NoteCount
		}
	}
	t.Fatalf("category %q not found", name)
	return 0
}

func TestStore_Load_FirstRun(t *testing.T) {
	kv := memory.New()
	store := core.NewStore(kv, core.StoreConfig{})
	assert.True(t, store.Loading(), "store must report loading before Load")

	require.NoError(t, store.Load(context.Background()))

	assert.False(t, store.Loading())
	assert.Empty(t, store.Notes())
	assert.Equal(t, core.DefaultCategories(), store.Categories())
	assert.Equal(t, 1, kv.Writes(core.CategoriesKey), "defaults must be persisted on first run")
	assert.Equal(t, 0, kv.Writes(core.NotesKey))
}

func TestStore_Load_ReloadKeepsLoadingCleared(t *testing.T) {
	kv := &gatedKV{KV: memory.New(), entered: make(chan struct{}, 2), gate: make(chan struct{})}
	store := core.NewStore(kv, core.StoreConfig{})
	assert.True(t, store.Loading())
	require.NoError(t, store.Load(context.Background()))
	require.False(t, store.Loading())

	kv.armed.Store(true)
	done := make(chan error, 1)
	go func() { done <- store.Load(context.Background()) }()

	select {
	case <-kv.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("reload never reached storage")
	}
	assert.False(t, store.Loading(), "reload must not report the initial load as pending")

	close(kv.gate)
	require.NoError(t, <-done)
	assert.False(t, store.Loading())
}

func TestStore_AddNote_Scenario(t *testing.T) {
	store := newLoadedStore(t, memory.New())

	note, err := store.AddNote(context.Background(), core.NoteInput{Title: "A", Category: "Work"})
	require.NoError(t, err)

	assert.Len(t, store.Notes(), 1)
	assert.NotEmpty(t, note.ID)
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)
	assert.Equal(t, []string{}, note.Tags)

	for _, c := range store.Categories() {
		if c.Name == "Work" {
			assert.Equal(t, 1, c.NoteCount)
		} else {
			assert.Equal(t, 0, c.NoteCount, "category %s", c.Name)
		}
	}
}

func TestStore_AddNote_PrependsMostRecent(t *testing.T) {
	store := newLoadedStore(t, memory.New())
	ctx := context.Background()

	first, err := store.AddNote(ctx, core.NoteInput{Title: "first"})
	require.NoError(t, err)
	second, err := store.AddNote(ctx, core.NoteInput{Title: "second"})
	require.NoError(t, err)

	notes := store.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)
}

func TestStore_RoundTrip(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()
	store := newLoadedStore(t, kv)

	_, err := store.AddNote(ctx, core.NoteInput{Title: "Groceries", Content: "milk", Category: "Shopping", Tags: []string{"home", "weekly"}})
	require.NoError(t, err)
	pinned, err := store.AddNote(ctx, core.NoteInput{Title: "Plan", Category: "Work", IsPinned: true})
	require.NoError(t, err)
	require.NoError(t, store.TogglePin(ctx, pinned.ID))

	reloaded := core.NewStore(kv, core.StoreConfig{})
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, store.Notes(), reloaded.Notes())
	assert.Equal(t, store.Categories(), reloaded.Categories())
}

func TestStore_UpdateNote(t *testing.T) {
	store := newLoadedStore(t, memory.New())
	ctx := context.Background()

	note, err := store.AddNote(ctx, core.NoteInput{Title: "Draft", Content: "body", Category: "Ideas", Tags: []string{"x"}})
	require.NoError(t, err)

	title := "Final"
	category := "Work"
	require.NoError(t, store.UpdateNote(ctx, note.ID, core.NotePatch{Title: &title, Category: &category}))

	got, err := store.Note(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, "body", got.Content, "unpatched fields must be kept")
	assert.Equal(t, []string{"x"}, got.Tags)
	assert.Equal(t, note.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(note.UpdatedAt))

	assert.Equal(t, 0, categoryCount(t, store, "Ideas"))
	assert.Equal(t, 1, categoryCount(t, store, "Work"))
}

func TestStore_UnknownIDIsNoOp(t *testing.T) {
	kv := memory.New()
	store := newLoadedStore(t, kv)
	ctx := context.Background()

	_, err := store.AddNote(ctx, core.NoteInput{Title: "a"})
	require.NoError(t, err)
	_, err = store.AddNote(ctx, core.NoteInput{Title: "b"})
	require.NoError(t, err)

	before := store.Notes()
	writes := kv.Writes(core.NotesKey)

	title := "changed"
	require.NoError(t, store.UpdateNote(ctx, "missing", core.NotePatch{Title: &title}))
	require.NoError(t, store.DeleteNote(ctx, "missing"))
	require.NoError(t, store.TogglePin(ctx, "missing"))

	assert.Equal(t, before, store.Notes())
	assert.Equal(t, writes+3, kv.Writes(core.NotesKey), "no-ops still persist")
}

func TestStore_TogglePinTwice(t *testing.T) {
	store := newLoadedStore(t, memory.New())
	ctx := context.Background()

	note, err := store.AddNote(ctx, core.NoteInput{Title: "pin me"})
	require.NoError(t, err)

	require.NoError(t, store.TogglePin(ctx, note.ID))
	once, err := store.Note(note.ID)
	require.NoError(t, err)
	assert.True(t, once.IsPinned)

	require.NoError(t, store.TogglePin(ctx, note.ID))
	twice, err := store.Note(note.ID)
	require.NoError(t, err)
	assert.False(t, twice.IsPinned)
	assert.False(t, twice.UpdatedAt.Before(once.UpdatedAt))
}

func TestStore_DeleteNote(t *testing.T) {
	store := newLoadedStore(t, memory.New())
	ctx := context.Background()

	note, err := store.AddNote(ctx, core.NoteInput{Title: "gone", Category: "Personal"})
	require.NoError(t, err)
	require.Equal(t, 1, categoryCount(t, store, "Personal"))

	require.NoError(t, store.DeleteNote(ctx, note.ID))

	assert.Empty(t, store.Notes())
	assert.Equal(t, 0, categoryCount(t, store, "Personal"))
	_, err = store.Note(note.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_PersistFailureKeepsMemory(t *testing.T) {
	kv := memory.New()
	store := newLoadedStore(t, kv)
	boom := errors.New("disk full")
	kv.FailWrites(core.NotesKey, boom)

	note, err := store.AddNote(context.Background(), core.NoteInput{Title: "unsaved", Category: "Work"})

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrPersist)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, store.Notes(), 1, "in-memory state is not rolled back")
	assert.Equal(t, "unsaved", note.Title)
	assert.Equal(t, 1, categoryCount(t, store, "Work"))
	assert.Equal(t, 2, kv.Writes(core.CategoriesKey), "categories are still written")
}

func TestStore_BatchedWrites(t *testing.T) {
	kv := &batchKV{KV: memory.New()}
	store := newLoadedStore(t, kv)

	_, err := store.AddNote(context.Background(), core.NoteInput{Title: "a"})
	require.NoError(t, err)

	assert.Equal(t, 1, kv.batches, "notes and categories go out in one batch")
	assert.Contains(t, kv.Snapshot(), core.NotesKey)
}

func TestStore_Load_CorruptNotes(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, core.NotesKey, "{not json"))
	require.NoError(t, kv.Set(ctx, core.CategoriesKey, `[{"id":"9","name":"Travel","color":"#000000","noteCount":7}]`))

	store := core.NewStore(kv, core.StoreConfig{})
	err := store.Load(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCorruptBlob)
	assert.False(t, store.Loading())
	assert.Empty(t, store.Notes())
	assert.Equal(t, []core.Category{{ID: "9", Name: "Travel", Color: "#000000", NoteCount: 0}}, store.Categories(),
		"stored counts are recomputed, never trusted")
}

func TestStore_Load_Lenient(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()
	blob := `[
		{"id":"1","title":"ok","content":"","category":"Work","tags":["a"],"createdAt":"2024-05-01T10:00:00.000Z","updatedAt":"2024-05-02T10:00:00.000Z","isPinned":false},
		{"id":2,"title":"bad id type"},
		{"title":"no id"}
	]`
	require.NoError(t, kv.Set(ctx, core.NotesKey, blob))

	store := core.NewStore(kv, core.StoreConfig{Lenient: true})
	require.NoError(t, store.Load(ctx))

	notes := store.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "1", notes[0].ID)
	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), notes[0].UpdatedAt)
	assert.Equal(t, 1, categoryCount(t, store, "Work"))
}

func TestStore_Load_ReadFailure(t *testing.T) {
	kv := memory.New()
	kv.FailReads(errors.New("storage offline"))

	store := core.NewStore(kv, core.StoreConfig{})
	err := store.Load(context.Background())

	require.Error(t, err)
	assert.False(t, store.Loading())
	assert.Equal(t, core.DefaultCategories(), store.Categories())
	assert.Equal(t, 0, kv.Writes(core.CategoriesKey), "fallback defaults are not persisted")
}

func TestStore_SearchNotes(t *testing.T) {
	store := newLoadedStore(t, memory.New())
	ctx := context.Background()

	recipe, _ := store.AddNote(ctx, core.NoteInput{Title: "Pasta Recipe", Content: "boil water"})
	meeting, _ := store.AddNote(ctx, core.NoteInput{Title: "Standup", Content: "Discuss FOOD budget"})
	tagged, _ := store.AddNote(ctx, core.NoteInput{Title: "Misc", Tags: []string{"seafood"}})
	_, _ = store.AddNote(ctx, core.NoteInput{Title: "Unrelated", Content: "nothing here"})

	t.Run("Blank Query Returns Everything", func(t *testing.T) {
		assert.Equal(t, store.Notes(), store.SearchNotes(""))
		assert.Equal(t, store.Notes(), store.SearchNotes("   \t"))
	})

	t.Run("Matches Title Content And Tags Ignoring Case", func(t *testing.T) {
		got := store.SearchNotes("food")
		ids := []string{}
		for _, n := range got {
			ids = append(ids, n.ID)
		}
		// Storage order is most recent first.
		assert.Equal(t, []string{tagged.ID, meeting.ID}, ids)
	})

	t.Run("Title Match", func(t *testing.T) {
		got := store.SearchNotes("RECIPE")
		require.Len(t, got, 1)
		assert.Equal(t, recipe.ID, got[0].ID)
	})

	t.Run("No Match", func(t *testing.T) {
		assert.Empty(t, store.SearchNotes("zzz"))
	})
}

func TestStore_NotesByCategory(t *testing.T) {
	store := newLoadedStore(t, memory.New())
	ctx := context.Background()

	_, _ = store.AddNote(ctx, core.NoteInput{Title: "a", Category: "Work"})
	_, _ = store.AddNote(ctx, core.NoteInput{Title: "b", Category: "work"})
	_, _ = store.AddNote(ctx, core.NoteInput{Title: "c", Category: "Archive"})

	work := store.NotesByCategory("Work")
	require.Len(t, work, 1)
	assert.Equal(t, "a", work[0].Title)

	assert.Len(t, store.NotesByCategory("Archive"), 1, "dangling category names still filter")
	assert.Empty(t, store.NotesByCategory("Nope"))

	state := store.State().(core.StoreState)
	assert.Equal(t, 2, state.Uncategorized)
}

func TestStore_UpdatedAtNeverBeforeCreatedAt(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), // clock stepped back
	}
	i := 0
	clock := func() time.Time {
		now := times[min(i, len(times)-1)]
		i++
		return now
	}

	store := core.NewStore(memory.New(), core.StoreConfig{Clock: clock})
	ctx := context.Background()
	note, err := store.AddNote(ctx, core.NoteInput{Title: "t"})
	require.NoError(t, err)
	require.NoError(t, store.TogglePin(ctx, note.ID))

	got, err := store.Note(note.ID)
	require.NoError(t, err)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestStore_RegeneratesCollidingIDs(t *testing.T) {
	ids := []string{"same", "same", "other"}
	i := 0
	store := core.NewStore(memory.New(), core.StoreConfig{NewID: func() string {
		id := ids[i]
		i++
		return id
	}})
	ctx := context.Background()

	a, err := store.AddNote(ctx, core.NoteInput{Title: "a"})
	require.NoError(t, err)
	b, err := store.AddNote(ctx, core.NoteInput{Title: "b"})
	require.NoError(t, err)

	assert.Equal(t, "same", a.ID)
	assert.Equal(t, "other", b.ID)
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := newLoadedStore(t, memory.New())
	_, err := store.AddNote(context.Background(), core.NoteInput{Title: "a", Tags: []string{"x"}})
	require.NoError(t, err)

	notes := store.Notes()
	notes[0].Tags[0] = "mutated"
	notes[0].Title = "mutated"

	assert.Equal(t, "a", store.Notes()[0].Title)
	assert.Equal(t, []string{"x"}, store.Notes()[0].Tags)
}

func TestStore_Follow_Unsupported(t *testing.T) {
	store := newLoadedStore(t, memory.New())
	_, err := store.Follow(context.Background())
	assert.ErrorIs(t, err, core.ErrNoWatch)
}
