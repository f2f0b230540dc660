package fs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/core"
)

func nextEvent(t *testing.T, events <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e, ok := <-events:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return core.Event{}
	}
}

func TestWatch_FiltersAndDebounces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	kv, err := fs.New(dir, fs.Config{Debounce: 250 * time.Millisecond})
	require.NoError(t, err)

	events, err := kv.Watch(ctx, core.FollowPattern)
	require.NoError(t, err)

	writer, err := fs.New(dir, fs.Config{})
	require.NoError(t, err)
	require.NoError(t, writer.Set(ctx, "@notes_app_theme", "light"))
	for i := 0; i < 5; i++ {
		require.NoError(t, writer.Set(ctx, core.NotesKey, "[]"))
	}

	e := nextEvent(t, events)
	assert.Equal(t, core.NotesKey, e.Key)

	select {
	case extra := <-events:
		t.Fatalf("unexpected event %v", extra)
	case <-time.After(600 * time.Millisecond):
	}

	require.NoError(t, writer.Delete(ctx, core.NotesKey))
	e = nextEvent(t, events)
	assert.Equal(t, core.EventDelete, e.Type)
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	kv, err := fs.New(t.TempDir(), fs.Config{})
	require.NoError(t, err)

	events, err := kv.Watch(ctx, "**")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return kv.State().(fs.KVState).WatcherActive
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.False(t, kv.State().(fs.KVState).WatcherActive)
}

func TestWatch_InvalidPattern(t *testing.T) {
	kv, err := fs.New(t.TempDir(), fs.Config{})
	require.NoError(t, err)

	_, err = kv.Watch(context.Background(), "[")
	assert.Error(t, err)
}

// A store following the directory picks up writes from another store.
func TestWatch_StoreFollow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	kvA, err := fs.New(dir, fs.Config{})
	require.NoError(t, err)
	follower := core.NewStore(kvA, core.StoreConfig{})
	require.NoError(t, follower.Load(ctx))
	events, err := follower.Follow(ctx)
	require.NoError(t, err)

	kvB, err := fs.New(dir, fs.Config{})
	require.NoError(t, err)
	writer := core.NewStore(kvB, core.StoreConfig{})
	require.NoError(t, writer.Load(ctx))
	_, err = writer.AddNote(ctx, core.NoteInput{Title: "from elsewhere", Category: "Work"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		select {
		case <-events:
		default:
		}
		return len(follower.Notes()) == 1
	}, 3*time.Second, 20*time.Millisecond)
}
