package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/core"
)

func at(minute int) time.Time {
	return time.Date(2025, 6, 1, 12, minute, 0, 0, time.UTC)
}

func ids(notes []core.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestSortForDisplay(t *testing.T) {
	t.Run("Pinned First Then Most Recent", func(t *testing.T) {
		a := core.Note{ID: "A", IsPinned: true, UpdatedAt: at(30)}
		b := core.Note{ID: "B", IsPinned: false, UpdatedAt: at(50)}
		c := core.Note{ID: "C", IsPinned: true, UpdatedAt: at(10)}

		for _, input := range [][]core.Note{{a, b, c}, {b, c, a}, {c, a, b}} {
			assert.Equal(t, []string{"A", "C", "B"}, ids(core.SortForDisplay(input)))
		}
	})

	t.Run("Stable On Ties", func(t *testing.T) {
		notes := []core.Note{
			{ID: "1", UpdatedAt: at(5)},
			{ID: "2", UpdatedAt: at(5)},
			{ID: "3", UpdatedAt: at(5)},
		}
		assert.Equal(t, []string{"1", "2", "3"}, ids(core.SortForDisplay(notes)))
	})

	t.Run("Does Not Mutate Input", func(t *testing.T) {
		notes := []core.Note{{ID: "old", UpdatedAt: at(1)}, {ID: "new", UpdatedAt: at(2)}}
		_ = core.SortForDisplay(notes)
		assert.Equal(t, []string{"old", "new"}, ids(notes))
	})
}

func TestMostRecent(t *testing.T) {
	_, ok := core.MostRecent(nil)
	assert.False(t, ok)

	got, ok := core.MostRecent([]core.Note{
		{ID: "a", UpdatedAt: at(1)},
		{ID: "b", UpdatedAt: at(9)},
		{ID: "c", UpdatedAt: at(4)},
	})
	assert.True(t, ok)
	assert.Equal(t, "b", got.ID)
}

func TestPopularTags(t *testing.T) {
	notes := []core.Note{
		{Tags: []string{"go", "work"}},
		{Tags: []string{"home", "go"}},
		{Tags: []string{"work", "go", "misc"}},
	}

	assert.Equal(t, []string{"go", "work", "home", "misc"}, core.PopularTags(notes, 6))
	assert.Equal(t, []string{"go", "work"}, core.PopularTags(notes, 2))
	assert.Equal(t, []string{}, core.PopularTags(nil, 6))
}

func TestRecentSearches(t *testing.T) {
	var r core.RecentSearches

	r.Push("  ideas ")
	r.Push("")
	r.Push("grocery list")
	r.Push("ideas")
	assert.Equal(t, []string{"grocery list", "ideas"}, r.List())

	for _, q := range []string{"a", "b", "c", "d"} {
		r.Push(q)
	}
	assert.Equal(t, []string{"d", "c", "b", "a", "grocery list"}, r.List())
	assert.Len(t, r.List(), core.RecentSearchesCapacity)

	r.Clear()
	assert.Empty(t, r.List())
}

func TestRecentSearches_Persist(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	empty, err := core.LoadRecentSearches(ctx, kv)
	require.NoError(t, err)
	assert.Empty(t, empty.List())

	var r core.RecentSearches
	r.Push("first")
	r.Push("second")
	require.NoError(t, r.Save(ctx, kv))

	loaded, err := core.LoadRecentSearches(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, loaded.List())

	require.NoError(t, kv.Set(ctx, core.RecentSearchesKey, "{"))
	broken, err := core.LoadRecentSearches(ctx, kv)
	assert.ErrorIs(t, err, core.ErrCorruptBlob)
	assert.Empty(t, broken.List())
}
