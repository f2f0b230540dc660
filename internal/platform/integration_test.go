package platform_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/theme"
)

func TestApp_FirstRunAndRestart(t *testing.T) {
	ctx := context.Background()

	for _, adapter := range []string{platform.AdapterFS, platform.AdapterBadger, platform.AdapterSQLite} {
		t.Run(adapter, func(t *testing.T) {
			dir := t.TempDir()

			app, err := platform.New(ctx, dir, platform.WithAdapter(adapter))
			require.NoError(t, err)
			require.NoError(t, app.Load(ctx))
			assert.Equal(t, core.DefaultCategories(), app.Notes.Categories())
			assert.Equal(t, theme.DefaultThemeID, app.Theme.ThemeID())

			n, err := app.Notes.AddNote(ctx, core.NoteInput{Title: "hello", Category: "Work"})
			require.NoError(t, err)
			require.NoError(t, app.Theme.SetTheme(ctx, theme.Midnight))
			require.NoError(t, app.Close())

			again, err := platform.New(ctx, dir, platform.WithAdapter(adapter))
			require.NoError(t, err)
			defer again.Close()
			require.NoError(t, again.Load(ctx))

			assert.Equal(t, []core.Note{n}, again.Notes.Notes())
			assert.Equal(t, theme.Midnight, again.Theme.ThemeID())
			assert.Contains(t, again.States(), "notes-store")
			assert.Contains(t, again.States(), "theme-store")
		})
	}
}

func TestApp_OptionsReachStores(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, core.NotesKey, `[{"id":"ok","title":"t"},{"id":""}]`))
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	app, err := platform.New(ctx, "",
		platform.WithKV(kv),
		platform.WithLenient(true),
		platform.WithIDGenerator(func() string { return "fixed-id" }),
		platform.WithClock(func() time.Time { return fixed }),
		platform.WithAppearance(func() theme.Appearance { return theme.AppearanceLight }),
	)
	require.NoError(t, err)
	require.NoError(t, app.Load(ctx))

	require.Len(t, app.Notes.Notes(), 1, "lenient decode kept the valid record")

	n, err := app.Notes.AddNote(ctx, core.NoteInput{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", n.ID)
	assert.Equal(t, fixed, n.CreatedAt)

	require.NoError(t, app.Theme.SetAutoTheme(ctx, true))
	assert.Equal(t, theme.Light, app.Theme.Current().ID)
}

func TestApp_LoadReportsBothStores(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	kv.FailReads(errors.New("offline"))

	app, err := platform.New(ctx, "", platform.WithKV(kv))
	require.NoError(t, err)

	err = app.Load(ctx)
	require.Error(t, err)
	assert.False(t, app.Notes.Loading())
	assert.True(t, app.Theme.Ready())
	assert.Equal(t, core.DefaultCategories(), app.Notes.Categories())
}
