package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/core"
)

func TestDecodeNotes_MobileFormat(t *testing.T) {
	// Blob as written by the mobile app (JavaScript Date serialization).
	blob := `[{"id":"1718000000000","title":"Hello","content":"World","category":"Personal",
		"tags":["a","b"],"createdAt":"2024-06-10T06:13:20.000Z","updatedAt":"2024-06-10T06:15:00.123Z","isPinned":true}]`

	notes, dropped, err := core.DecodeNotes(blob, false)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, notes, 1)

	n := notes[0]
	assert.Equal(t, "1718000000000", n.ID)
	assert.Equal(t, []string{"a", "b"}, n.Tags)
	assert.True(t, n.IsPinned)
	assert.Equal(t, time.Date(2024, 6, 10, 6, 13, 20, 0, time.UTC), n.CreatedAt)
	assert.Equal(t, 123*time.Millisecond, n.UpdatedAt.Sub(time.Date(2024, 6, 10, 6, 15, 0, 0, time.UTC)))
}

func TestDecodeNotes_Strict(t *testing.T) {
	_, _, err := core.DecodeNotes(`[{"id":"1","createdAt":"yesterday"}]`, false)
	assert.ErrorIs(t, err, core.ErrCorruptBlob)

	notes, _, err := core.DecodeNotes(`null`, false)
	require.NoError(t, err)
	assert.Equal(t, []core.Note{}, notes)
}

func TestDecodeNotes_LenientRejectsNonArray(t *testing.T) {
	_, _, err := core.DecodeNotes(`{"id":"1"}`, true)
	assert.ErrorIs(t, err, core.ErrCorruptBlob)
}

func TestEncodeNotes_FieldNames(t *testing.T) {
	blob, err := core.EncodeNotes([]core.Note{{
		ID:        "n1",
		Title:     "t",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC),
	}})
	require.NoError(t, err)

	assert.JSONEq(t, `[{"id":"n1","title":"t","content":"","category":"","tags":[],
		"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:01Z","isPinned":false}]`, blob)
}

func TestCategoriesCodec(t *testing.T) {
	blob, err := core.EncodeCategories(core.DefaultCategories())
	require.NoError(t, err)

	decoded, err := core.DecodeCategories(blob)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCategories(), decoded)

	_, err = core.DecodeCategories("[{")
	assert.ErrorIs(t, err, core.ErrCorruptBlob)
}

func TestRecountCategories(t *testing.T) {
	categories := []core.Category{{ID: "1", Name: "Work", NoteCount: 99}, {ID: "2", Name: "Home"}}
	notes := []core.Note{{Category: "Work"}, {Category: "Work"}, {Category: "Nowhere"}}

	got := core.RecountCategories(categories, notes)

	assert.Equal(t, 2, got[0].NoteCount)
	assert.Equal(t, 0, got[1].NoteCount)
	assert.Equal(t, 99, categories[0].NoteCount, "input must not be modified")
}
