package core

import (
	"slices"
	"time"
)

// Note is the central entity of the domain.
// Category holds the category name, not its ID; notes may reference a name
// that no Category carries.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsPinned  bool      `json:"isPinned"`
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	n.Tags = slices.Clone(n.Tags)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n
}

// NoteInput carries the caller-supplied fields of a new note.
type NoteInput struct {
	Title    string
	Content  string
	Category string
	Tags     []string
	IsPinned bool
}

// NotePatch is a partial update. Nil fields are left unchanged.
type NotePatch struct {
	Title    *string
	Content  *string
	Category *string
	Tags     *[]string
	IsPinned *bool
}

// apply merges the patch over n. ID and CreatedAt are never touched.
func (p NotePatch) apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	if p.Tags != nil {
		n.Tags = slices.Clone(*p.Tags)
	}
	if p.IsPinned != nil {
		n.IsPinned = *p.IsPinned
	}
	return n
}

// Category groups notes by name. NoteCount is derived from the note
// collection and is never read back as a source of truth.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	NoteCount int    `json:"noteCount"`
}

// DefaultCategories returns the categories installed on first run.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Personal", Color: "#2563EB"},
		{ID: "2", Name: "Work", Color: "#7C3AED"},
		{ID: "3", Name: "Ideas", Color: "#DC2626"},
		{ID: "4", Name: "Shopping", Color: "#059669"},
	}
}

// RecountCategories returns a copy of categories with NoteCount set to the
// number of notes whose Category equals the category name.
func RecountCategories(categories []Category, notes []Note) []Category {
	counts := make(map[string]int, len(categories))
	for _, n := range notes {
		counts[n.Category]++
	}

	out := make([]Category, len(categories))
	for i, c := range categories {
		c.NoteCount = counts[c.Name]
		out[i] = c
	}
	return out
}
