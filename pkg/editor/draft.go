// Package editor implements the editing boundary in front of the notes store:
// draft state, tag entry, unsaved-change detection and save validation.
package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aretw0/quire/pkg/core"
)

// DefaultCategory is the category of a blank draft.
const DefaultCategory = "Personal"

var validate = validator.New()

// Saver is the subset of the notes store a draft saves into.
type Saver interface {
	AddNote(ctx context.Context, in core.NoteInput) (core.Note, error)
	UpdateNote(ctx context.Context, id string, patch core.NotePatch) error
	Note(id string) (core.Note, error)
}

// Draft is the editable state of a new or existing note.
type Draft struct {
	Title    string
	Content  string
	Category string
	Tags     []string

	original *core.Note
}

// fields is what gets validated: trimmed text, tags as entered.
type fields struct {
	Title    string   `validate:"required_without=Content"`
	Content  string   `validate:"required_without=Title"`
	Category string   `validate:"required"`
	Tags     []string `validate:"unique,dive,required"`
}

// New returns a blank draft.
func New() *Draft {
	return &Draft{Category: DefaultCategory, Tags: []string{}}
}

// Edit returns a draft initialized from an existing note.
func Edit(n core.Note) *Draft {
	orig := n.Clone()
	category := n.Category
	if category == "" {
		category = DefaultCategory
	}
	return &Draft{
		Title:    n.Title,
		Content:  n.Content,
		Category: category,
		Tags:     slices.Clone(orig.Tags),
		original: &orig,
	}
}

// IsNew reports whether the draft creates a note rather than editing one.
func (d *Draft) IsNew() bool {
	return d.original == nil
}

// AddTag appends tag after trimming it. Blank and duplicate tags are ignored;
// the result reports whether the tag was added.
func (d *Draft) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(d.Tags, tag) {
		return false
	}
	d.Tags = append(d.Tags, tag)
	return true
}

// RemoveTag removes tag if present.
func (d *Draft) RemoveTag(tag string) {
	d.Tags = slices.DeleteFunc(d.Tags, func(t string) bool { return t == tag })
}

// HasChanges reports whether the draft differs from the note it was opened
// from, or from a blank draft.
func (d *Draft) HasChanges() bool {
	base := core.Note{Category: DefaultCategory, Tags: []string{}}
	if d.original != nil {
		base = *d.original
		if base.Category == "" {
			base.Category = DefaultCategory
		}
	}
	return d.Title != base.Title ||
		d.Content != base.Content ||
		d.Category != base.Category ||
		!slices.Equal(d.Tags, base.Tags)
}

// Validate checks the draft can be saved. A draft whose trimmed title and
// content are both empty fails with core.ErrEmptyNote.
func (d *Draft) Validate() error {
	err := validate.Struct(d.trimmed())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Field() == "Title" || fe.Field() == "Content" {
			return core.ErrEmptyNote
		}
	}
	return fmt.Errorf("invalid note: %w", verrs)
}

func (d *Draft) trimmed() fields {
	return fields{
		Title:    strings.TrimSpace(d.Title),
		Content:  strings.TrimSpace(d.Content),
		Category: d.Category,
		Tags:     d.Tags,
	}
}

// Input returns the validated, trimmed fields of a new note.
// Pinned state is carried over when the draft edits an existing note.
func (d *Draft) Input() (core.NoteInput, error) {
	if err := d.Validate(); err != nil {
		return core.NoteInput{}, err
	}
	f := d.trimmed()
	pinned := d.original != nil && d.original.IsPinned
	return core.NoteInput{
		Title:    f.Title,
		Content:  f.Content,
		Category: f.Category,
		Tags:     slices.Clone(f.Tags),
		IsPinned: pinned,
	}, nil
}

// Patch returns the validated changes as a full-field patch.
func (d *Draft) Patch() (core.NotePatch, error) {
	in, err := d.Input()
	if err != nil {
		return core.NotePatch{}, err
	}
	return core.NotePatch{
		Title:    &in.Title,
		Content:  &in.Content,
		Category: &in.Category,
		Tags:     &in.Tags,
		IsPinned: &in.IsPinned,
	}, nil
}

// Save validates the draft and writes it: new drafts are added, existing
// ones update their note. The saved note is returned, together with any
// persistence error reported by the store.
func (d *Draft) Save(ctx context.Context, s Saver) (core.Note, error) {
	if d.original == nil {
		in, err := d.Input()
		if err != nil {
			return core.Note{}, err
		}
		n, err := s.AddNote(ctx, in)
		if n.ID != "" {
			d.reset(n)
		}
		return n, err
	}

	patch, err := d.Patch()
	if err != nil {
		return core.Note{}, err
	}
	saveErr := s.UpdateNote(ctx, d.original.ID, patch)
	n, err := s.Note(d.original.ID)
	if err != nil {
		return core.Note{}, errors.Join(saveErr, err)
	}
	d.reset(n)
	return n, saveErr
}

// reset makes n the draft's baseline, so HasChanges reports false.
func (d *Draft) reset(n core.Note) {
	saved := n.Clone()
	d.Title = saved.Title
	d.Content = saved.Content
	d.Category = saved.Category
	d.Tags = slices.Clone(saved.Tags)
	d.original = &saved
}
