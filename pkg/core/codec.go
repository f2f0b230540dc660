package core

import (
	"encoding/json"
	"fmt"
)

// EncodeNotes serializes notes as a JSON array using the stored field names.
// Timestamps are written as RFC 3339 with nanoseconds.
func EncodeNotes(notes []Note) (string, error) {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode notes: %w", err)
	}
	return string(data), nil
}

// DecodeNotes parses a notes blob.
//
// In strict mode any malformed record fails the whole blob. In lenient mode
// malformed records (or records without an ID) are skipped and counted in
// dropped.
func DecodeNotes(blob string, lenient bool) (notes []Note, dropped int, err error) {
	if !lenient {
		if err := json.Unmarshal([]byte(blob), &notes); err != nil {
			return nil, 0, fmt.Errorf("%w: notes: %v", ErrCorruptBlob, err)
		}
		return normalizeNotes(notes), 0, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: notes: %v", ErrCorruptBlob, err)
	}

	notes = make([]Note, 0, len(raw))
	for _, r := range raw {
		var n Note
		if err := json.Unmarshal(r, &n); err != nil || n.ID == "" {
			dropped++
			continue
		}
		notes = append(notes, n)
	}
	return normalizeNotes(notes), dropped, nil
}

func normalizeNotes(notes []Note) []Note {
	if notes == nil {
		return []Note{}
	}
	for i := range notes {
		if notes[i].Tags == nil {
			notes[i].Tags = []string{}
		}
	}
	return notes
}

// EncodeCategories serializes categories as a JSON array.
func EncodeCategories(categories []Category) (string, error) {
	if categories == nil {
		categories = []Category{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("failed to encode categories: %w", err)
	}
	return string(data), nil
}

// DecodeCategories parses a categories blob.
func DecodeCategories(blob string) ([]Category, error) {
	var categories []Category
	if err := json.Unmarshal([]byte(blob), &categories); err != nil {
		return nil, fmt.Errorf("%w: categories: %v", ErrCorruptBlob, err)
	}
	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}
