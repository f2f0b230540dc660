package core

import "fmt"

// Storage keys. The values are kept compatible with the mobile app's layout.
const (
	NotesKey      = "@notes_app_notes"
	CategoriesKey = "@notes_app_categories"
)

// EventType represents the type of change observed in the storage.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a stored key.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Key)
}
