package core

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// SortForDisplay returns notes ordered for display: pinned notes first, then
// by UpdatedAt, most recent first. The sort is stable.
func SortForDisplay(notes []Note) []Note {
	out := cloneNotes(notes)
	slices.SortStableFunc(out, func(a, b Note) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

// MostRecent returns the most recently updated note.
func MostRecent(notes []Note) (Note, bool) {
	if len(notes) == 0 {
		return Note{}, false
	}
	best := notes[0]
	for _, n := range notes[1:] {
		if n.UpdatedAt.After(best.UpdatedAt) {
			best = n
		}
	}
	return best.Clone(), true
}

// PopularTags returns up to n tags ordered by how many notes carry them.
// Ties keep the order in which tags were first seen.
func PopularTags(notes []Note, n int) []string {
	counts := map[string]int{}
	var order []string
	for _, note := range notes {
		for _, tag := range note.Tags {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})
	if n >= 0 && len(order) > n {
		order = order[:n]
	}
	if order == nil {
		order = []string{}
	}
	return order
}

// RecentSearchesCapacity is the number of queries kept by RecentSearches.
const RecentSearchesCapacity = 5

// RecentSearches keeps the latest distinct search queries, newest first.
// It is not safe for concurrent use.
type RecentSearches struct {
	items []string
}

// Push records query. Blank queries and queries already present are ignored.
func (r *RecentSearches) Push(query string) {
	q := strings.TrimSpace(query)
	if q == "" || slices.Contains(r.items, q) {
		return
	}
	keep := r.items
	if len(keep) > RecentSearchesCapacity-1 {
		keep = keep[:RecentSearchesCapacity-1]
	}
	r.items = append([]string{q}, keep...)
}

// List returns the recorded queries, newest first.
func (r *RecentSearches) List() []string {
	return slices.Clone(r.items)
}

// Clear forgets every recorded query.
func (r *RecentSearches) Clear() {
	r.items = nil
}

// RecentSearchesKey holds the recent queries of command-line sessions.
const RecentSearchesKey = "@quire_recent_searches"

// LoadRecentSearches reads the queries stored at RecentSearchesKey.
// A missing or malformed value yields an empty history.
func LoadRecentSearches(ctx context.Context, kv KV) (*RecentSearches, error) {
	r := &RecentSearches{}
	blob, ok, err := kv.Get(ctx, RecentSearchesKey)
	if err != nil || !ok {
		return r, err
	}
	var items []string
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return r, fmt.Errorf("%w: recent searches: %v", ErrCorruptBlob, err)
	}
	for i := len(items) - 1; i >= 0; i-- {
		r.Push(items[i])
	}
	return r, nil
}

// Save writes the queries to RecentSearchesKey.
func (r *RecentSearches) Save(ctx context.Context, kv KV) error {
	items := r.List()
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return kv.Set(ctx, RecentSearchesKey, string(data))
}
