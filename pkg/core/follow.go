package core

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"
)

// FollowPattern matches the keys owned by the notes Store.
const FollowPattern = "@notes_app_{notes,categories}"

// Follow reloads the store whenever the storage reports a change to the notes
// or categories keys, for instance a write from another process.
// Each event is forwarded on the returned channel after the reload; the
// channel is closed when ctx is done or the storage stops watching.
func (s *Store) Follow(ctx context.Context) (<-chan Event, error) {
	w, ok := s.kv.(Watchable)
	if !ok {
		return nil, ErrNoWatch
	}

	events, err := w.Watch(ctx, FollowPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to watch storage: %w", err)
	}

	out := make(chan Event)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				if err := s.Load(ctx); err != nil {
					s.logger.Warn("reload after external change failed", "key", e.Key, "error", err)
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("follow loop panic", "error", err)
	}))

	return out, nil
}
