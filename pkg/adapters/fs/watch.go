package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/quire/pkg/core"
)

// Watch reports changes to keys matching pattern (doublestar syntax, matched
// against the decoded key). Bursts of events for the same key are coalesced.
// The channel is closed when ctx is done.
func (kv *KV) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(kv.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", kv.Path, err)
	}

	events := make(chan core.Event)
	w := &watchLoop{
		kv:        kv,
		pattern:   pattern,
		watcher:   watcher,
		events:    events,
		debouncer: newDebouncer(kv.config.Debounce),
	}
	kv.setWatcherActive(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		kv.reportError(fmt.Errorf("watcher panic: %w", err))
	}))
	return events, nil
}

type watchLoop struct {
	kv        *KV
	pattern   string
	watcher   *fsnotify.Watcher
	events    chan core.Event
	debouncer *debouncer
}

func (w *watchLoop) run(ctx context.Context) (err error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.kv.logger.Enabled(ctx, slog.LevelDebug) {
				w.kv.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.kv.logger.Error("watcher panic", "error", err)
			}
		}
		cancel()
		w.debouncer.stopAndWait(5 * time.Second)
		w.kv.setWatcherActive(false)
		close(w.events)
	}()
	defer w.watcher.Close()

	for {
		select {
		case <-runCtx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(runCtx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.kv.logger.Error("fsnotify error", "error", wErr)
			w.kv.reportError(wErr)
		}
	}
}

func (w *watchLoop) handle(ctx context.Context, event fsnotify.Event) {
	key, ok := DecodeKey(filepath.Base(event.Name))
	if !ok {
		return
	}
	if matched, _ := doublestar.Match(w.pattern, key); !matched {
		return
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}
	w.kv.logger.Debug("key changed", "key", key, "op", event.Op.String())

	w.debouncer.add(core.Event{Type: eType, Key: key, Timestamp: time.Now().Unix()}, func(e core.Event) {
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

// mapEventType translates a file event. Atomic writes surface as a Create on
// the target, so Create and Write both mean the key has a new value.
func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}

func (kv *KV) reportError(err error) {
	if kv.config.ErrorHandler != nil {
		kv.config.ErrorHandler(err)
	}
}

func (kv *KV) setWatcherActive(active bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.watcherActive = active
}

// debouncer delays delivery of an event until no newer event for the same
// key arrived within wait. Only the latest event per key is delivered.
type debouncer struct {
	wait time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(wait time.Duration) *debouncer {
	return &debouncer{wait: wait, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if t, ok := d.timers[e.Key]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.wait, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[e.Key] == t {
			delete(d.timers, e.Key)
		}
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fire(e)
		}
	})
	d.timers[e.Key] = t
}

// stopAndWait drops pending events and waits for in-flight deliveries.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
