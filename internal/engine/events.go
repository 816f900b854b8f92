package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/observability"
)

// EventName identifies a lifecycle event.
type EventName string

const (
	// EventBuilderInited fires once the engine is configured and before any
	// source page is read.
	EventBuilderInited EventName = "builder-inited"
	// EventBuildFinished fires after the build, successful or not. Event.Err
	// carries the build error, if any.
	EventBuildFinished EventName = "build-finished"
)

// Event is passed to listeners.
type Event struct {
	Name EventName
	App  *App
	// Err is the main build's error for EventBuildFinished; nil otherwise.
	Err error
}

// Listener handles a lifecycle event. A returned error aborts the emit.
type Listener func(ctx context.Context, ev Event) error

type listenerEntry struct {
	id int
	fn Listener
}

// Events is the table of lifecycle listeners. Listeners of one event run
// synchronously in registration order.
type Events struct {
	mu        sync.Mutex
	nextID    int
	listeners map[EventName][]listenerEntry
}

// NewEvents returns an empty event table.
func NewEvents() *Events {
	return &Events{listeners: make(map[EventName][]listenerEntry)}
}

// Connect registers fn for name and returns an id usable with Disconnect.
func (e *Events) Connect(name EventName, fn Listener) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.listeners[name] = append(e.listeners[name], listenerEntry{id: e.nextID, fn: fn})
	return e.nextID
}

// Disconnect removes the listener with the given id. It reports whether a
// listener was removed.
func (e *Events) Disconnect(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, entries := range e.listeners {
		for i, entry := range entries {
			if entry.id == id {
				e.listeners[name] = append(entries[:i:i], entries[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Count returns the number of listeners connected to name.
func (e *Events) Count(name EventName) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[name])
}

// Emit invokes every listener of ev.Name in order and stops at the first error.
func (e *Events) Emit(ctx context.Context, ev Event) error {
	e.mu.Lock()
	entries := append([]listenerEntry(nil), e.listeners[ev.Name]...)
	e.mu.Unlock()

	ctx = observability.WithEvent(ctx, string(ev.Name))
	observability.DebugContext(ctx, "Emitting lifecycle event", slog.Int("listeners", len(entries)))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "build canceled").
				WithContext("event", string(ev.Name)).Build()
		}
		if err := entry.fn(ctx, ev); err != nil {
			if errors.IsClassified(err) {
				return err
			}
			return errors.WrapError(err, errors.CategoryRuntime, fmt.Sprintf("%s listener failed", ev.Name)).
				Fatal().WithContext("event", string(ev.Name)).Build()
		}
	}
	return nil
}
