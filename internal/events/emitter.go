package events

import (
	"sync"

	"github.com/Unleash/unleash-proxy-client-go/internal/metrics"
)

// Name identifies an event channel.
type Name string

// Event names.
const (
	// EventInitialized is emitted once internal setup (storage, bootstrap) is complete.
	EventInitialized Name = "initialized"
	// EventReady is emitted once toggle data is queryable, from bootstrap, storage TTL or the first fetch.
	EventReady Name = "ready"
	// EventUpdate is emitted after every fetch that replaced the toggles.
	EventUpdate Name = "update"
	// EventError carries a transport, HTTP status or storage error.
	EventError Name = "error"
	// EventImpression carries an Impression.
	EventImpression Name = "impression"
	// EventSent carries the metrics payload that was delivered.
	EventSent Name = "sent"
	// EventRecovered is emitted when a fetch succeeds after the client was in the error state.
	EventRecovered Name = "recovered"
)

// Event is passed to listeners. Only the field relevant to Name is set.
type Event struct {
	Name       Name
	Err        error
	Impression *Impression
	Metrics    *metrics.Payload
}

// Listener receives events. It is called synchronously on the goroutine that produced the event.
type Listener func(Event)

// Subscription identifies a registered listener so that it can be removed.
type Subscription struct {
	name Name
	id   uint64
}

type entry struct {
	id       uint64
	listener Listener
}

// Emitter is a dispatch table from event names to ordered lists of listeners.
type Emitter struct {
	listeners map[Name][]entry
	lastID    uint64
	lock      sync.Mutex
}

// NewEmitter creates an Emitter with no listeners.
func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[Name][]entry)}
}

// On adds a listener for an event name. Listeners are called in the order they were added.
func (e *Emitter) On(name Name, listener Listener) Subscription {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.lastID++
	e.listeners[name] = append(e.listeners[name], entry{id: e.lastID, listener: listener})
	return Subscription{name: name, id: e.lastID}
}

// Off removes a listener. Removing a listener that is not registered has no effect.
func (e *Emitter) Off(sub Subscription) {
	e.lock.Lock()
	defer e.lock.Unlock()
	entries := e.listeners[sub.name]
	for i, en := range entries {
		if en.id == sub.id {
			updated := make([]entry, 0, len(entries)-1)
			updated = append(updated, entries[:i]...)
			updated = append(updated, entries[i+1:]...)
			e.listeners[sub.name] = updated
			return
		}
	}
}

// Emit calls every listener registered for ev.Name. The lock is not held during the calls, so listeners
// may call back into the Emitter or the client.
func (e *Emitter) Emit(ev Event) {
	e.lock.Lock()
	entries := e.listeners[ev.Name]
	e.lock.Unlock()
	for _, en := range entries {
		en.listener(ev)
	}
}

// HasListeners returns true if at least one listener is registered for name.
func (e *Emitter) HasListeners(name Name) bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return len(e.listeners[name]) > 0
}
