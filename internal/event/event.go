package event

import (
	"strings"
	"sync"
	"time"
)

// Topic is a hierarchical event type using dot notation.
type Topic string

// Topics published by the engine.
const (
	// TopicVariableTimeout reports a client variable whose resolution
	// deadline expired; the variable renders as empty text.
	TopicVariableTimeout Topic = "resolve.variable.timeout"

	// TopicCodeError reports a code fragment whose execution failed;
	// the fragment renders as empty text.
	TopicCodeError Topic = "resolve.code.error"

	// TopicTabChanged reports the active tab after navigation.
	TopicTabChanged Topic = "tab.changed"

	// TopicSnippetExpanded reports a new expansion session.
	TopicSnippetExpanded Topic = "snippet.expanded"

	// TopicCatalogReloaded reports a catalog file picked up by the
	// watcher.
	TopicCatalogReloaded Topic = "catalog.reloaded"
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Matches returns true if the topic equals the pattern or is a
// descendant of it. The empty pattern matches everything.
func (t Topic) Matches(pattern Topic) bool {
	if pattern == "" || t == pattern {
		return true
	}
	return strings.HasPrefix(string(t), string(pattern)+".")
}

// Event is one notification delivered to subscribers.
type Event struct {
	// Topic is the event type.
	Topic Topic

	// Session identifies the expansion session the event belongs to,
	// when applicable.
	Session string

	// Payload carries event-specific data: an error for failure
	// topics, a tab number for tab.changed, a file path for
	// catalog.reloaded.
	Payload any

	// Time is when the event was published.
	Time time.Time
}

// Handler receives published events.
type Handler func(Event)

// Subscription represents one active handler registration.
type Subscription struct {
	id  int
	bus *Bus
}

// Cancel removes the subscription from its bus.
func (s *Subscription) Cancel() {
	if s.bus != nil {
		s.bus.unsubscribe(s.id)
	}
}

type subscriber struct {
	pattern Topic
	fn      Handler
}

// Bus delivers events to pattern subscribers. Safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]subscriber
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscriber)}
}

// Subscribe registers a handler for a topic and its descendants.
func (b *Bus) Subscribe(pattern Topic, fn Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = subscriber{pattern: pattern, fn: fn}
	return &Subscription{id: id, bus: b}
}

// Publish delivers an event synchronously to every matching
// subscriber. A panicking handler is recovered so it cannot take down
// the publisher's editing session.
func (b *Bus) Publish(topic Topic, session string, payload any) {
	ev := Event{Topic: topic, Session: session, Payload: payload, Time: time.Now()}

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if topic.Matches(s.pattern) {
			matched = append(matched, s.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range matched {
		deliver(fn, ev)
	}
}

func deliver(fn Handler, ev Event) {
	defer func() {
		_ = recover()
	}()
	fn(ev)
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}
