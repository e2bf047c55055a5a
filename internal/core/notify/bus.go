// Package notify is a small synchronous in-process event bus.
package notify

import "sync"

// Subscriber is a callback invoked when an event is published.
type Subscriber[E any] func(E)

// Bus dispatches events to subscribers inline, in publish order, on the
// publishing goroutine. It remembers the last event so late subscribers can
// catch up.
type Bus[E any] struct {
	mu          sync.Mutex
	subscribers map[int]Subscriber[E]
	nextID      int
	last        E
	hasLast     bool
}

// NewBus creates an empty bus.
func NewBus[E any]() *Bus[E] {
	return &Bus[E]{
		subscribers: make(map[int]Subscriber[E]),
	}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus[E]) Subscribe(fn Subscriber[E]) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// Publish dispatches e to all subscribers.
func (b *Bus[E]) Publish(e E) {
	b.mu.Lock()
	b.last = e
	b.hasLast = true
	subs := make([]Subscriber[E], 0, len(b.subscribers))
	for i := 0; i < b.nextID; i++ {
		if fn, ok := b.subscribers[i]; ok {
			subs = append(subs, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Last returns the most recently published event.
func (b *Bus[E]) Last() (E, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.hasLast
}
