// Package events carries session lifecycle events from the HTTP client core
// to the components that react to them.
package events

import (
	"sync"
	"time"
)

const (
	// SessionInvalidated is sent after a 401 has caused the stored
	// credentials to be cleared.
	SessionInvalidated = "session.invalidated"
)

// Event is a session lifecycle event.
type Event struct {
	Type   string
	Reason string
	Time   time.Time
}

// Broker is an in-process Sender and Receiver. Delivery is synchronous and
// follows subscription order.
type Broker struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers map[uint64]func(Event)
	order       []uint64
}

// NewBroker returns a Broker without subscribers.
func NewBroker() *Broker {
	return &Broker{
		subscribers: map[uint64]func(Event){},
	}
}

func (b *Broker) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subscribers[id] = fn
	b.order = append(b.order, id)
	once := sync.Once{}
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, id)
			for i, orderedID := range b.order {
				if orderedID == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (b *Broker) Send(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	// Snapshot so that subscribers may (un)subscribe while being called
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.subscribers[id])
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(event)
	}
}

// SessionInvalidatedFunc returns a callback suitable for
// sdk.APIClientOptions.OnSessionInvalidated that sends a SessionInvalidated
// event through sender.
func SessionInvalidatedFunc(sender Sender) func(reason string) {
	return func(reason string) {
		sender.Send(Event{Type: SessionInvalidated, Reason: reason})
	}
}
