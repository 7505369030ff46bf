// Package events carries record-change notifications from stores to whoever
// renders or aggregates them. Publishing on every write replaces the
// original fixed-interval re-polling, so consumers see changes immediately
// instead of up to two seconds late.
package events

import (
	"sync"
	"time"
)

// Action identifies what happened to a record.
type Action string

const (
	ActionCreated          Action = "created"
	ActionStatusChanged    Action = "status_changed"
	ActionDocumentAttached Action = "document_attached"
	ActionDocumentRemoved  Action = "document_removed"
)

// Change describes a single record mutation.
type Change struct {
	Collection string
	RecordID   string
	Action     Action
	At         time.Time
}

// Bus is an in-process publish/subscribe fan-out. Publish never blocks:
// a subscriber whose buffer is full misses that change and must treat its
// cached view as stale on the next delivery.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Change
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Change)}
}

// Subscribe registers a buffered listener. The returned cancel func must be
// called when the consumer stops, or the channel leaks.
func (b *Bus) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Change, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans the change out to all subscribers without blocking.
func (b *Bus) Publish(change Change) {
	if change.At.IsZero() {
		change.At = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
