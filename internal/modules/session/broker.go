package session

import (
	"sync"
	"time"
)

type EventType string

const (
	SignedIn       EventType = "signed_in"
	SignedOut      EventType = "signed_out"
	TokenRefreshed EventType = "token_refreshed"
)

type Event struct {
	Type      EventType `json:"type"`
	Principal Principal `json:"principal"`
	At        time.Time `json:"at"`
}

// Broker fans session events out to explicit subscribers. A subscriber
// that does not keep up misses events rather than blocking the publisher.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	next   int
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned func unsubscribes and
// closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers ev to every subscriber and returns how many received it.
func (b *Broker) Publish(ev Event) int {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
