package realtime

import "sync"

// Bus fans a payload-free "something changed" signal out to subscribers.
// Delivery is best-effort: a subscriber that already has an undrained
// signal pending is not sent another one, which is enough for an
// invalidate-and-refetch consumer.
type Bus struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: map[chan struct{}]struct{}{}}
}

// Subscribe registers a listener. The returned cancel func must be called
// on disconnect; it is safe to call more than once.
func (b *Bus) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish notifies every subscriber without blocking the publisher.
func (b *Bus) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount is exposed for the health endpoint.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
