package events

import "sync"

// DefaultBufferSize is used when a subscriber asks for a buffer below 1.
const DefaultBufferSize = 64

// Subscription is one subscriber's event stream.
type Subscription struct {
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
	bus      *Bus
}

// Events returns the channel to receive events from.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Done returns a channel closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close ends the subscription. Safe to call multiple times.
func (s *Subscription) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
		if s.bus != nil {
			s.bus.remove(s)
		}
	})
}

// send delivers evt without blocking.
// If the buffer is full, the oldest event is dropped.
func (s *Subscription) send(evt Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- evt:
	default:
		select {
		case <-s.events:
		default:
		}
		// Best effort; a concurrent reader may have made room already.
		select {
		case s.events <- evt:
		default:
		}
	}
}

// Bus is a Sink that fans events out to subscribers. Publishing never
// blocks; slow subscribers lose their oldest events.
type Bus struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a subscriber with the given channel buffer.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = DefaultBufferSize
	}
	s := &Subscription{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
		bus:    b,
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish sends evt to every subscriber.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		s.send(evt)
	}
}

// Count returns the number of active subscribers.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, s)
}
