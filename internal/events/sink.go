package events

import "sync"

// Sink receives events. Publish must not block the caller for long.
type Sink interface {
	Publish(evt Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(evt Event)

// Publish calls f.
func (f SinkFunc) Publish(evt Event) { f(evt) }

// DaySetter is implemented by sinks that segment events per day.
type DaySetter interface {
	SetDay(day int)
}

// Nop discards every event.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(Event) {}

// Multi fans an event out to several sinks in order. Nil sinks are ignored.
func Multi(sinks ...Sink) Sink {
	var out multi
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []Sink

func (m multi) Publish(evt Event) {
	for _, s := range m {
		s.Publish(evt)
	}
}

// SetDay forwards to every member that segments per day.
func (m multi) SetDay(day int) {
	for _, s := range m {
		if ds, ok := s.(DaySetter); ok {
			ds.SetDay(day)
		}
	}
}

// Buffer holds events until they are committed. Events published during a
// pass that is later rolled back are discarded instead of delivered.
type Buffer struct {
	mu      sync.Mutex
	pending []Event
}

// Publish queues an event.
func (b *Buffer) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, evt)
}

// Len returns the number of queued events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Flush delivers queued events to dst in order and empties the buffer.
func (b *Buffer) Flush(dst Sink) int {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, evt := range pending {
		dst.Publish(evt)
	}
	return len(pending)
}

// Discard drops queued events and returns how many were dropped.
func (b *Buffer) Discard() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.pending)
	b.pending = nil
	return n
}
