package reporting

import "sync"

// CallEvent is the data the Call Router hands to the reporting
// channel for every routed/rejected/collided frame (spec.md §6's
// comma-separated event format, produced by the caller; Bus only
// fans the already-formatted string out).
type CallEvent struct {
	Text string // pre-formatted per spec.md §6
}

// Bus is an internal publish/subscribe hub: the Call Router publishes
// call events, and the reporting TCP server, pkg/mqtt bridge, and
// pkg/database call-record writer each subscribe independently
// (SPEC_FULL.md §4.7, §4.11-4.12).
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan CallEvent
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new buffered channel that receives every
// future published event. The channel is never closed by Publish;
// callers that stop reading should call Unsubscribe.
func (b *Bus) Subscribe(buffer int) chan CallEvent {
	ch := make(chan CallEvent, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a channel previously returned by Subscribe.
func (b *Bus) Unsubscribe(ch chan CallEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// Publish fans an event out to every subscriber. A subscriber whose
// buffer is full has the event dropped for it rather than blocking
// the publisher — the reporting channel is a best-effort side stream,
// never a requirement for call routing to proceed.
func (b *Bus) Publish(e CallEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		select {
		case sub <- e:
		default:
		}
	}
}
