// Package eventbus is an in-memory publish/subscribe bus. Dispatch paths
// publish invocation events on it; the audit recorder consumes them off the
// hot path so persisting a record never delays a tool response.
//
// Publish is non-blocking: when a subscriber's buffer is full the event is
// dropped and counted. The audit table is the durable record; the bus itself
// is fire-and-forget.
package eventbus

import (
	"sync"
	"sync/atomic"
)

// Event is a single published message.
type Event struct {
	Topic   string
	Payload any
}

// EventBus is the interface for publishing and subscribing to topics.
type EventBus interface {
	Publish(topic string, payload any)
	Subscribe(topic string) <-chan Event
}

const subscriberBuffer = 100

// Bus is the in-memory implementation of EventBus.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
	dropped     atomic.Int64
}

// New returns a new in-memory Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe registers a subscriber for topic and returns a read-only channel.
// A subscriber that stops consuming loses events once its buffer fills; it
// never blocks publishers.
func (b *Bus) Subscribe(topic string) <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()
	return ch
}

// Publish sends an Event to every subscriber of topic without blocking.
func (b *Bus) Publish(topic string, payload any) {
	evt := Event{Topic: topic, Payload: payload}
	b.mu.RLock()
	subs := b.subscribers[topic]
	b.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped reports how many events have been discarded because a subscriber
// buffer was full. A climbing count means the audit recorder is falling
// behind its writes.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
