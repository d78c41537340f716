// internal/events/bus.go
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/AustinKelsay/voltage-demo-wallet/internal/logging"
	"go.uber.org/zap"
)

// Topic enumerates the events the wallet components exchange.
type Topic string

const (
	TopicTransactionNew Topic = "transaction:new"
	TopicInvoiceCreated Topic = "invoice:created"
	TopicPaymentSent    Topic = "payment:sent"
)

// Event carries a topic plus an opaque per-topic payload. Subscribers must be
// idempotent to duplicate emissions.
type Event struct {
	Topic   Topic
	Payload interface{}
}

// Handler receives published events for one topic.
type Handler func(Event)

// Bus is an in-memory typed publish/subscribe service. It is injected into
// components rather than shared as a package global, and holds no state beyond
// the live subscriber set.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Topic]map[string]Handler
	closed      bool
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Topic]map[string]Handler),
	}
}

// Subscribe registers a handler for the topic and returns a token for
// Unsubscribe.
func (b *Bus) Subscribe(topic Topic, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ""
	}

	id := uuid.NewString()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[string]Handler)
	}
	b.subscribers[topic][id] = handler
	return id
}

func (b *Bus) Unsubscribe(topic Topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers[topic], id)
}

// Publish delivers the event to every live subscriber of its topic. Handlers
// run synchronously on the caller's goroutine; copy the subscriber set first
// so handlers may subscribe or unsubscribe without deadlocking.
func (b *Bus) Publish(topic Topic, payload interface{}) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := make([]Handler, 0, len(b.subscribers[topic]))
	for _, h := range b.subscribers[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	logging.Debug("Publishing event",
		zap.String("topic", string(topic)),
		zap.Int("subscribers", len(handlers)),
	)

	ev := Event{Topic: topic, Payload: payload}
	for _, h := range handlers {
		h(ev)
	}
}

// Close drops all subscribers; later publishes and subscribes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subscribers = make(map[Topic]map[string]Handler)
}
