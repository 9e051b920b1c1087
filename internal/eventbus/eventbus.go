package eventbus

import (
	"log"
	"sync"
)

// Topics published across the console. Emitters and subscribers agree on
// these names only; payload types are documented at the publish site.
const (
	TopicRoutesUpdated   = "routes-updated"
	TopicPlacesUpdated   = "places-updated"
	TopicShopsUpdated    = "shops-updated"
	TopicProductsUpdated = "products-updated"
	TopicDraftUpdated    = "draft-updated"
	TopicDraftDeleted    = "draft-deleted"
	TopicOrderPlaced     = "order-placed"
)

// Handler receives the payload published on a topic.
type Handler func(payload interface{})

// Bus is a topic-based fan-out for in-process notifications. Publishes run
// synchronously on the caller's goroutine; a panicking subscriber is logged
// and does not stop delivery to the rest.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string]map[int]Handler
}

func New() *Bus {
	return &Bus{listeners: make(map[string]map[int]Handler)}
}

// Subscribe registers fn for a topic and returns an unsubscribe func.
func (b *Bus) Subscribe(topic string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.listeners[topic] == nil {
		b.listeners[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.listeners[topic][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners[topic], id)
	}
}

// Publish delivers payload to every subscriber of topic.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.listeners[topic]))
	for _, fn := range b.listeners[topic] {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		deliver(topic, fn, payload)
	}
}

func deliver(topic string, fn Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[BUS] panic in %q listener: %v", topic, r)
		}
	}()
	fn(payload)
}
