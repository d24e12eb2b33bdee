package events

import "sync"

// DefaultBroadcastBuffer is the per-subscriber backlog when the configured
// capacity is missing or nonsensical.
const DefaultBroadcastBuffer = 1000

// Hub fans decoded envelopes out to in-process subscribers, independent of
// the broker. Delivery is best-effort: a subscriber whose buffer is full
// misses the envelope rather than stalling the consumer, and with no
// subscribers at all the broadcast is silently dropped.
type Hub struct {
	mu          sync.RWMutex
	subscribers []chan Envelope
	buffer      int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBroadcastBuffer
	}
	return &Hub{buffer: buffer}
}

// Subscribe registers a new subscriber. It receives every envelope broadcast
// from this moment on; there is no replay of history.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Envelope, h.buffer)
	h.subscribers = append(h.subscribers, ch)
	return &Subscription{C: ch, hub: h, ch: ch}
}

// Broadcast delivers the envelope to every current subscriber without
// blocking. Order follows the consumer's processing order.
func (h *Hub) Broadcast(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- env:
		default:
		}
	}
}

func (h *Hub) unsubscribe(ch chan Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, sub := range h.subscribers {
		if sub == ch {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// Subscription is a live attachment to the hub. Close detaches it and closes
// the channel.
type Subscription struct {
	C <-chan Envelope

	hub  *Hub
	ch   chan Envelope
	once sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s.ch)
	})
}
