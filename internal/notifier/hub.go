// Package notifier fans availability updates out to subscribers.
// Topics are per showing; the booking flow publishes after each commit
// and websocket handlers subscribe on behalf of connected clients.
package notifier

import (
	"sync"

	"github.com/lynriescoop/cinema-booking/internal/metrics"
)

// Update is one availability snapshot for a showing.
type Update struct {
	ShowingID        uint64 `json:"showing_id"`
	AvailableTickets uint32 `json:"available_tickets"`
	TotalCapacity    uint32 `json:"total_capacity"`
}

// subscriberBuffer bounds the per-subscriber channel. A subscriber
// whose buffer is full when an update arrives is dropped rather than
// allowed to stall publishers.
const subscriberBuffer = 8

// Subscription is one subscriber's handle on a showing topic. Receive
// from C; the channel is closed when the hub drops the subscriber.
type Subscription struct {
	ShowingID uint64
	C         <-chan Update

	ch chan Update
}

// Hub routes updates to per-showing subscriber sets. The zero value is
// not usable; construct with NewHub.
type Hub struct {
	mu     sync.RWMutex
	topics map[uint64]map[*Subscription]struct{}
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[uint64]map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber for a showing. The caller must
// drain sub.C promptly and call Unsubscribe when done.
func (h *Hub) Subscribe(showingID uint64) *Subscription {
	ch := make(chan Update, subscriberBuffer)
	sub := &Subscription{ShowingID: showingID, C: ch, ch: ch}

	h.mu.Lock()
	set, ok := h.topics[showingID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.topics[showingID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	metrics.NotifierSubscribers.Inc()
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to
// call after the hub has already dropped the subscription.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	removed := h.remove(sub)
	h.mu.Unlock()
	if removed {
		close(sub.ch)
		metrics.NotifierSubscribers.Dec()
	}
}

// remove deletes sub from its topic set. Caller holds mu.
func (h *Hub) remove(sub *Subscription) bool {
	set, ok := h.topics[sub.ShowingID]
	if !ok {
		return false
	}
	if _, ok := set[sub]; !ok {
		return false
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.topics, sub.ShowingID)
	}
	return true
}

// Publish delivers an update to every subscriber of the showing.
// Delivery never blocks: a subscriber whose buffer is full is dropped
// and its channel closed, which the websocket handler observes as a
// normal disconnect.
func (h *Hub) Publish(u Update) {
	h.mu.Lock()
	set, ok := h.topics[u.ShowingID]
	if !ok {
		h.mu.Unlock()
		return
	}
	var dropped []*Subscription
	for sub := range set {
		select {
		case sub.ch <- u:
		default:
			dropped = append(dropped, sub)
		}
	}
	for _, sub := range dropped {
		h.remove(sub)
	}
	h.mu.Unlock()

	for _, sub := range dropped {
		close(sub.ch)
		metrics.NotifierSubscribers.Dec()
		metrics.NotifierDropped.Inc()
	}
}

// SubscriberCount reports live subscriptions for a showing.
func (h *Hub) SubscriberCount(showingID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[showingID])
}
