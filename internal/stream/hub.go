// Package stream provides per-recipient change signaling for notification
// records. Repositories call Notify after any write; subscribers re-query
// and deliver a full snapshot per signal rather than consuming diffs.
package stream

import "sync"

// Hub keeps in-memory per-recipient subscribers. Process-local only.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan struct{}]struct{}
}

// NewHub constructs a Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers a change-signal channel for the recipient and returns
// it together with an unsubscribe function safe to call once on teardown.
// The channel has capacity 1 and coalesces: a signal arriving while one is
// already pending is dropped, which is fine because consumers re-query the
// full current state on every signal.
func (h *Hub) Subscribe(recipientID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subscribers[recipientID] == nil {
		h.subscribers[recipientID] = make(map[chan struct{}]struct{})
	}
	h.subscribers[recipientID][ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set := h.subscribers[recipientID]; set != nil {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subscribers, recipientID)
			}
		}
	}
	return ch, unsubscribe
}

// Notify signals every subscriber of the recipient. Never blocks.
func (h *Hub) Notify(recipientID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[recipientID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount reports active subscribers for a recipient.
func (h *Hub) SubscriberCount(recipientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[recipientID])
}
