// Package live pushes favorite-count updates to subscribers, one topic
// per listing.
package live

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"ilanhub/internal/adapters/observability"
)

// Event is the payload pushed when a listing's favorite count changes.
// It carries the absolute count, so delivering the same event twice is
// harmless by construction.
type Event struct {
	ListingID     int64  `json:"listingId"`
	ListingType   string `json:"listingType"`
	FavoriteCount int64  `json:"favoriteCount"`
}

// Topic returns the per-listing topic name.
func Topic(listingID int64) string {
	return fmt.Sprintf("/topic/listing/%d/favoriteCount", listingID)
}

// Subscription receives events for one topic until Unsubscribe.
type Subscription struct {
	C     chan Event
	topic string
	hub   *Hub
	once  sync.Once
}

// Unsubscribe detaches from the topic. Safe to call more than once;
// component teardown must call it.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() { s.hub.drop(s) })
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string][]*Subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string][]*Subscription)}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{C: make(chan Event, 8), topic: topic, hub: h}
	h.mu.Lock()
	h.subs[topic] = append(h.subs[topic], sub)
	h.mu.Unlock()
	observability.LiveSubscribers.Inc()
	return sub
}

// Publish fans an event out to the topic's subscribers. Slow
// subscribers are skipped rather than blocking the publisher.
func (h *Hub) Publish(e Event) {
	topic := Topic(e.ListingID)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs[topic] {
		select {
		case s.C <- e:
		default:
			log.Warn().Str("topic", topic).Msg("subscriber channel full, event skipped")
		}
	}
}

func (h *Hub) drop(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.subs[sub.topic]
	for i, s := range list {
		if s == sub {
			h.subs[sub.topic] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(h.subs[sub.topic]) == 0 {
		delete(h.subs, sub.topic)
	}
	close(sub.C)
	observability.LiveSubscribers.Dec()
}

// SubscriberCount reports the current subscribers of a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// CounterView tracks the displayed favorite count per listing. Apply
// is idempotent: the event carries the absolute count, so a duplicate
// delivery leaves the view unchanged.
type CounterView struct {
	mu     sync.Mutex
	counts map[int64]int64
}

func NewCounterView() *CounterView {
	return &CounterView{counts: make(map[int64]int64)}
}

func (c *CounterView) Apply(e Event) {
	c.mu.Lock()
	c.counts[e.ListingID] = e.FavoriteCount
	c.mu.Unlock()
}

func (c *CounterView) Count(listingID int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[listingID]
}
