// Package events is the invalidation bus between mutations and the views that
// display the affected data. A successful create, update or delete publishes
// the topics it made stale; every view subscribed to one of them reloads.
package events

import (
	"sync"

	"finadvisor/internal/logger"
)

// Topic names a family of server data.
type Topic string

const (
	Transactions Topic = "transactions"
	Analytics    Topic = "analytics"
	Budgets      Topic = "budgets"
	Goals        Topic = "goals"
	Profile      Topic = "profile"
	Forecast     Topic = "forecast"
)

// dependents lists the topics whose server-side values are computed from
// another topic's data. Budget spending and every analytics figure are
// derived from transactions.
var dependents = map[Topic][]Topic{
	Transactions: {Analytics, Budgets, Forecast},
}

// Handler is called with the topic that was invalidated.
type Handler func(Topic)

// Bus fans invalidations out to subscribers. The zero value is not usable;
// create one with New.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic]map[int]Handler
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers h for the given topics and returns a function that
// removes the registration.
func (b *Bus) Subscribe(h Handler, topics ...Topic) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	for _, t := range topics {
		if b.subs[t] == nil {
			b.subs[t] = make(map[int]Handler)
		}
		b.subs[t][id] = h
	}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, t := range topics {
			delete(b.subs[t], id)
		}
	}
}

// Invalidate notifies subscribers of topics and of every topic derived from
// them. A handler subscribed to several affected topics is called once per
// topic. Handlers run synchronously on the caller's goroutine.
func (b *Bus) Invalidate(topics ...Topic) {
	for _, t := range expand(topics) {
		b.mu.RLock()
		handlers := make([]Handler, 0, len(b.subs[t]))
		for _, h := range b.subs[t] {
			handlers = append(handlers, h)
		}
		b.mu.RUnlock()

		logger.Get().Debugw("invalidate", "topic", string(t), "subscribers", len(handlers))
		for _, h := range handlers {
			h(t)
		}
	}
}

// expand returns topics plus their dependents, without duplicates, in a
// stable order.
func expand(topics []Topic) []Topic {
	seen := make(map[Topic]bool, len(topics))
	out := make([]Topic, 0, len(topics))
	var add func(Topic)
	add = func(t Topic) {
		if seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
		for _, d := range dependents[t] {
			add(d)
		}
	}
	for _, t := range topics {
		add(t)
	}
	return out
}
