// Package event is a synchronous publish/subscribe transport keyed by
// channel name.
//
// Listeners are called in the goroutine that emits, in subscription order.
// The listener list is copied before delivery, so listeners may subscribe,
// unsubscribe or emit again while being notified.
package event

import (
	"sort"
	"sync"
)

// Emitter delivers values to listeners registered per channel.
// It is safe for concurrent use.
type Emitter struct {
	mu   sync.RWMutex
	subs map[string][]*Subscription
	byID map[string]*Subscription
}

// NewEmitter creates an emitter with no listeners.
func NewEmitter() *Emitter {
	return &Emitter{
		subs: make(map[string][]*Subscription),
		byID: make(map[string]*Subscription),
	}
}

// On registers listener on channel.
func (e *Emitter) On(channel string, listener Listener) (*Subscription, error) {
	return e.add(channel, listener, false)
}

// Once registers listener on channel for a single delivery.
func (e *Emitter) Once(channel string, listener Listener) (*Subscription, error) {
	return e.add(channel, listener, true)
}

func (e *Emitter) add(channel string, listener Listener, once bool) (*Subscription, error) {
	if listener == nil {
		return nil, ErrNilListener
	}
	if channel == "" {
		return nil, ErrInvalidChannel
	}

	sub := newSubscription(channel, listener, once)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.subs[channel] = append(e.subs[channel], sub)
	e.byID[sub.id] = sub
	return sub, nil
}

// Off removes a subscription.
func (e *Emitter) Off(sub *Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	if !e.remove(sub.id) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// remove unregisters a subscription by ID and reports whether it was present.
func (e *Emitter) remove(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub, exists := e.byID[id]
	if !exists {
		return false
	}
	sub.cancel()

	subs := e.subs[sub.channel]
	for i, s := range subs {
		if s.id == id {
			// Build a new slice; emitters iterating a copy keep the old one.
			next := make([]*Subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			e.subs[sub.channel] = append(next, subs[i+1:]...)
			break
		}
	}
	if len(e.subs[sub.channel]) == 0 {
		delete(e.subs, sub.channel)
	}
	delete(e.byID, id)
	return true
}

// OffChannel removes every listener on channel and returns how many were removed.
func (e *Emitter) OffChannel(channel string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.subs[channel]
	for _, sub := range subs {
		sub.cancel()
		delete(e.byID, sub.id)
	}
	delete(e.subs, channel)
	return len(subs)
}

// Emit delivers state to every active listener on channel and returns the
// number of listeners called.
func (e *Emitter) Emit(channel string, state any) int {
	e.mu.RLock()
	subs := e.subs[channel]
	e.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if !sub.IsActive() {
			continue
		}
		if sub.once && !e.remove(sub.id) {
			// Another delivery already consumed it.
			continue
		}
		sub.listener(state)
		delivered++
	}
	return delivered
}

// ListenerCount returns the number of listeners on channel.
func (e *Emitter) ListenerCount(channel string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.subs[channel])
}

// Count returns the total number of subscriptions.
func (e *Emitter) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.byID)
}

// Channels returns the channels with at least one listener, sorted.
func (e *Emitter) Channels() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.subs) == 0 {
		return nil
	}
	channels := make([]string, 0, len(e.subs))
	for ch := range e.subs {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}

// Clear removes all subscriptions.
func (e *Emitter) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, sub := range e.byID {
		sub.cancel()
	}
	e.subs = make(map[string][]*Subscription)
	e.byID = make(map[string]*Subscription)
}
