package event

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Listener receives the state view scoped to the channel it subscribed to.
//
// The view is a reference into the live state tree. Listeners must not keep
// it and later assume it is unchanged; copy what needs to be retained.
type Listener func(state any)

// Subscription is a listener registered on one channel.
type Subscription struct {
	id       string
	channel  string
	listener Listener
	once     bool
	active   atomic.Bool
}

func newSubscription(channel string, listener Listener, once bool) *Subscription {
	sub := &Subscription{
		id:       uuid.NewString(),
		channel:  channel,
		listener: listener,
		once:     once,
	}
	sub.active.Store(true)
	return sub
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Channel returns the channel the subscription listens on.
func (s *Subscription) Channel() string {
	return s.channel
}

// Once reports whether the subscription is removed after its first delivery.
func (s *Subscription) Once() bool {
	return s.once
}

// IsActive reports whether the subscription still receives notifications.
func (s *Subscription) IsActive() bool {
	return s.active.Load()
}

func (s *Subscription) cancel() bool {
	return s.active.Swap(false)
}
