package event

import "errors"

// Sentinel errors for the emitter.
var (
	// ErrInvalidChannel is returned when a channel name is empty.
	ErrInvalidChannel = errors.New("invalid channel")

	// ErrNilListener is returned when a nil listener is provided.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrInvalidSubscription is returned when a nil subscription is provided.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrSubscriptionNotFound is returned when removing a subscription that is not registered.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
