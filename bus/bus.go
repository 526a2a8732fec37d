// Package bus distributes state-change events from the shopfront state
// managers to interested consumers: the CLI watch view, metrics handlers,
// and anything else that re-renders reactively. Publishing never blocks a
// state manager; slow consumers drop events instead.
package bus

import "github.com/oakmart/shopfront"

// EventBus distributes events to subscribers.
type EventBus interface {
	// Publish sends an event to all matching subscribers.
	Publish(event shopfront.Event)

	// Subscribe registers a subscriber for one event kind.
	// Returns a Subscription that must be closed when done.
	Subscribe(kind shopfront.EventKind) Subscription

	// SubscribeAll registers a subscriber that receives every event.
	// Returns a Subscription that must be closed when done.
	SubscribeAll() Subscription

	// Close shuts down the bus and all subscriptions.
	Close() error
}

// Subscription receives events.
type Subscription interface {
	// Events returns a channel of events for this subscription.
	Events() <-chan shopfront.Event

	// Close unsubscribes and releases resources.
	Close() error
}
