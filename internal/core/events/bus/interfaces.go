// Package bus is a small synchronous event bus used to surface simulator
// lifecycle events (objects added, actions applied, resets) to host-side
// observers without coupling backends to them.
package bus

import "time"

// Event is one simulator lifecycle notification.
type Event struct {
	// ID uniquely identifies this event instance.
	ID string
	// Type is the event kind, e.g. "sim.action_applied".
	Type string
	// Source names the component that published the event.
	Source string
	// Time is when the event was published.
	Time time.Time
	// Data is event-type-specific payload.
	Data any
}

// Handler consumes one event. Delivery is synchronous on the publisher's
// goroutine; handlers must be quick and must not call back into the bus.
type Handler func(Event)

// Subscription is a live registration of a handler for an event type.
type Subscription interface {
	ID() string
	EventType() string
	Cancel()
}

// Bus routes published events to the handlers subscribed to their type.
type Bus interface {
	Publish(Event) error
	Subscribe(eventType string, h Handler) (Subscription, error)
	Close() error
}
