package bus

import "time"

// EventBus is an in-process pub/sub bus used to fan out match notifications.
//
// - Handlers subscribe by Event.Type(), or to every type with SubscribeAll.
// - Publish delivers synchronously in the caller goroutine, in subscription order.
// - Handler errors are joined and returned from Publish.
// - All methods are safe for concurrent use.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type()
	// followed by the wildcard subscribers.
	Publish(event Event) error
	// Subscribe registers a handler for one event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeAll registers a handler for every event type.
	SubscribeAll(handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is a no-op.
	Unsubscribe(Subscription) error
}

// Event is an immutable message transported by the bus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
)

// Subscription is a registered handler. Cancel is idempotent.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	Cancel() error
}
