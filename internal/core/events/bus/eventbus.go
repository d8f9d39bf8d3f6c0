package bus

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// wildcard is the internal key for SubscribeAll handlers.
const wildcard = "*"

var ErrNilHandler = errors.New("event handler is nil")

// simpleEvent is a basic implementation of Event.
type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
}

func (e simpleEvent) Type() string         { return e.typeStr }
func (e simpleEvent) Source() string       { return e.source }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates a simple Event stamped with the current time.
func NewEvent(typ, src string, data any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data}
}

type subscription struct {
	id        string
	eventType string
	handler   EventHandler
	bus       *inMemoryBus
	mu        sync.Mutex
	active    bool
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	s.mu.Unlock()

	s.bus.remove(s)
	return nil
}

type inMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]*subscription
}

// New creates an empty EventBus.
func New() EventBus {
	return &inMemoryBus{handlers: make(map[string][]*subscription)}
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	s := &subscription{id: uuid.NewString(), eventType: eventType, handler: handler, bus: b, active: true}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], s)
	return s, nil
}

func (b *inMemoryBus) SubscribeAll(handler EventHandler) (Subscription, error) {
	return b.Subscribe(wildcard, handler)
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[s.eventType]
	if i := slices.Index(subs, s); i >= 0 {
		b.handlers[s.eventType] = slices.Delete(subs, i, i+1)
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.handlers[event.Type()])+len(b.handlers[wildcard]))
	subs = append(subs, b.handlers[event.Type()]...)
	if event.Type() != wildcard {
		subs = append(subs, b.handlers[wildcard]...)
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.handler(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
