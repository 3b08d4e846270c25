package bus

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrBusClosed is returned for any operation on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// NewEvent builds an event with a fresh ID and the current time.
func NewEvent(eventType, source string, data any) Event {
	return Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		Source: source,
		Time:   time.Now(),
		Data:   data,
	}
}

type subscription struct {
	id        string
	eventType string
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// inMemoryBus delivers events synchronously to subscribers. It is safe for
// concurrent use, though the simulation core drives it from a single
// goroutine.
type inMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler
	closed   bool
}

// New creates an empty in-memory bus.
func New() Bus {
	return &inMemoryBus{handlers: make(map[string]map[string]Handler)}
}

func (b *inMemoryBus) Publish(e Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	byID := b.handlers[e.Type]
	handlers := make([]Handler, 0, len(byID))
	for _, h := range byID {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
	return nil
}

func (b *inMemoryBus) Subscribe(eventType string, h Handler) (Subscription, error) {
	if h == nil {
		return nil, errors.New("nil handler")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	id := uuid.NewString()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]Handler)
	}
	b.handlers[eventType][id] = h

	return &subscription{
		id:        id,
		eventType: eventType,
		cancel: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if byID, ok := b.handlers[eventType]; ok {
				delete(byID, id)
			}
		},
	}, nil
}

func (b *inMemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[string]map[string]Handler)
	return nil
}
