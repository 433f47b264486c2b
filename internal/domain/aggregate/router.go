package aggregate

import (
	"errors"
	"fmt"
)

var (
	// ErrNilEvent indicates a caller contract violation: events are created
	// by aggregate behaviors and are never nil.
	ErrNilEvent = errors.New("event must not be nil")

	// ErrNilHandler indicates a broken registration at aggregate
	// construction time.
	ErrNilHandler = errors.New("event handler must not be nil")
)

// HandlerNotFoundError is returned when an event reaches an aggregate that
// has no handler registered for its type. It is a hard error: an unhandled
// event type means state rebuilding and persistence have drifted apart, and
// must fail loudly rather than be skipped.
type HandlerNotFoundError struct {
	EventType string
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no event handler registered for %q", e.EventType)
}

// Router maps event type tags to the aggregate method that mutates state
// for that exact type. The mapping is built once, in the aggregate's
// constructor; adding a new event type means registering one more handler
// there, nothing else.
type Router struct {
	handlers map[string]func(Event)
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]func(Event))}
}

// On registers the typed handler for E's event type. It panics on duplicate
// or nil registrations since both are programmer errors in a constructor.
func On[E Event](r *Router, handler func(E)) {
	if handler == nil {
		panic(ErrNilHandler)
	}
	var zero E
	eventType := zero.EventType()
	if _, ok := r.handlers[eventType]; ok {
		panic(fmt.Sprintf("duplicate event handler registered for %q", eventType))
	}
	r.handlers[eventType] = func(event Event) {
		handler(event.(E))
	}
}

// Dispatch routes the event to its registered handler.
func (r *Router) Dispatch(event Event) error {
	if event == nil {
		return ErrNilEvent
	}
	handler, ok := r.handlers[event.EventType()]
	if !ok {
		return &HandlerNotFoundError{EventType: event.EventType()}
	}
	handler(event)
	return nil
}
