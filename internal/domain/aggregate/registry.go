package aggregate

import (
	"encoding/json"
	"fmt"
)

// UnknownEventTypeError is returned when a stored event carries a type tag
// no decoder was registered for. Like a missing router handler, it is fatal:
// skipping the event would silently desynchronize replayed state or read
// models from the log.
type UnknownEventTypeError struct {
	EventType string
}

func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("no decoder registered for event type %q", e.EventType)
}

// Registry resolves the logical event type tag carried in stored event
// metadata to a concrete decoder. It replaces runtime type-name reflection
// with an explicit tag→decoder table populated once at startup.
type Registry struct {
	decoders map[string]func(data json.RawMessage) (Event, error)
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]func(json.RawMessage) (Event, error))}
}

// RegisterEvent adds a JSON decoder for E under E's event type tag.
func RegisterEvent[E Event](r *Registry) {
	var zero E
	eventType := zero.EventType()
	if _, ok := r.decoders[eventType]; ok {
		panic(fmt.Sprintf("duplicate event decoder registered for %q", eventType))
	}
	r.decoders[eventType] = func(data json.RawMessage) (Event, error) {
		var event E
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", eventType, err)
		}
		return event, nil
	}
}

// Decode turns a stored payload back into its typed event.
func (r *Registry) Decode(eventType string, data json.RawMessage) (Event, error) {
	decode, ok := r.decoders[eventType]
	if !ok {
		return nil, &UnknownEventTypeError{EventType: eventType}
	}
	return decode(data)
}
