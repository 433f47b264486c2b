package aggregate

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Event is a domain event: an immutable fact about one aggregate instance.
// EventType must be a stable logical name; it is the tag carried in stored
// event metadata and the key both the router and the registry dispatch on.
// It must work on the zero value.
type Event interface {
	EventType() string
}

// StreamID derives the event store stream name for one aggregate instance:
// the aggregate type with a lowered first letter, a dash, and the id without
// dashes, e.g. "menu-1c0a..." for a Menu.
func StreamID(aggregateType string, id uuid.UUID) string {
	if aggregateType == "" {
		return ""
	}
	runes := []rune(aggregateType)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes) + "-" + strings.ReplaceAll(id.String(), "-", "")
}
