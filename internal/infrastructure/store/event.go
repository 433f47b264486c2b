package store

import (
	"encoding/json"
	"time"
)

// Metadata travels alongside every stored event, separate from the payload.
// EventType is the logical type tag used for polymorphic decoding on load and
// in the projector; CommitID is shared by every event written in one save
// call so all effects of a single command can be found later.
type Metadata struct {
	EventType string `json:"event_type"`
	CommitID  string `json:"commit_id"`
}

// Event is the stored representation of a domain event. Data holds the
// opaque serialized payload; consumers decode it through the event registry
// using Metadata.EventType, never by inspecting the payload itself.
type Event struct {
	ID        string          `json:"id"`
	StreamID  string          `json:"stream_id"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Metadata  Metadata        `json:"metadata"`
	Version   int             `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
}
