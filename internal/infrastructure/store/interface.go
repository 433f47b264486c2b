package store

import (
	"context"
	"errors"
)

// VersionNoStream is the expected-version token for appends that require the
// stream to not exist yet (first save of a new aggregate).
const VersionNoStream = -1

var (
	// ErrStreamNotFound is returned by ReadStream when no events exist for
	// the requested stream.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrConcurrencyConflict is returned by AppendToStream when the stream's
	// current version does not match the caller's expected version. It is
	// surfaced to the caller as a decision, never retried by the store.
	ErrConcurrencyConflict = errors.New("optimistic concurrency conflict: stream version mismatch")
)

// EventStoreInterface is the append-only event log.
//
// AppendToStream appends all events atomically or not at all. expectedVersion
// must be VersionNoStream for new streams, or the version of the last
// committed event for existing streams; any mismatch is ErrConcurrencyConflict.
// Event versions are zero-based within a stream.
type EventStoreInterface interface {
	AppendToStream(ctx context.Context, streamID string, expectedVersion int, events []Event) error
	ReadStream(ctx context.Context, streamID string) ([]Event, error)
	ReadAllEvents(ctx context.Context) ([]Event, error)
}

// EventPublisher fans committed events out to the merged event feed.
// kafka.Producer satisfies it; stores treat a nil publisher as "no fan-out".
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}
