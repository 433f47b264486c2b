package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/lunch-orders/internal/infrastructure/store"
)

// ErrNilAggregate indicates a caller contract violation.
var ErrNilAggregate = errors.New("aggregate must not be nil")

// Store is the aggregate repository: it loads aggregates by replaying their
// stream and saves uncommitted events with an optimistic concurrency check
// and commit metadata.
type Store struct {
	events   store.EventStoreInterface
	registry *Registry
}

func NewStore(events store.EventStoreInterface, registry *Registry) *Store {
	return &Store{events: events, registry: registry}
}

// Load reads the aggregate's stream, decodes each record through the
// registry using the event type tag carried in metadata, and replays the
// history into the freshly constructed aggregate. store.ErrStreamNotFound
// propagates so callers can distinguish "does not exist" from failure.
func (s *Store) Load(ctx context.Context, agg Aggregate, id uuid.UUID) error {
	if agg == nil {
		return ErrNilAggregate
	}

	records, err := s.events.ReadStream(ctx, StreamID(agg.AggregateType(), id))
	if err != nil {
		return err
	}

	events := make([]Event, 0, len(records))
	for _, record := range records {
		event, err := s.registry.Decode(record.Metadata.EventType, record.Data)
		if err != nil {
			return err
		}
		events = append(events, event)
	}

	return agg.Replay(events)
}

// Save appends the aggregate's uncommitted events to its stream. Every
// record carries the event type tag and the commit id in metadata; the
// commit id is shared across the whole save so everything written by one
// command can be found later. The aggregate's version selects the append
// mode: the creation sentinel demands a new stream, any version >= 0 demands
// the stream sit at exactly that version. Conflicts surface as
// store.ErrConcurrencyConflict and are not retried here. On success the
// uncommitted buffer is cleared and the version advances past the newly
// committed events.
func (s *Store) Save(ctx context.Context, agg Aggregate, commitID uuid.UUID) error {
	if agg == nil {
		return ErrNilAggregate
	}

	events := agg.UncommittedEvents()
	if len(events) == 0 {
		return nil
	}

	var expected int
	switch v := agg.Version(); {
	case v == NewStreamVersion:
		expected = store.VersionNoStream
	case v >= 0:
		expected = v
	default:
		return fmt.Errorf("aggregate %s has uncommitted events in version state %d", agg.AggregateID(), agg.Version())
	}

	streamID := StreamID(agg.AggregateType(), agg.AggregateID())
	now := time.Now().UTC()

	records := make([]store.Event, len(events))
	for i, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", event.EventType(), err)
		}
		records[i] = store.Event{
			ID:        uuid.NewString(),
			StreamID:  streamID,
			EventType: event.EventType(),
			Data:      data,
			Metadata: store.Metadata{
				EventType: event.EventType(),
				CommitID:  commitID.String(),
			},
			Version:   expected + 1 + i,
			Timestamp: now,
		}
	}

	if err := s.events.AppendToStream(ctx, streamID, expected, records); err != nil {
		return err
	}

	agg.commit(expected + len(events))
	return nil
}
