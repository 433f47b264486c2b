package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryEventStore keeps streams in memory. It is used for local development
// and as the backing store in tests; it enforces the same expected-version
// contract as the durable implementations.
type MemoryEventStore struct {
	mu        sync.RWMutex
	streams   map[string][]Event
	order     []Event // global append order, for ReadAllEvents
	publisher EventPublisher
}

func NewMemoryEventStore(publisher EventPublisher) *MemoryEventStore {
	return &MemoryEventStore{
		streams:   make(map[string][]Event),
		publisher: publisher,
	}
}

func (es *MemoryEventStore) AppendToStream(ctx context.Context, streamID string, expectedVersion int, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	es.mu.Lock()
	current := VersionNoStream
	if existing := es.streams[streamID]; len(existing) > 0 {
		current = existing[len(existing)-1].Version
	}
	if current != expectedVersion {
		es.mu.Unlock()
		return ErrConcurrencyConflict
	}
	es.streams[streamID] = append(es.streams[streamID], events...)
	es.order = append(es.order, events...)
	es.mu.Unlock()

	if es.publisher != nil {
		for _, event := range events {
			if err := es.publisher.Publish(ctx, streamID, event); err != nil {
				return err
			}
		}
	}
	return nil
}

func (es *MemoryEventStore) ReadStream(ctx context.Context, streamID string) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	events, ok := es.streams[streamID]
	if !ok || len(events) == 0 {
		return nil, ErrStreamNotFound
	}

	out := make([]Event, len(events))
	copy(out, events)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (es *MemoryEventStore) ReadAllEvents(ctx context.Context) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	out := make([]Event, len(es.order))
	copy(out, es.order)
	return out, nil
}
