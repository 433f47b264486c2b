package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/lunch-orders/internal/infrastructure/store"
)

// MockEventStore is an in-memory store.EventStoreInterface that records
// calls and lets tests inject failures.
type MockEventStore struct {
	mu      sync.RWMutex
	streams map[string][]store.Event
	order   []store.Event

	// For tracking calls in tests
	AppendCalls    []AppendCall
	AppendErr      error
	AppendCallback func(ctx context.Context, streamID string, expectedVersion int, events []store.Event) error
	ReadErr        error
}

// AppendCall records parameters passed to AppendToStream.
type AppendCall struct {
	StreamID        string
	ExpectedVersion int
	Events          []store.Event
}

func NewMockEventStore() *MockEventStore {
	return &MockEventStore{
		streams:     make(map[string][]store.Event),
		AppendCalls: make([]AppendCall, 0),
	}
}

// AppendToStream records the call and appends with the same expected-version
// check as the real stores.
func (m *MockEventStore) AppendToStream(ctx context.Context, streamID string, expectedVersion int, events []store.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCalls = append(m.AppendCalls, AppendCall{
		StreamID:        streamID,
		ExpectedVersion: expectedVersion,
		Events:          events,
	})

	if m.AppendCallback != nil {
		return m.AppendCallback(ctx, streamID, expectedVersion, events)
	}
	if m.AppendErr != nil {
		return m.AppendErr
	}

	head := store.VersionNoStream
	if existing := m.streams[streamID]; len(existing) > 0 {
		head = existing[len(existing)-1].Version
	}
	if head != expectedVersion {
		return store.ErrConcurrencyConflict
	}

	m.streams[streamID] = append(m.streams[streamID], events...)
	m.order = append(m.order, events...)
	return nil
}

func (m *MockEventStore) ReadStream(_ context.Context, streamID string) ([]store.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	events, ok := m.streams[streamID]
	if !ok || len(events) == 0 {
		return nil, store.ErrStreamNotFound
	}
	out := make([]store.Event, len(events))
	copy(out, events)
	return out, nil
}

func (m *MockEventStore) ReadAllEvents(_ context.Context) ([]store.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	out := make([]store.Event, len(m.order))
	copy(out, m.order)
	return out, nil
}

// SetEvents seeds a stream directly, keeping the global order sorted by
// version within the stream's insertion order.
func (m *MockEventStore) SetEvents(streamID string, events []store.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.streams[streamID] = events
	m.order = m.order[:0]
	keys := make([]string, 0, len(m.streams))
	for k := range m.streams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.order = append(m.order, m.streams[k]...)
	}
}

// Reset clears all events and recorded calls.
func (m *MockEventStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streams = make(map[string][]store.Event)
	m.order = nil
	m.AppendCalls = make([]AppendCall, 0)
	m.AppendErr = nil
	m.AppendCallback = nil
	m.ReadErr = nil
}
