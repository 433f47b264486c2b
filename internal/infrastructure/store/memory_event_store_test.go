package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	return nil
}

func testEvents(streamID string, from, count int) []Event {
	out := make([]Event, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Event{
			ID:       uuid.NewString(),
			StreamID: streamID,
			Metadata: Metadata{EventType: "SomethingHappened", CommitID: uuid.NewString()},
			Version:  from + i,
		})
	}
	return out
}

// ============================================
// Append Tests
// ============================================

func TestMemoryEventStore_AppendAndRead(t *testing.T) {
	es := NewMemoryEventStore(nil)
	ctx := context.Background()

	require.NoError(t, es.AppendToStream(ctx, "order-1", VersionNoStream, testEvents("order-1", 0, 2)))
	require.NoError(t, es.AppendToStream(ctx, "order-1", 1, testEvents("order-1", 2, 1)))

	events, err := es.ReadStream(ctx, "order-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, i, e.Version)
	}
}

func TestMemoryEventStore_ConflictOnStaleExpectedVersion(t *testing.T) {
	es := NewMemoryEventStore(nil)
	ctx := context.Background()

	require.NoError(t, es.AppendToStream(ctx, "order-1", VersionNoStream, testEvents("order-1", 0, 2)))

	// A writer that read the stream before the append above expects the
	// stream to still be new.
	err := es.AppendToStream(ctx, "order-1", VersionNoStream, testEvents("order-1", 0, 1))
	assert.ErrorIs(t, err, ErrConcurrencyConflict)

	// Nothing from the losing writer landed.
	events, readErr := es.ReadStream(ctx, "order-1")
	require.NoError(t, readErr)
	assert.Len(t, events, 2)
}

func TestMemoryEventStore_ConflictOnExistingStreamAsNew(t *testing.T) {
	es := NewMemoryEventStore(nil)
	ctx := context.Background()

	require.NoError(t, es.AppendToStream(ctx, "order-1", VersionNoStream, testEvents("order-1", 0, 1)))

	err := es.AppendToStream(ctx, "order-1", 5, testEvents("order-1", 6, 1))
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}

func TestMemoryEventStore_AppendNothingIsNoop(t *testing.T) {
	es := NewMemoryEventStore(nil)

	require.NoError(t, es.AppendToStream(context.Background(), "order-1", VersionNoStream, nil))

	_, err := es.ReadStream(context.Background(), "order-1")
	assert.ErrorIs(t, err, ErrStreamNotFound)
}

// ============================================
// Read Tests
// ============================================

func TestMemoryEventStore_ReadMissingStream(t *testing.T) {
	es := NewMemoryEventStore(nil)

	_, err := es.ReadStream(context.Background(), "order-unknown")

	assert.ErrorIs(t, err, ErrStreamNotFound)
}

func TestMemoryEventStore_ReadAllEvents_GlobalAppendOrder(t *testing.T) {
	es := NewMemoryEventStore(nil)
	ctx := context.Background()

	require.NoError(t, es.AppendToStream(ctx, "menu-1", VersionNoStream, testEvents("menu-1", 0, 1)))
	require.NoError(t, es.AppendToStream(ctx, "order-1", VersionNoStream, testEvents("order-1", 0, 1)))
	require.NoError(t, es.AppendToStream(ctx, "menu-1", 0, testEvents("menu-1", 1, 1)))

	all, err := es.ReadAllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "menu-1", all[0].StreamID)
	assert.Equal(t, "order-1", all[1].StreamID)
	assert.Equal(t, "menu-1", all[2].StreamID)
}

// ============================================
// Publishing Tests
// ============================================

func TestMemoryEventStore_PublishesEveryAppendedEvent(t *testing.T) {
	publisher := &recordingPublisher{}
	es := NewMemoryEventStore(publisher)

	require.NoError(t, es.AppendToStream(context.Background(), "order-1", VersionNoStream, testEvents("order-1", 0, 3)))

	assert.Equal(t, []string{"order-1", "order-1", "order-1"}, publisher.keys)
}

func TestMemoryEventStore_PublishFailureSurfacesAfterCommit(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	es := NewMemoryEventStore(publisher)
	ctx := context.Background()

	err := es.AppendToStream(ctx, "order-1", VersionNoStream, testEvents("order-1", 0, 1))
	assert.Error(t, err)

	// The append itself committed; only the publish failed.
	events, readErr := es.ReadStream(ctx, "order-1")
	require.NoError(t, readErr)
	assert.Len(t, events, 1)
}
