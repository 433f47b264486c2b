package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lunch-orders/internal/domain/aggregate"
)

func placedOrder(t *testing.T) (*Order, uuid.UUID) {
	t.Helper()
	o := NewOrder()
	id := uuid.New()
	require.NoError(t, o.Place(id, uuid.New(), uuid.New(), "2026-09-10", uuid.New(), false, "ed-1"))
	return o, id
}

// ============================================
// Place Tests
// ============================================

func TestOrder_Place(t *testing.T) {
	o := NewOrder()
	id := uuid.New()
	menuID := uuid.New()
	calendarID := uuid.New()
	fillingID := uuid.New()

	require.NoError(t, o.Place(id, menuID, calendarID, "2026-09-10", fillingID, true, "ed-1"))

	assert.Equal(t, id, o.AggregateID())
	assert.Equal(t, menuID, o.MenuID())
	assert.Equal(t, calendarID, o.CalendarID())
	assert.Equal(t, "2026-09-10", o.Date())
	assert.Equal(t, fillingID, o.FillingID())
	assert.True(t, o.HasBread())
	assert.Equal(t, "ed-1", o.Editor())
	assert.False(t, o.Cancelled())
	assert.Equal(t, aggregate.NewStreamVersion, o.Version())
	assert.Len(t, o.UncommittedEvents(), 1)
}

// ============================================
// Mutation Tests
// ============================================

func TestOrder_ChangeFillingAndDate(t *testing.T) {
	o, _ := placedOrder(t)
	newFilling := uuid.New()

	require.NoError(t, o.ChangeFilling(newFilling, "ed-1"))
	require.NoError(t, o.ChangeDate("2026-09-12", "ed-1"))

	assert.Equal(t, newFilling, o.FillingID())
	assert.Equal(t, "2026-09-12", o.Date())
	assert.Len(t, o.UncommittedEvents(), 3)
}

func TestOrder_BreadLifecycle(t *testing.T) {
	o, _ := placedOrder(t)
	require.False(t, o.HasBread())

	require.NoError(t, o.AddBread("ed-1"))
	assert.True(t, o.HasBread())

	require.NoError(t, o.RemoveBread("ed-1"))
	assert.False(t, o.HasBread())
}

func TestOrder_Cancel(t *testing.T) {
	o, id := placedOrder(t)

	require.NoError(t, o.Cancel("away that day", "ed-1"))

	assert.True(t, o.Cancelled())
	events := o.UncommittedEvents()
	cancelled, ok := events[len(events)-1].(OrderCancelled)
	require.True(t, ok)
	assert.Equal(t, id, cancelled.OrderID)
	assert.Equal(t, "away that day", cancelled.Reason)
}

// ============================================
// Replay Tests
// ============================================

func TestOrder_Replay_RebuildsState(t *testing.T) {
	id := uuid.New()
	fillingID := uuid.New()
	history := []aggregate.Event{
		OrderPlaced{OrderID: id, MenuID: uuid.New(), CalendarID: uuid.New(), Editor: "ed-1", Date: "2026-09-10", FillingID: fillingID, Bread: true},
		BreadRemoved{OrderID: id, Editor: "system"},
		OrderDateChanged{OrderID: id, Date: "2026-09-11", Editor: "ed-1"},
	}

	o := NewOrder()
	require.NoError(t, o.Replay(history))

	assert.Equal(t, id, o.AggregateID())
	assert.False(t, o.HasBread())
	assert.Equal(t, "2026-09-11", o.Date())
	assert.Equal(t, fillingID, o.FillingID())
	assert.Equal(t, 2, o.Version())
}
