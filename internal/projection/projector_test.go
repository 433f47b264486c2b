package projection

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/lunch-orders/internal/auth"
	"github.com/example/lunch-orders/internal/command"
	"github.com/example/lunch-orders/internal/domain/aggregate"
	"github.com/example/lunch-orders/internal/domain/calendar"
	"github.com/example/lunch-orders/internal/domain/menu"
	"github.com/example/lunch-orders/internal/domain/order"
	"github.com/example/lunch-orders/internal/infrastructure/store"
	"github.com/example/lunch-orders/internal/infrastructure/store/mocks"
	"github.com/example/lunch-orders/internal/query"
	"github.com/example/lunch-orders/internal/readmodel"
	"github.com/example/lunch-orders/internal/validation"
)

// fakeDispatcher records every dispatched command and answers with a
// scripted outcome.
type fakeDispatcher struct {
	Calls    []dispatchedCommand
	Outcome  command.Outcome
	Outcomes map[uuid.UUID]command.Outcome
	Err      error
}

type dispatchedCommand struct {
	Actor auth.Actor
	Cmd   command.Command
}

func (f *fakeDispatcher) HandleForUser(_ context.Context, actor auth.Actor, cmd command.Command) (command.Outcome, error) {
	f.Calls = append(f.Calls, dispatchedCommand{Actor: actor, Cmd: cmd})
	if f.Err != nil {
		return command.Outcome{}, f.Err
	}
	if outcome, ok := f.Outcomes[cmd.TargetID()]; ok {
		return outcome, nil
	}
	return f.Outcome, nil
}

func newTestProjector() (*Projector, *mocks.MockReadStore, *fakeDispatcher) {
	readStore := mocks.NewMockReadStore()

	registry := aggregate.NewRegistry()
	menu.RegisterEvents(registry)
	calendar.RegisterEvents(registry)
	order.RegisterEvents(registry)

	dispatcher := &fakeDispatcher{Outcome: command.Outcome{Accepted: true, CommitID: uuid.New()}}
	queries := query.NewHandler(readStore, zap.NewNop())
	return NewProjector(readStore, registry, queries, dispatcher, zap.NewNop()), readStore, dispatcher
}

func envelope(t *testing.T, streamID string, version int, event aggregate.Event) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	raw, err := json.Marshal(store.Event{
		ID:        uuid.NewString(),
		StreamID:  streamID,
		EventType: event.EventType(),
		Data:      data,
		Metadata:  store.Metadata{EventType: event.EventType(), CommitID: uuid.NewString()},
		Version:   version,
	})
	require.NoError(t, err)
	return raw
}

// ============================================
// Subscription Handler Tests
// ============================================

func TestProjector_HandleMessage_ProjectsDecodedEvent(t *testing.T) {
	p, readStore, _ := newTestProjector()
	menuID := uuid.New()
	created := time.Now().UTC()

	msg := envelope(t, "menu-x", 0, menu.MenuCreated{MenuID: menuID, Name: "Menu", Editor: "ed-1", CreatedAt: created})
	require.NoError(t, p.HandleMessage(context.Background(), nil, msg))

	doc, found, err := readStore.Get(context.Background(), store.CollectionMenus, menuID.String())
	require.NoError(t, err)
	require.True(t, found)
	m := doc.(*readmodel.Menu)
	assert.Equal(t, "Menu", m.Name)
	assert.Equal(t, "ed-1", m.Editor)
	assert.NotNil(t, m.Fillings)
	assert.Equal(t, 1, m.Version)
}

func TestProjector_HandleMessage_UnknownEventTypeIsFatal(t *testing.T) {
	p, _, _ := newTestProjector()

	raw, err := json.Marshal(store.Event{
		ID:       uuid.NewString(),
		StreamID: "menu-x",
		Data:     []byte(`{}`),
		Metadata: store.Metadata{EventType: "MenuExploded"},
	})
	require.NoError(t, err)

	var unknown *aggregate.UnknownEventTypeError
	assert.ErrorAs(t, p.HandleMessage(context.Background(), nil, raw), &unknown)
}

func TestProjector_HandleMessage_MalformedEnvelope(t *testing.T) {
	p, _, _ := newTestProjector()

	assert.Error(t, p.HandleMessage(context.Background(), nil, []byte("not json")))
}

// ============================================
// Idempotency Tests
// ============================================

func TestProjector_RedeliveryConverges(t *testing.T) {
	p, readStore, _ := newTestProjector()
	ctx := context.Background()
	menuID := uuid.New()
	fillingID := uuid.New()

	require.NoError(t, p.Apply(ctx, menu.MenuCreated{MenuID: menuID, Name: "Menu", Editor: "ed-1"}))
	added := menu.FillingAdded{MenuID: menuID, FillingID: fillingID, Name: "Cheese", AllowsBread: true, Editor: "ed-1"}
	require.NoError(t, p.Apply(ctx, added))

	// Deliver the same event again: the filling is replaced, not duplicated.
	require.NoError(t, p.Apply(ctx, added))

	doc, found, err := readStore.Get(ctx, store.CollectionMenus, menuID.String())
	require.NoError(t, err)
	require.True(t, found)
	m := doc.(*readmodel.Menu)
	require.Len(t, m.Fillings, 1)
	assert.Equal(t, "Cheese", m.Fillings[0].Name)
	assert.Equal(t, 3, m.Version)
}

// ============================================
// Calendar Projection Tests
// ============================================

func TestProjector_CalendarLifecycle(t *testing.T) {
	p, readStore, _ := newTestProjector()
	ctx := context.Background()
	calendarID := uuid.New()

	require.NoError(t, p.Apply(ctx, calendar.CalendarCreated{CalendarID: calendarID, OrdersOpenBeyond: "2026-09-01", Editor: "ed-1"}))
	require.NoError(t, p.Apply(ctx, calendar.DateWithdrawn{CalendarID: calendarID, Date: "2026-09-10", Editor: "ed-1"}))
	require.NoError(t, p.Apply(ctx, calendar.DateWithdrawn{CalendarID: calendarID, Date: "2026-09-03", Editor: "ed-1"}))
	require.NoError(t, p.Apply(ctx, calendar.DateReinstated{CalendarID: calendarID, Date: "2026-09-10", Editor: "ed-2"}))
	require.NoError(t, p.Apply(ctx, calendar.OrdersOpenCutoffMoved{CalendarID: calendarID, OrdersOpenBeyond: "2026-09-02", Editor: "ed-2"}))

	doc, found, err := readStore.Get(ctx, store.CollectionCalendars, calendarID.String())
	require.NoError(t, err)
	require.True(t, found)
	c := doc.(*readmodel.Calendar)
	assert.Equal(t, []string{"2026-09-03"}, c.WithdrawnDates)
	assert.Equal(t, "2026-09-02", c.OrdersOpenBeyond)
	assert.Equal(t, 5, c.Version)
}

// ============================================
// Order Projection Tests
// ============================================

func TestProjector_OrderLifecycle(t *testing.T) {
	p, readStore, _ := newTestProjector()
	ctx := context.Background()
	orderID := uuid.New()
	fillingID := uuid.New()
	newFilling := uuid.New()

	require.NoError(t, p.Apply(ctx, order.OrderPlaced{
		OrderID:    orderID,
		MenuID:     uuid.New(),
		CalendarID: uuid.New(),
		Editor:     "ed-1",
		Date:       "2026-09-10",
		FillingID:  fillingID,
		Bread:      true,
	}))
	require.NoError(t, p.Apply(ctx, order.OrderFillingChanged{OrderID: orderID, FillingID: newFilling, Editor: "ed-1"}))
	require.NoError(t, p.Apply(ctx, order.BreadRemoved{OrderID: orderID, Editor: "ed-1"}))
	require.NoError(t, p.Apply(ctx, order.OrderCancelled{OrderID: orderID, Editor: "ed-1", Reason: "away"}))

	doc, found, err := readStore.Get(ctx, store.CollectionOrders, orderID.String())
	require.NoError(t, err)
	require.True(t, found)
	o := doc.(*readmodel.Order)
	assert.Equal(t, newFilling.String(), o.FillingID)
	assert.False(t, o.Bread)
	assert.Equal(t, readmodel.OrderStatusCancelled, o.Status)
	assert.Equal(t, 4, o.Version)
}

// ============================================
// Bread Write-Back Tests
// ============================================

func seedOrder(readStore *mocks.MockReadStore, fillingID uuid.UUID, bread bool, status string) uuid.UUID {
	id := uuid.New()
	readStore.SetData(store.CollectionOrders, id.String(), &readmodel.Order{
		ID:        id.String(),
		Editor:    "ed-1",
		Date:      "2026-09-10",
		FillingID: fillingID.String(),
		Bread:     bread,
		Status:    status,
		Version:   1,
	})
	return id
}

func TestProjector_FillingStopsAllowingBread_RemovesBreadFromOpenOrders(t *testing.T) {
	p, readStore, dispatcher := newTestProjector()
	ctx := context.Background()
	menuID := uuid.New()
	fillingID := uuid.New()

	withBread := seedOrder(readStore, fillingID, true, readmodel.OrderStatusPlaced)
	seedOrder(readStore, fillingID, false, readmodel.OrderStatusPlaced)    // no bread: nothing to do
	seedOrder(readStore, fillingID, true, readmodel.OrderStatusCancelled)  // closed: not active
	seedOrder(readStore, uuid.New(), true, readmodel.OrderStatusPlaced)    // different filling

	err := p.Apply(ctx, menu.FillingUpdated{MenuID: menuID, FillingID: fillingID, Name: "Soup", AllowsBread: false, Editor: "ed-2"})
	require.NoError(t, err)

	require.Len(t, dispatcher.Calls, 1)
	call := dispatcher.Calls[0]
	assert.Equal(t, auth.SystemActor(), call.Actor)
	removeCmd, ok := call.Cmd.(command.RemoveBread)
	require.True(t, ok)
	assert.Equal(t, withBread, removeCmd.OrderID)
}

func TestProjector_FillingStillAllowsBread_NoWriteBack(t *testing.T) {
	p, readStore, dispatcher := newTestProjector()
	fillingID := uuid.New()
	seedOrder(readStore, fillingID, true, readmodel.OrderStatusPlaced)

	err := p.Apply(context.Background(), menu.FillingUpdated{MenuID: uuid.New(), FillingID: fillingID, Name: "Cheese", AllowsBread: true, Editor: "ed-2"})

	require.NoError(t, err)
	assert.Empty(t, dispatcher.Calls)
}

func TestProjector_WriteBack_AlreadyCompensatedRejectionIsFine(t *testing.T) {
	p, readStore, dispatcher := newTestProjector()
	fillingID := uuid.New()
	orderID := seedOrder(readStore, fillingID, true, readmodel.OrderStatusPlaced)

	// The projection lagged: the order already lost its bread by the time the
	// command lands. That rejection means the work is done.
	dispatcher.Outcomes = map[uuid.UUID]command.Outcome{
		orderID: {Reasons: []validation.Reason{{Code: validation.CodeNoBreadOnOrder}}},
	}

	err := p.Apply(context.Background(), menu.FillingUpdated{MenuID: uuid.New(), FillingID: fillingID, AllowsBread: false, Editor: "ed-2"})

	require.NoError(t, err)
	assert.Len(t, dispatcher.Calls, 1)
}

func TestProjector_WriteBack_OtherRejectionIsFatal(t *testing.T) {
	p, readStore, dispatcher := newTestProjector()
	fillingID := uuid.New()
	orderID := seedOrder(readStore, fillingID, true, readmodel.OrderStatusPlaced)

	dispatcher.Outcomes = map[uuid.UUID]command.Outcome{
		orderID: {Reasons: []validation.Reason{{Code: validation.CodeConcurrencyConflict}}},
	}

	err := p.Apply(context.Background(), menu.FillingUpdated{MenuID: uuid.New(), FillingID: fillingID, AllowsBread: false, Editor: "ed-2"})

	assert.Error(t, err)
}

// ============================================
// Routing Tests
// ============================================

type strayEvent struct{}

func (strayEvent) EventType() string { return "StrayEvent" }

func TestProjector_Apply_UnmappedEventIsFatal(t *testing.T) {
	p, _, _ := newTestProjector()

	err := p.Apply(context.Background(), strayEvent{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "StrayEvent")
}
