package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/lunch-orders/internal/domain/aggregate"
)

const AggregateType = "Order"

// Order is one editor's lunch order for one date: a filling choice from a
// menu plus a bread flag. State mutates only through the handlers mounted
// in NewOrder.
type Order struct {
	aggregate.Root

	id         uuid.UUID
	menuID     uuid.UUID
	calendarID uuid.UUID
	editor     string
	date       string
	fillingID  uuid.UUID
	bread      bool
	cancelled  bool
}

// NewOrder constructs an empty, uninitialized order with its event routes
// mounted.
func NewOrder() *Order {
	o := &Order{}
	r := aggregate.NewRouter()
	aggregate.On(r, o.onPlaced)
	aggregate.On(r, o.onFillingChanged)
	aggregate.On(r, o.onDateChanged)
	aggregate.On(r, o.onBreadAdded)
	aggregate.On(r, o.onBreadRemoved)
	aggregate.On(r, o.onCancelled)
	o.Mount(r)
	return o
}

func (o *Order) AggregateType() string   { return AggregateType }
func (o *Order) AggregateID() uuid.UUID  { return o.id }
func (o *Order) MenuID() uuid.UUID       { return o.menuID }
func (o *Order) CalendarID() uuid.UUID   { return o.calendarID }
func (o *Order) Editor() string          { return o.editor }
func (o *Order) Date() string            { return o.date }
func (o *Order) FillingID() uuid.UUID    { return o.fillingID }
func (o *Order) HasBread() bool          { return o.bread }
func (o *Order) Cancelled() bool         { return o.cancelled }

// Behaviors

func (o *Order) Place(id, menuID, calendarID uuid.UUID, date string, fillingID uuid.UUID, bread bool, editor string) error {
	return o.Raise(OrderPlaced{
		OrderID:    id,
		MenuID:     menuID,
		CalendarID: calendarID,
		Editor:     editor,
		Date:       date,
		FillingID:  fillingID,
		Bread:      bread,
		PlacedAt:   time.Now().UTC(),
	})
}

func (o *Order) ChangeFilling(fillingID uuid.UUID, editor string) error {
	return o.Raise(OrderFillingChanged{
		OrderID:   o.id,
		FillingID: fillingID,
		Editor:    editor,
		ChangedAt: time.Now().UTC(),
	})
}

func (o *Order) ChangeDate(date, editor string) error {
	return o.Raise(OrderDateChanged{
		OrderID:   o.id,
		Date:      date,
		Editor:    editor,
		ChangedAt: time.Now().UTC(),
	})
}

func (o *Order) AddBread(editor string) error {
	return o.Raise(BreadAdded{
		OrderID: o.id,
		Editor:  editor,
		AddedAt: time.Now().UTC(),
	})
}

func (o *Order) RemoveBread(editor string) error {
	return o.Raise(BreadRemoved{
		OrderID:   o.id,
		Editor:    editor,
		RemovedAt: time.Now().UTC(),
	})
}

func (o *Order) Cancel(reason, editor string) error {
	return o.Raise(OrderCancelled{
		OrderID:     o.id,
		Reason:      reason,
		Editor:      editor,
		CancelledAt: time.Now().UTC(),
	})
}

// Event handlers

func (o *Order) onPlaced(e OrderPlaced) {
	o.id = e.OrderID
	o.menuID = e.MenuID
	o.calendarID = e.CalendarID
	o.editor = e.Editor
	o.date = e.Date
	o.fillingID = e.FillingID
	o.bread = e.Bread
}

func (o *Order) onFillingChanged(e OrderFillingChanged) {
	o.fillingID = e.FillingID
}

func (o *Order) onDateChanged(e OrderDateChanged) {
	o.date = e.Date
}

func (o *Order) onBreadAdded(BreadAdded) {
	o.bread = true
}

func (o *Order) onBreadRemoved(BreadRemoved) {
	o.bread = false
}

func (o *Order) onCancelled(OrderCancelled) {
	o.cancelled = true
}
