package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/lunch-orders/internal/domain/aggregate"
)

const (
	EventOrderPlaced         = "OrderPlaced"
	EventOrderFillingChanged = "OrderFillingChanged"
	EventOrderDateChanged    = "OrderDateChanged"
	EventBreadAdded          = "BreadAdded"
	EventBreadRemoved        = "BreadRemoved"
	EventOrderCancelled      = "OrderCancelled"
)

type OrderPlaced struct {
	OrderID    uuid.UUID `json:"order_id"`
	MenuID     uuid.UUID `json:"menu_id"`
	CalendarID uuid.UUID `json:"calendar_id"`
	Editor     string    `json:"editor"`
	Date       string    `json:"date"`
	FillingID  uuid.UUID `json:"filling_id"`
	Bread      bool      `json:"bread"`
	PlacedAt   time.Time `json:"placed_at"`
}

func (OrderPlaced) EventType() string { return EventOrderPlaced }

type OrderFillingChanged struct {
	OrderID   uuid.UUID `json:"order_id"`
	FillingID uuid.UUID `json:"filling_id"`
	Editor    string    `json:"editor"`
	ChangedAt time.Time `json:"changed_at"`
}

func (OrderFillingChanged) EventType() string { return EventOrderFillingChanged }

type OrderDateChanged struct {
	OrderID   uuid.UUID `json:"order_id"`
	Date      string    `json:"date"`
	Editor    string    `json:"editor"`
	ChangedAt time.Time `json:"changed_at"`
}

func (OrderDateChanged) EventType() string { return EventOrderDateChanged }

type BreadAdded struct {
	OrderID uuid.UUID `json:"order_id"`
	Editor  string    `json:"editor"`
	AddedAt time.Time `json:"added_at"`
}

func (BreadAdded) EventType() string { return EventBreadAdded }

type BreadRemoved struct {
	OrderID   uuid.UUID `json:"order_id"`
	Editor    string    `json:"editor"`
	RemovedAt time.Time `json:"removed_at"`
}

func (BreadRemoved) EventType() string { return EventBreadRemoved }

type OrderCancelled struct {
	OrderID     uuid.UUID `json:"order_id"`
	Reason      string    `json:"reason"`
	Editor      string    `json:"editor"`
	CancelledAt time.Time `json:"cancelled_at"`
}

func (OrderCancelled) EventType() string { return EventOrderCancelled }

// RegisterEvents adds decoders for every order event to the registry.
func RegisterEvents(r *aggregate.Registry) {
	aggregate.RegisterEvent[OrderPlaced](r)
	aggregate.RegisterEvent[OrderFillingChanged](r)
	aggregate.RegisterEvent[OrderDateChanged](r)
	aggregate.RegisterEvent[BreadAdded](r)
	aggregate.RegisterEvent[BreadRemoved](r)
	aggregate.RegisterEvent[OrderCancelled](r)
}
