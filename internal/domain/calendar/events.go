package calendar

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/lunch-orders/internal/domain/aggregate"
)

const (
	EventCalendarCreated       = "CalendarCreated"
	EventDateWithdrawn         = "DateWithdrawn"
	EventDateReinstated        = "DateReinstated"
	EventOrdersOpenCutoffMoved = "OrdersOpenCutoffMoved"
)

type CalendarCreated struct {
	CalendarID       uuid.UUID `json:"calendar_id"`
	OrdersOpenBeyond string    `json:"orders_open_beyond"`
	Editor           string    `json:"editor"`
	CreatedAt        time.Time `json:"created_at"`
}

func (CalendarCreated) EventType() string { return EventCalendarCreated }

type DateWithdrawn struct {
	CalendarID  uuid.UUID `json:"calendar_id"`
	Date        string    `json:"date"`
	Editor      string    `json:"editor"`
	WithdrawnAt time.Time `json:"withdrawn_at"`
}

func (DateWithdrawn) EventType() string { return EventDateWithdrawn }

type DateReinstated struct {
	CalendarID   uuid.UUID `json:"calendar_id"`
	Date         string    `json:"date"`
	Editor       string    `json:"editor"`
	ReinstatedAt time.Time `json:"reinstated_at"`
}

func (DateReinstated) EventType() string { return EventDateReinstated }

type OrdersOpenCutoffMoved struct {
	CalendarID       uuid.UUID `json:"calendar_id"`
	OrdersOpenBeyond string    `json:"orders_open_beyond"`
	Editor           string    `json:"editor"`
	MovedAt          time.Time `json:"moved_at"`
}

func (OrdersOpenCutoffMoved) EventType() string { return EventOrdersOpenCutoffMoved }

// RegisterEvents adds decoders for every calendar event to the registry.
func RegisterEvents(r *aggregate.Registry) {
	aggregate.RegisterEvent[CalendarCreated](r)
	aggregate.RegisterEvent[DateWithdrawn](r)
	aggregate.RegisterEvent[DateReinstated](r)
	aggregate.RegisterEvent[OrdersOpenCutoffMoved](r)
}
