package command

import "github.com/google/uuid"

// Command is the sealed set of requested state changes. The unexported
// marker keeps the set closed so the handler's type switch stays exhaustive
// by construction; a new command means a new variant here and a new case
// there, checked at compile time rather than through a runtime name switch.
type Command interface {
	// TargetID is the aggregate instance the command addresses.
	TargetID() uuid.UUID

	isCommand()
}

// Menu commands

type CreateMenu struct {
	MenuID uuid.UUID `json:"menu_id"`
	Name   string    `json:"name"`
}

type RenameMenu struct {
	MenuID uuid.UUID `json:"menu_id"`
	Name   string    `json:"name"`
}

type AddFilling struct {
	MenuID      uuid.UUID `json:"menu_id"`
	FillingID   uuid.UUID `json:"filling_id"`
	Name        string    `json:"name"`
	AllowsBread bool      `json:"allows_bread"`
}

type UpdateFilling struct {
	MenuID      uuid.UUID `json:"menu_id"`
	FillingID   uuid.UUID `json:"filling_id"`
	Name        string    `json:"name"`
	AllowsBread bool      `json:"allows_bread"`
}

// Calendar commands

type CreateCalendar struct {
	CalendarID       uuid.UUID `json:"calendar_id"`
	OrdersOpenBeyond string    `json:"orders_open_beyond"`
}

type WithdrawDate struct {
	CalendarID uuid.UUID `json:"calendar_id"`
	Date       string    `json:"date"`
}

type ReinstateDate struct {
	CalendarID uuid.UUID `json:"calendar_id"`
	Date       string    `json:"date"`
}

type MoveOrdersOpenCutoff struct {
	CalendarID       uuid.UUID `json:"calendar_id"`
	OrdersOpenBeyond string    `json:"orders_open_beyond"`
}

// Order commands

type PlaceOrder struct {
	OrderID    uuid.UUID `json:"order_id"`
	MenuID     uuid.UUID `json:"menu_id"`
	CalendarID uuid.UUID `json:"calendar_id"`
	Date       string    `json:"date"`
	FillingID  uuid.UUID `json:"filling_id"`
	Bread      bool      `json:"bread"`
}

type ChangeOrderFilling struct {
	OrderID   uuid.UUID `json:"order_id"`
	FillingID uuid.UUID `json:"filling_id"`
}

type ChangeOrderDate struct {
	OrderID uuid.UUID `json:"order_id"`
	Date    string    `json:"date"`
}

type AddBread struct {
	OrderID uuid.UUID `json:"order_id"`
}

type RemoveBread struct {
	OrderID uuid.UUID `json:"order_id"`
}

type CancelOrder struct {
	OrderID uuid.UUID `json:"order_id"`
	Reason  string    `json:"reason"`
}

func (c CreateMenu) TargetID() uuid.UUID           { return c.MenuID }
func (c RenameMenu) TargetID() uuid.UUID           { return c.MenuID }
func (c AddFilling) TargetID() uuid.UUID           { return c.MenuID }
func (c UpdateFilling) TargetID() uuid.UUID        { return c.MenuID }
func (c CreateCalendar) TargetID() uuid.UUID       { return c.CalendarID }
func (c WithdrawDate) TargetID() uuid.UUID         { return c.CalendarID }
func (c ReinstateDate) TargetID() uuid.UUID        { return c.CalendarID }
func (c MoveOrdersOpenCutoff) TargetID() uuid.UUID { return c.CalendarID }
func (c PlaceOrder) TargetID() uuid.UUID           { return c.OrderID }
func (c ChangeOrderFilling) TargetID() uuid.UUID   { return c.OrderID }
func (c ChangeOrderDate) TargetID() uuid.UUID      { return c.OrderID }
func (c AddBread) TargetID() uuid.UUID             { return c.OrderID }
func (c RemoveBread) TargetID() uuid.UUID          { return c.OrderID }
func (c CancelOrder) TargetID() uuid.UUID          { return c.OrderID }

func (CreateMenu) isCommand()           {}
func (RenameMenu) isCommand()           {}
func (AddFilling) isCommand()           {}
func (UpdateFilling) isCommand()        {}
func (CreateCalendar) isCommand()       {}
func (WithdrawDate) isCommand()         {}
func (ReinstateDate) isCommand()        {}
func (MoveOrdersOpenCutoff) isCommand() {}
func (PlaceOrder) isCommand()           {}
func (ChangeOrderFilling) isCommand()   {}
func (ChangeOrderDate) isCommand()      {}
func (AddBread) isCommand()             {}
func (RemoveBread) isCommand()          {}
func (CancelOrder) isCommand()          {}
