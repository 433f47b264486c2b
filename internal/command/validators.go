package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/lunch-orders/internal/auth"
	"github.com/example/lunch-orders/internal/domain/calendar"
	"github.com/example/lunch-orders/internal/domain/menu"
	"github.com/example/lunch-orders/internal/domain/order"
	"github.com/example/lunch-orders/internal/query"
	"github.com/example/lunch-orders/internal/readmodel"
	"github.com/example/lunch-orders/internal/validation"
)

// Validators are pure pre-flight checks: they run against the command and
// either a freshly constructed aggregate (creation) or a loaded one
// (mutation), before any event is raised. They collect every applicable
// reason instead of stopping at the first.

// Shared checks

func requireCreation(res *validation.Result, targetID uuid.UUID, version int, actor auth.Actor) {
	if targetID == uuid.Nil {
		res.Add(validation.CodeIDMismatch, "target id is required")
	}
	if version >= 0 {
		res.Add(validation.CodeAlreadyCreated, "aggregate has already been created")
	}
	if actor.ID == "" {
		res.Add(validation.CodeEditorRequired, "an editor identity is required")
	}
}

func requireMatchingID(res *validation.Result, commandID, aggregateID uuid.UUID) {
	if commandID != aggregateID {
		res.Addf(validation.CodeIDMismatch,
			"command targets %s but aggregate is %s", commandID, aggregateID)
	}
}

func requireName(res *validation.Result, name string) {
	if name == "" {
		res.Add(validation.CodeNameRequired, "a name is required")
	}
}

func requireOrderOpen(res *validation.Result, o *order.Order) {
	if o.Cancelled() {
		res.Add(validation.CodeOrderClosed, "order has been cancelled")
	}
}

// requireOrderableDate checks a date against the calendar projection: it
// must parse, must not be withdrawn, and must not be before the
// orders-open-beyond cutoff.
func requireOrderableDate(res *validation.Result, cal *readmodel.Calendar, date string) {
	if !calendar.ValidDate(date) {
		res.Addf(validation.CodeInvalidDate, "%q is not a valid date", date)
		return
	}
	if cal == nil {
		res.Add(validation.CodeAggregateMissing, "ordering calendar not found")
		return
	}
	if cal.IsWithdrawn(date) {
		res.Addf(validation.CodeDateWithdrawn, "ordering is withdrawn on %s", date)
	}
	if date < cal.OrdersOpenBeyond {
		res.Addf(validation.CodeStaleDate,
			"date %s is before the orders-open cutoff %s", date, cal.OrdersOpenBeyond)
	}
}

// requireFilling checks a filling choice against the menu projection,
// including whether bread may accompany it.
func requireFilling(res *validation.Result, m *readmodel.Menu, fillingID uuid.UUID, bread bool) {
	if m == nil {
		res.Add(validation.CodeAggregateMissing, "menu not found")
		return
	}
	f, ok := m.Filling(fillingID.String())
	if !ok {
		res.Addf(validation.CodeUnknownFilling, "menu has no filling %s", fillingID)
		return
	}
	if bread && !f.AllowsBread {
		res.Addf(validation.CodeBreadNotAllowed, "filling %q does not allow bread", f.Name)
	}
}

// Menu validators

func validateCreateMenu(ctx context.Context, q *query.Handler, actor auth.Actor, c CreateMenu, m *menu.Menu) validation.Result {
	var res validation.Result
	requireCreation(&res, c.MenuID, m.Version(), actor)
	requireName(&res, c.Name)
	if _, exists := q.GetMenu(ctx, c.MenuID.String()); exists {
		res.Addf(validation.CodeAlreadyExists, "menu %s already exists", c.MenuID)
	}
	return res
}

func validateRenameMenu(c RenameMenu, m *menu.Menu) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.MenuID, m.AggregateID())
	requireName(&res, c.Name)
	return res
}

func validateAddFilling(c AddFilling, m *menu.Menu) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.MenuID, m.AggregateID())
	requireName(&res, c.Name)
	if c.FillingID == uuid.Nil {
		res.Add(validation.CodeIDMismatch, "filling id is required")
	} else if _, ok := m.Filling(c.FillingID); ok {
		res.Addf(validation.CodeAlreadyExists, "filling %s already exists", c.FillingID)
	}
	return res
}

func validateUpdateFilling(c UpdateFilling, m *menu.Menu) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.MenuID, m.AggregateID())
	requireName(&res, c.Name)
	if _, ok := m.Filling(c.FillingID); !ok {
		res.Addf(validation.CodeUnknownFilling, "menu has no filling %s", c.FillingID)
	}
	return res
}

// Calendar validators

func validateCreateCalendar(ctx context.Context, q *query.Handler, actor auth.Actor, c CreateCalendar, cal *calendar.Calendar) validation.Result {
	var res validation.Result
	requireCreation(&res, c.CalendarID, cal.Version(), actor)
	if !calendar.ValidDate(c.OrdersOpenBeyond) {
		res.Addf(validation.CodeInvalidDate, "%q is not a valid cutoff date", c.OrdersOpenBeyond)
	}
	if _, exists := q.GetCalendar(ctx, c.CalendarID.String()); exists {
		res.Addf(validation.CodeAlreadyExists, "calendar %s already exists", c.CalendarID)
	}
	return res
}

func validateWithdrawDate(c WithdrawDate, cal *calendar.Calendar) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.CalendarID, cal.AggregateID())
	if !calendar.ValidDate(c.Date) {
		res.Addf(validation.CodeInvalidDate, "%q is not a valid date", c.Date)
		return res
	}
	if c.Date < cal.OrdersOpenBeyond() {
		res.Addf(validation.CodeStaleDate,
			"cannot withdraw %s: orders are already closed before %s", c.Date, cal.OrdersOpenBeyond())
	}
	if cal.IsWithdrawn(c.Date) {
		res.Addf(validation.CodeAlreadyExists, "date %s is already withdrawn", c.Date)
	}
	return res
}

func validateReinstateDate(c ReinstateDate, cal *calendar.Calendar) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.CalendarID, cal.AggregateID())
	if !calendar.ValidDate(c.Date) {
		res.Addf(validation.CodeInvalidDate, "%q is not a valid date", c.Date)
		return res
	}
	if c.Date < cal.OrdersOpenBeyond() {
		res.Addf(validation.CodeStaleDate,
			"cannot reinstate %s: orders are already closed before %s", c.Date, cal.OrdersOpenBeyond())
	}
	if !cal.IsWithdrawn(c.Date) {
		res.Addf(validation.CodeDateNotWithdrawn, "date %s is not withdrawn", c.Date)
	}
	return res
}

func validateMoveCutoff(c MoveOrdersOpenCutoff, cal *calendar.Calendar) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.CalendarID, cal.AggregateID())
	if !calendar.ValidDate(c.OrdersOpenBeyond) {
		res.Addf(validation.CodeInvalidDate, "%q is not a valid cutoff date", c.OrdersOpenBeyond)
	}
	return res
}

// Order validators

func validatePlaceOrder(ctx context.Context, q *query.Handler, actor auth.Actor, c PlaceOrder, o *order.Order) validation.Result {
	var res validation.Result
	requireCreation(&res, c.OrderID, o.Version(), actor)

	if _, exists := q.GetOrder(ctx, c.OrderID.String()); exists {
		res.Addf(validation.CodeAlreadyExists, "order %s already exists", c.OrderID)
	}

	m, _ := q.GetMenu(ctx, c.MenuID.String())
	requireFilling(&res, m, c.FillingID, c.Bread)

	cal, _ := q.GetCalendar(ctx, c.CalendarID.String())
	requireOrderableDate(&res, cal, c.Date)
	return res
}

func validateChangeOrderFilling(ctx context.Context, q *query.Handler, c ChangeOrderFilling, o *order.Order) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.OrderID, o.AggregateID())
	requireOrderOpen(&res, o)

	m, _ := q.GetMenu(ctx, o.MenuID().String())
	requireFilling(&res, m, c.FillingID, o.HasBread())
	return res
}

func validateChangeOrderDate(ctx context.Context, q *query.Handler, c ChangeOrderDate, o *order.Order) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.OrderID, o.AggregateID())
	requireOrderOpen(&res, o)

	cal, _ := q.GetCalendar(ctx, o.CalendarID().String())
	requireOrderableDate(&res, cal, c.Date)
	return res
}

func validateAddBread(ctx context.Context, q *query.Handler, c AddBread, o *order.Order) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.OrderID, o.AggregateID())
	requireOrderOpen(&res, o)

	if o.HasBread() {
		res.Add(validation.CodeBreadAlreadyOnOrder, "order already has bread")
	}
	m, _ := q.GetMenu(ctx, o.MenuID().String())
	requireFilling(&res, m, o.FillingID(), true)
	return res
}

func validateRemoveBread(c RemoveBread, o *order.Order) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.OrderID, o.AggregateID())
	requireOrderOpen(&res, o)
	if !o.HasBread() {
		res.Add(validation.CodeNoBreadOnOrder, "order has no bread to remove")
	}
	return res
}

func validateCancelOrder(c CancelOrder, o *order.Order) validation.Result {
	var res validation.Result
	requireMatchingID(&res, c.OrderID, o.AggregateID())
	requireOrderOpen(&res, o)
	return res
}
