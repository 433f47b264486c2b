package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/lunch-orders/internal/auth"
	"github.com/example/lunch-orders/internal/domain/aggregate"
	"github.com/example/lunch-orders/internal/domain/calendar"
	"github.com/example/lunch-orders/internal/domain/menu"
	"github.com/example/lunch-orders/internal/domain/order"
	"github.com/example/lunch-orders/internal/infrastructure/store"
	"github.com/example/lunch-orders/internal/query"
	"github.com/example/lunch-orders/internal/validation"
)

// Handler drives the write side: load or construct the aggregate, validate,
// raise events through behaviors, save with a fresh commit id. Rejections
// come back as data in the Outcome; errors mean the command could not be
// processed at all and may be retried by the caller.
type Handler struct {
	aggregates *aggregate.Store
	queries    *query.Handler
	log        *zap.Logger
}

func NewHandler(aggregates *aggregate.Store, queries *query.Handler, log *zap.Logger) *Handler {
	return &Handler{aggregates: aggregates, queries: queries, log: log}
}

// HandleForUser processes one command on behalf of the given actor. It fails
// closed on a missing identity and refuses to start once the context is
// cancelled, so no events are raised for work the caller has abandoned.
func (h *Handler) HandleForUser(ctx context.Context, actor auth.Actor, cmd Command) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if actor.ID == "" {
		return Outcome{}, auth.ErrMissingIdentity
	}

	switch c := cmd.(type) {
	case CreateMenu:
		return h.createMenu(ctx, actor, c)
	case RenameMenu:
		return h.renameMenu(ctx, actor, c)
	case AddFilling:
		return h.addFilling(ctx, actor, c)
	case UpdateFilling:
		return h.updateFilling(ctx, actor, c)
	case CreateCalendar:
		return h.createCalendar(ctx, actor, c)
	case WithdrawDate:
		return h.withdrawDate(ctx, actor, c)
	case ReinstateDate:
		return h.reinstateDate(ctx, actor, c)
	case MoveOrdersOpenCutoff:
		return h.moveCutoff(ctx, actor, c)
	case PlaceOrder:
		return h.placeOrder(ctx, actor, c)
	case ChangeOrderFilling:
		return h.changeOrderFilling(ctx, actor, c)
	case ChangeOrderDate:
		return h.changeOrderDate(ctx, actor, c)
	case AddBread:
		return h.addBread(ctx, actor, c)
	case RemoveBread:
		return h.removeBread(ctx, actor, c)
	case CancelOrder:
		return h.cancelOrder(ctx, actor, c)
	default:
		h.log.Warn("rejected unknown command", zap.String("type", fmt.Sprintf("%T", cmd)))
		return rejected(validation.Reason{
			Code:    validation.CodeUnknownCommand,
			Message: fmt.Sprintf("no handler for command %T", cmd),
		}), nil
	}
}

// save appends the aggregate's uncommitted events under one commit id. An
// optimistic concurrency conflict is a rejection, never retried silently:
// the aggregate was validated against state that no longer holds.
func (h *Handler) save(ctx context.Context, agg aggregate.Aggregate) (Outcome, error) {
	commitID := uuid.New()
	if err := h.aggregates.Save(ctx, agg, commitID); err != nil {
		if errors.Is(err, store.ErrConcurrencyConflict) {
			h.log.Info("rejected command on concurrency conflict",
				zap.String("aggregate_type", agg.AggregateType()),
				zap.String("aggregate_id", agg.AggregateID().String()))
			return rejected(validation.Reason{
				Code:    validation.CodeConcurrencyConflict,
				Message: "aggregate was modified concurrently, re-read and retry",
			}), nil
		}
		return Outcome{}, err
	}

	h.log.Info("accepted command",
		zap.String("aggregate_type", agg.AggregateType()),
		zap.String("aggregate_id", agg.AggregateID().String()),
		zap.String("commit_id", commitID.String()))
	return accepted(commitID), nil
}

// Menu commands

func (h *Handler) createMenu(ctx context.Context, actor auth.Actor, c CreateMenu) (Outcome, error) {
	m := menu.NewMenu()
	if res := validateCreateMenu(ctx, h.queries, actor, c, m); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := m.Create(c.MenuID, c.Name, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, m)
}

func (h *Handler) renameMenu(ctx context.Context, actor auth.Actor, c RenameMenu) (Outcome, error) {
	m, reject, err := h.loadMenu(ctx, c.MenuID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateRenameMenu(c, m); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := m.Rename(c.Name, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, m)
}

func (h *Handler) addFilling(ctx context.Context, actor auth.Actor, c AddFilling) (Outcome, error) {
	m, reject, err := h.loadMenu(ctx, c.MenuID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateAddFilling(c, m); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := m.AddFilling(c.FillingID, c.Name, c.AllowsBread, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, m)
}

func (h *Handler) updateFilling(ctx context.Context, actor auth.Actor, c UpdateFilling) (Outcome, error) {
	m, reject, err := h.loadMenu(ctx, c.MenuID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateUpdateFilling(c, m); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := m.UpdateFilling(c.FillingID, c.Name, c.AllowsBread, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, m)
}

// Calendar commands

func (h *Handler) createCalendar(ctx context.Context, actor auth.Actor, c CreateCalendar) (Outcome, error) {
	cal := calendar.NewCalendar()
	if res := validateCreateCalendar(ctx, h.queries, actor, c, cal); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := cal.Create(c.CalendarID, c.OrdersOpenBeyond, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, cal)
}

func (h *Handler) withdrawDate(ctx context.Context, actor auth.Actor, c WithdrawDate) (Outcome, error) {
	cal, reject, err := h.loadCalendar(ctx, c.CalendarID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateWithdrawDate(c, cal); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := cal.Withdraw(c.Date, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, cal)
}

func (h *Handler) reinstateDate(ctx context.Context, actor auth.Actor, c ReinstateDate) (Outcome, error) {
	cal, reject, err := h.loadCalendar(ctx, c.CalendarID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateReinstateDate(c, cal); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := cal.Reinstate(c.Date, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, cal)
}

func (h *Handler) moveCutoff(ctx context.Context, actor auth.Actor, c MoveOrdersOpenCutoff) (Outcome, error) {
	cal, reject, err := h.loadCalendar(ctx, c.CalendarID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateMoveCutoff(c, cal); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := cal.MoveCutoff(c.OrdersOpenBeyond, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, cal)
}

// Order commands

func (h *Handler) placeOrder(ctx context.Context, actor auth.Actor, c PlaceOrder) (Outcome, error) {
	o := order.NewOrder()
	if res := validatePlaceOrder(ctx, h.queries, actor, c, o); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := o.Place(c.OrderID, c.MenuID, c.CalendarID, c.Date, c.FillingID, c.Bread, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, o)
}

func (h *Handler) changeOrderFilling(ctx context.Context, actor auth.Actor, c ChangeOrderFilling) (Outcome, error) {
	o, reject, err := h.loadOrder(ctx, c.OrderID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateChangeOrderFilling(ctx, h.queries, c, o); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := o.ChangeFilling(c.FillingID, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, o)
}

func (h *Handler) changeOrderDate(ctx context.Context, actor auth.Actor, c ChangeOrderDate) (Outcome, error) {
	o, reject, err := h.loadOrder(ctx, c.OrderID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateChangeOrderDate(ctx, h.queries, c, o); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := o.ChangeDate(c.Date, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, o)
}

func (h *Handler) addBread(ctx context.Context, actor auth.Actor, c AddBread) (Outcome, error) {
	o, reject, err := h.loadOrder(ctx, c.OrderID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateAddBread(ctx, h.queries, c, o); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := o.AddBread(actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, o)
}

func (h *Handler) removeBread(ctx context.Context, actor auth.Actor, c RemoveBread) (Outcome, error) {
	o, reject, err := h.loadOrder(ctx, c.OrderID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateRemoveBread(c, o); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := o.RemoveBread(actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, o)
}

func (h *Handler) cancelOrder(ctx context.Context, actor auth.Actor, c CancelOrder) (Outcome, error) {
	o, reject, err := h.loadOrder(ctx, c.OrderID)
	if err != nil || reject != nil {
		return deref(reject), err
	}
	if res := validateCancelOrder(c, o); !res.Valid() {
		return rejectedResult(res), nil
	}
	if err := o.Cancel(c.Reason, actor.ID); err != nil {
		return Outcome{}, err
	}
	return h.save(ctx, o)
}

// Load helpers. A missing stream is a rejection, not an error: the caller
// asked to mutate something that does not exist.

func (h *Handler) loadMenu(ctx context.Context, id uuid.UUID) (*menu.Menu, *Outcome, error) {
	m := menu.NewMenu()
	reject, err := h.load(ctx, m, id, "menu")
	return m, reject, err
}

func (h *Handler) loadCalendar(ctx context.Context, id uuid.UUID) (*calendar.Calendar, *Outcome, error) {
	cal := calendar.NewCalendar()
	reject, err := h.load(ctx, cal, id, "calendar")
	return cal, reject, err
}

func (h *Handler) loadOrder(ctx context.Context, id uuid.UUID) (*order.Order, *Outcome, error) {
	o := order.NewOrder()
	reject, err := h.load(ctx, o, id, "order")
	return o, reject, err
}

func (h *Handler) load(ctx context.Context, agg aggregate.Aggregate, id uuid.UUID, kind string) (*Outcome, error) {
	err := h.aggregates.Load(ctx, agg, id)
	if err == nil {
		return nil, nil
	}
	if errors.Is(err, store.ErrStreamNotFound) {
		out := rejected(validation.Reason{
			Code:    validation.CodeAggregateMissing,
			Message: fmt.Sprintf("%s %s does not exist", kind, id),
		})
		return &out, nil
	}
	return nil, err
}

func deref(out *Outcome) Outcome {
	if out == nil {
		return Outcome{}
	}
	return *out
}
