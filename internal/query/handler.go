package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/lunch-orders/internal/infrastructure/store"
	"github.com/example/lunch-orders/internal/readmodel"
)

// Handler serves read-model lookups for the API, the command validators and
// the projector's cross-checks. Read failures are logged and reported as
// absence; the read side is never the system of record.
type Handler struct {
	readStore store.ReadStoreInterface
	log       *zap.Logger
}

func NewHandler(readStore store.ReadStoreInterface, log *zap.Logger) *Handler {
	return &Handler{readStore: readStore, log: log}
}

// Menus

func (h *Handler) GetMenu(ctx context.Context, id string) (*readmodel.Menu, bool) {
	doc, ok, err := h.readStore.Get(ctx, store.CollectionMenus, id)
	if err != nil {
		h.log.Error("failed to get menu", zap.String("id", id), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return doc.(*readmodel.Menu), true
}

func (h *Handler) ListMenus(ctx context.Context) []*readmodel.Menu {
	docs, err := h.readStore.GetAll(ctx, store.CollectionMenus)
	if err != nil {
		h.log.Error("failed to list menus", zap.Error(err))
		return nil
	}
	menus := make([]*readmodel.Menu, 0, len(docs))
	for _, doc := range docs {
		menus = append(menus, doc.(*readmodel.Menu))
	}
	return menus
}

// Calendars

func (h *Handler) GetCalendar(ctx context.Context, id string) (*readmodel.Calendar, bool) {
	doc, ok, err := h.readStore.Get(ctx, store.CollectionCalendars, id)
	if err != nil {
		h.log.Error("failed to get calendar", zap.String("id", id), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return doc.(*readmodel.Calendar), true
}

// Orders

func (h *Handler) GetOrder(ctx context.Context, id string) (*readmodel.Order, bool) {
	doc, ok, err := h.readStore.Get(ctx, store.CollectionOrders, id)
	if err != nil {
		h.log.Error("failed to get order", zap.String("id", id), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return doc.(*readmodel.Order), true
}

func (h *Handler) ListOrders(ctx context.Context) []*readmodel.Order {
	docs, err := h.readStore.GetAll(ctx, store.CollectionOrders)
	if err != nil {
		h.log.Error("failed to list orders", zap.Error(err))
		return nil
	}
	orders := make([]*readmodel.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.(*readmodel.Order))
	}
	return orders
}

func (h *Handler) ListOrdersByEditor(ctx context.Context, editor string) []*readmodel.Order {
	var out []*readmodel.Order
	for _, o := range h.ListOrders(ctx) {
		if o.Editor == editor {
			out = append(out, o)
		}
	}
	return out
}

func (h *Handler) ListOrdersForDate(ctx context.Context, date string) []*readmodel.Order {
	var out []*readmodel.Order
	for _, o := range h.ListOrders(ctx) {
		if o.Date == date {
			out = append(out, o)
		}
	}
	return out
}

// ActiveOrdersWithFilling returns uncancelled orders holding the given
// filling. The projector uses it to find orders that need compensating
// bread removal after a filling stops allowing bread.
func (h *Handler) ActiveOrdersWithFilling(ctx context.Context, fillingID string) []*readmodel.Order {
	var out []*readmodel.Order
	for _, o := range h.ListOrders(ctx) {
		if o.FillingID == fillingID && o.Status != readmodel.OrderStatusCancelled {
			out = append(out, o)
		}
	}
	return out
}
