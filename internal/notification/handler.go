package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/lunch-orders/internal/domain/order"
	"github.com/example/lunch-orders/internal/email"
	"github.com/example/lunch-orders/internal/infrastructure/store"
	"github.com/example/lunch-orders/internal/query"
)

// Sender is the slice of the email service the notifier uses.
type Sender interface {
	SendOrderConfirmation(to string, o email.OrderSummary) error
	SendOrderCancelled(to, orderID, date, reason string) error
}

// RecipientResolver maps an editor identity to an email address. A false
// return means no address is known and the notification is skipped.
type RecipientResolver func(editor string) (string, bool)

// EditorAddress is the default resolver: editor identities that are email
// addresses are used directly.
func EditorAddress(editor string) (string, bool) {
	if strings.Contains(editor, "@") {
		return editor, true
	}
	return "", false
}

// Handler watches the merged event feed and emails editors about their
// orders. Notifications are best effort: missing context (no address, no
// menu document yet) skips the email, but a send failure propagates so the
// message is redelivered.
type Handler struct {
	queries *query.Handler
	sender  Sender
	resolve RecipientResolver
	log     *zap.Logger
}

func NewHandler(queries *query.Handler, sender Sender, resolve RecipientResolver, log *zap.Logger) *Handler {
	if resolve == nil {
		resolve = EditorAddress
	}
	return &Handler{queries: queries, sender: sender, resolve: resolve, log: log}
}

// HandleEvent is the subscription handler. Event types the notifier does not
// care about are acknowledged untouched.
func (h *Handler) HandleEvent(ctx context.Context, _, value []byte) error {
	var record store.Event
	if err := json.Unmarshal(value, &record); err != nil {
		return fmt.Errorf("failed to decode event envelope: %w", err)
	}

	switch record.Metadata.EventType {
	case order.EventOrderPlaced:
		return h.handleOrderPlaced(ctx, record)
	case order.EventOrderCancelled:
		return h.handleOrderCancelled(ctx, record)
	default:
		return nil
	}
}

func (h *Handler) handleOrderPlaced(ctx context.Context, record store.Event) error {
	var e order.OrderPlaced
	if err := json.Unmarshal(record.Data, &e); err != nil {
		return fmt.Errorf("failed to decode %s: %w", record.Metadata.EventType, err)
	}

	to, ok := h.resolve(e.Editor)
	if !ok {
		h.log.Info("no address for editor, skipping confirmation",
			zap.String("editor", e.Editor),
			zap.String("order_id", e.OrderID.String()))
		return nil
	}

	// Resolve the filling name from the menu projection; fall back to the
	// raw id if the projection has not caught up yet.
	fillingName := e.FillingID.String()
	if m, found := h.queries.GetMenu(ctx, e.MenuID.String()); found {
		if f, found := m.Filling(e.FillingID.String()); found {
			fillingName = f.Name
		}
	}

	summary := email.OrderSummary{
		OrderID:     e.OrderID.String(),
		Date:        e.Date,
		FillingName: fillingName,
		Bread:       e.Bread,
	}
	if err := h.sender.SendOrderConfirmation(to, summary); err != nil {
		h.log.Error("failed to send order confirmation",
			zap.String("to", to),
			zap.String("order_id", e.OrderID.String()),
			zap.Error(err))
		return err
	}

	h.log.Info("order confirmation sent",
		zap.String("to", to),
		zap.String("order_id", e.OrderID.String()))
	return nil
}

func (h *Handler) handleOrderCancelled(ctx context.Context, record store.Event) error {
	var e order.OrderCancelled
	if err := json.Unmarshal(record.Data, &e); err != nil {
		return fmt.Errorf("failed to decode %s: %w", record.Metadata.EventType, err)
	}

	to, ok := h.resolve(e.Editor)
	if !ok {
		h.log.Info("no address for editor, skipping cancellation notice",
			zap.String("editor", e.Editor),
			zap.String("order_id", e.OrderID.String()))
		return nil
	}

	date := ""
	if o, found := h.queries.GetOrder(ctx, e.OrderID.String()); found {
		date = o.Date
	}

	if err := h.sender.SendOrderCancelled(to, e.OrderID.String(), date, e.Reason); err != nil {
		h.log.Error("failed to send cancellation notice",
			zap.String("to", to),
			zap.String("order_id", e.OrderID.String()),
			zap.Error(err))
		return err
	}

	h.log.Info("cancellation notice sent",
		zap.String("to", to),
		zap.String("order_id", e.OrderID.String()))
	return nil
}
