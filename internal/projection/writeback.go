package projection

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/lunch-orders/internal/auth"
	"github.com/example/lunch-orders/internal/command"
	"github.com/example/lunch-orders/internal/validation"
)

// removeBreadFromOrders issues a compensating RemoveBread command, as the
// system actor, for every open order that still carries bread with the given
// filling. The commands go through the normal pipeline so the removals are
// ordinary audited events. Redelivery is safe: an order already compensated
// rejects the command with NO_BREAD_ON_ORDER, which is success here.
func (p *Projector) removeBreadFromOrders(ctx context.Context, fillingID uuid.UUID) error {
	system := auth.SystemActor()

	for _, o := range p.queries.ActiveOrdersWithFilling(ctx, fillingID.String()) {
		if !o.Bread {
			continue
		}

		orderID, err := uuid.Parse(o.ID)
		if err != nil {
			return fmt.Errorf("read model order has malformed id %q: %w", o.ID, err)
		}

		outcome, err := p.dispatcher.HandleForUser(ctx, system, command.RemoveBread{OrderID: orderID})
		if err != nil {
			return fmt.Errorf("failed to remove bread from order %s: %w", o.ID, err)
		}
		if outcome.Accepted {
			p.log.Info("removed bread from order after filling change",
				zap.String("order_id", o.ID),
				zap.String("filling_id", fillingID.String()),
				zap.String("commit_id", outcome.CommitID.String()))
			continue
		}
		if alreadyCompensated(outcome) {
			continue
		}
		return fmt.Errorf("bread removal rejected for order %s: %v", o.ID, outcome.Reasons)
	}
	return nil
}

// alreadyCompensated reports whether every rejection reason means the order
// no longer needs the write-back.
func alreadyCompensated(outcome command.Outcome) bool {
	for _, r := range outcome.Reasons {
		switch r.Code {
		case validation.CodeNoBreadOnOrder, validation.CodeOrderClosed:
		default:
			return false
		}
	}
	return len(outcome.Reasons) > 0
}
