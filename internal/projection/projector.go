package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/example/lunch-orders/internal/auth"
	"github.com/example/lunch-orders/internal/command"
	"github.com/example/lunch-orders/internal/domain/aggregate"
	"github.com/example/lunch-orders/internal/domain/calendar"
	"github.com/example/lunch-orders/internal/domain/menu"
	"github.com/example/lunch-orders/internal/domain/order"
	"github.com/example/lunch-orders/internal/infrastructure/store"
	"github.com/example/lunch-orders/internal/query"
	"github.com/example/lunch-orders/internal/readmodel"
)

// CommandDispatcher is the slice of the command handler the projector needs
// for compensating write-backs.
type CommandDispatcher interface {
	HandleForUser(ctx context.Context, actor auth.Actor, cmd command.Command) (command.Outcome, error)
}

// Projector folds the merged event feed into the denormalized read models.
// Every apply is an idempotent upsert, so a redelivered message converges on
// the same document instead of corrupting it. An event type the projector
// does not recognize is fatal: skipping it would silently desynchronize the
// read models from the log.
type Projector struct {
	readStore  store.ReadStoreInterface
	registry   *aggregate.Registry
	queries    *query.Handler
	dispatcher CommandDispatcher
	log        *zap.Logger
}

func NewProjector(readStore store.ReadStoreInterface, registry *aggregate.Registry, queries *query.Handler, dispatcher CommandDispatcher, log *zap.Logger) *Projector {
	return &Projector{
		readStore:  readStore,
		registry:   registry,
		queries:    queries,
		dispatcher: dispatcher,
		log:        log,
	}
}

// HandleMessage is the subscription handler: it decodes one stored event
// envelope and applies it. A nil return acknowledges the message; any error
// leaves it unacknowledged and stops the hosting process.
func (p *Projector) HandleMessage(ctx context.Context, _, value []byte) error {
	var record store.Event
	if err := json.Unmarshal(value, &record); err != nil {
		return fmt.Errorf("failed to decode event envelope: %w", err)
	}

	event, err := p.registry.Decode(record.Metadata.EventType, record.Data)
	if err != nil {
		return err
	}

	p.log.Debug("projecting event",
		zap.String("event_type", record.Metadata.EventType),
		zap.String("stream_id", record.StreamID),
		zap.Int("version", record.Version))

	return p.Apply(ctx, event)
}

// Apply routes one decoded event to its projection.
func (p *Projector) Apply(ctx context.Context, event aggregate.Event) error {
	switch e := event.(type) {
	case menu.MenuCreated:
		return p.applyMenuCreated(ctx, e)
	case menu.MenuRenamed:
		return p.applyMenuRenamed(ctx, e)
	case menu.FillingAdded:
		return p.applyFillingAdded(ctx, e)
	case menu.FillingUpdated:
		return p.applyFillingUpdated(ctx, e)
	case calendar.CalendarCreated:
		return p.applyCalendarCreated(ctx, e)
	case calendar.DateWithdrawn:
		return p.applyDateWithdrawn(ctx, e)
	case calendar.DateReinstated:
		return p.applyDateReinstated(ctx, e)
	case calendar.OrdersOpenCutoffMoved:
		return p.applyCutoffMoved(ctx, e)
	case order.OrderPlaced:
		return p.applyOrderPlaced(ctx, e)
	case order.OrderFillingChanged:
		return p.applyOrderFillingChanged(ctx, e)
	case order.OrderDateChanged:
		return p.applyOrderDateChanged(ctx, e)
	case order.BreadAdded:
		return p.applyBreadAdded(ctx, e)
	case order.BreadRemoved:
		return p.applyBreadRemoved(ctx, e)
	case order.OrderCancelled:
		return p.applyOrderCancelled(ctx, e)
	default:
		return fmt.Errorf("no projection for event type %q", event.EventType())
	}
}

// Menu projections

func (p *Projector) applyMenuCreated(ctx context.Context, e menu.MenuCreated) error {
	return p.upsertMenu(ctx, e.MenuID.String(), func(m *readmodel.Menu) {
		m.Name = e.Name
		m.Editor = e.Editor
		m.CreatedAt = e.CreatedAt
		m.UpdatedAt = e.CreatedAt
		if m.Fillings == nil {
			m.Fillings = []readmodel.Filling{}
		}
	})
}

func (p *Projector) applyMenuRenamed(ctx context.Context, e menu.MenuRenamed) error {
	return p.upsertMenu(ctx, e.MenuID.String(), func(m *readmodel.Menu) {
		m.Name = e.Name
		m.Editor = e.Editor
		m.UpdatedAt = e.RenamedAt
	})
}

func (p *Projector) applyFillingAdded(ctx context.Context, e menu.FillingAdded) error {
	return p.upsertMenu(ctx, e.MenuID.String(), func(m *readmodel.Menu) {
		setFilling(m, readmodel.Filling{ID: e.FillingID.String(), Name: e.Name, AllowsBread: e.AllowsBread})
		m.Editor = e.Editor
		m.UpdatedAt = e.AddedAt
	})
}

func (p *Projector) applyFillingUpdated(ctx context.Context, e menu.FillingUpdated) error {
	err := p.upsertMenu(ctx, e.MenuID.String(), func(m *readmodel.Menu) {
		setFilling(m, readmodel.Filling{ID: e.FillingID.String(), Name: e.Name, AllowsBread: e.AllowsBread})
		m.Editor = e.Editor
		m.UpdatedAt = e.UpdatedAt
	})
	if err != nil {
		return err
	}

	// A filling that stopped allowing bread invalidates bread already on
	// open orders; compensate through the command pipeline.
	if !e.AllowsBread {
		return p.removeBreadFromOrders(ctx, e.FillingID)
	}
	return nil
}

// setFilling replaces the filling with the same id or appends it.
func setFilling(m *readmodel.Menu, f readmodel.Filling) {
	for i, existing := range m.Fillings {
		if existing.ID == f.ID {
			m.Fillings[i] = f
			return
		}
	}
	m.Fillings = append(m.Fillings, f)
}

// Calendar projections

func (p *Projector) applyCalendarCreated(ctx context.Context, e calendar.CalendarCreated) error {
	return p.upsertCalendar(ctx, e.CalendarID.String(), func(c *readmodel.Calendar) {
		c.OrdersOpenBeyond = e.OrdersOpenBeyond
		c.Editor = e.Editor
		c.UpdatedAt = e.CreatedAt
		if c.WithdrawnDates == nil {
			c.WithdrawnDates = []string{}
		}
	})
}

func (p *Projector) applyDateWithdrawn(ctx context.Context, e calendar.DateWithdrawn) error {
	return p.upsertCalendar(ctx, e.CalendarID.String(), func(c *readmodel.Calendar) {
		if !c.IsWithdrawn(e.Date) {
			c.WithdrawnDates = append(c.WithdrawnDates, e.Date)
			sort.Strings(c.WithdrawnDates)
		}
		c.Editor = e.Editor
		c.UpdatedAt = e.WithdrawnAt
	})
}

func (p *Projector) applyDateReinstated(ctx context.Context, e calendar.DateReinstated) error {
	return p.upsertCalendar(ctx, e.CalendarID.String(), func(c *readmodel.Calendar) {
		kept := c.WithdrawnDates[:0]
		for _, d := range c.WithdrawnDates {
			if d != e.Date {
				kept = append(kept, d)
			}
		}
		c.WithdrawnDates = kept
		c.Editor = e.Editor
		c.UpdatedAt = e.ReinstatedAt
	})
}

func (p *Projector) applyCutoffMoved(ctx context.Context, e calendar.OrdersOpenCutoffMoved) error {
	return p.upsertCalendar(ctx, e.CalendarID.String(), func(c *readmodel.Calendar) {
		c.OrdersOpenBeyond = e.OrdersOpenBeyond
		c.Editor = e.Editor
		c.UpdatedAt = e.MovedAt
	})
}

// Order projections

func (p *Projector) applyOrderPlaced(ctx context.Context, e order.OrderPlaced) error {
	return p.upsertOrder(ctx, e.OrderID.String(), func(o *readmodel.Order) {
		o.MenuID = e.MenuID.String()
		o.CalendarID = e.CalendarID.String()
		o.Editor = e.Editor
		o.Date = e.Date
		o.FillingID = e.FillingID.String()
		o.Bread = e.Bread
		o.Status = readmodel.OrderStatusPlaced
		o.PlacedAt = e.PlacedAt
		o.UpdatedAt = e.PlacedAt
	})
}

func (p *Projector) applyOrderFillingChanged(ctx context.Context, e order.OrderFillingChanged) error {
	return p.upsertOrder(ctx, e.OrderID.String(), func(o *readmodel.Order) {
		o.FillingID = e.FillingID.String()
		o.UpdatedAt = e.ChangedAt
	})
}

func (p *Projector) applyOrderDateChanged(ctx context.Context, e order.OrderDateChanged) error {
	return p.upsertOrder(ctx, e.OrderID.String(), func(o *readmodel.Order) {
		o.Date = e.Date
		o.UpdatedAt = e.ChangedAt
	})
}

func (p *Projector) applyBreadAdded(ctx context.Context, e order.BreadAdded) error {
	return p.upsertOrder(ctx, e.OrderID.String(), func(o *readmodel.Order) {
		o.Bread = true
		o.UpdatedAt = e.AddedAt
	})
}

func (p *Projector) applyBreadRemoved(ctx context.Context, e order.BreadRemoved) error {
	return p.upsertOrder(ctx, e.OrderID.String(), func(o *readmodel.Order) {
		o.Bread = false
		o.UpdatedAt = e.RemovedAt
	})
}

func (p *Projector) applyOrderCancelled(ctx context.Context, e order.OrderCancelled) error {
	return p.upsertOrder(ctx, e.OrderID.String(), func(o *readmodel.Order) {
		o.Status = readmodel.OrderStatusCancelled
		o.UpdatedAt = e.CancelledAt
	})
}

// Upsert plumbing. Each upsert reads the current document (or starts a fresh
// one for a creation), applies the mutation, bumps the document version and
// writes it back: insert when the document has never been stored, replace
// otherwise. Transient store faults get a bounded retry; everything else is
// permanent and stops the projector.

func (p *Projector) upsertMenu(ctx context.Context, id string, mutate func(*readmodel.Menu)) error {
	return p.withRetry(ctx, func() error {
		doc, found, err := p.readStore.Get(ctx, store.CollectionMenus, id)
		if err != nil {
			return err
		}
		m := &readmodel.Menu{ID: id}
		if found {
			m = doc.(*readmodel.Menu)
		}
		mutate(m)
		m.Version++
		return p.write(ctx, store.CollectionMenus, id, m, found)
	})
}

func (p *Projector) upsertCalendar(ctx context.Context, id string, mutate func(*readmodel.Calendar)) error {
	return p.withRetry(ctx, func() error {
		doc, found, err := p.readStore.Get(ctx, store.CollectionCalendars, id)
		if err != nil {
			return err
		}
		c := &readmodel.Calendar{ID: id}
		if found {
			c = doc.(*readmodel.Calendar)
		}
		mutate(c)
		c.Version++
		return p.write(ctx, store.CollectionCalendars, id, c, found)
	})
}

func (p *Projector) upsertOrder(ctx context.Context, id string, mutate func(*readmodel.Order)) error {
	return p.withRetry(ctx, func() error {
		doc, found, err := p.readStore.Get(ctx, store.CollectionOrders, id)
		if err != nil {
			return err
		}
		o := &readmodel.Order{ID: id}
		if found {
			o = doc.(*readmodel.Order)
		}
		mutate(o)
		o.Version++
		return p.write(ctx, store.CollectionOrders, id, o, found)
	})
}

func (p *Projector) write(ctx context.Context, collection, id string, doc readmodel.Versioned, found bool) error {
	if found {
		return p.readStore.Replace(ctx, collection, id, doc)
	}
	return p.readStore.Insert(ctx, collection, id, doc)
}

// withRetry runs op with a short exponential backoff, retrying only faults
// the store reports as transient.
func (p *Projector) withRetry(ctx context.Context, op func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := op(); err != nil {
			if store.IsTransient(err) {
				p.log.Warn("transient read store fault, retrying", zap.Error(err))
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(3))
	return err
}
