package calendar

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/lunch-orders/internal/domain/aggregate"
)

const AggregateType = "Calendar"

// DateLayout is the wire format for ordering dates. ISO dates compare
// correctly as strings, which the cutoff checks rely on.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a well-formed ordering date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Calendar tracks which ordering days are withdrawn and the
// orders-open-beyond cutoff: dates at or beyond the cutoff are already
// taking orders, so withdrawing them is a guarded operation.
type Calendar struct {
	aggregate.Root

	id               uuid.UUID
	withdrawn        map[string]struct{}
	ordersOpenBeyond string
}

// NewCalendar constructs an empty, uninitialized calendar with its event
// routes mounted.
func NewCalendar() *Calendar {
	c := &Calendar{}
	r := aggregate.NewRouter()
	aggregate.On(r, c.onCreated)
	aggregate.On(r, c.onDateWithdrawn)
	aggregate.On(r, c.onDateReinstated)
	aggregate.On(r, c.onCutoffMoved)
	c.Mount(r)
	return c
}

func (c *Calendar) AggregateType() string     { return AggregateType }
func (c *Calendar) AggregateID() uuid.UUID    { return c.id }
func (c *Calendar) OrdersOpenBeyond() string  { return c.ordersOpenBeyond }

// IsWithdrawn reports whether ordering is suspended on the given date.
func (c *Calendar) IsWithdrawn(date string) bool {
	_, ok := c.withdrawn[date]
	return ok
}

// WithdrawnDates returns the withdrawn dates in ascending order.
func (c *Calendar) WithdrawnDates() []string {
	out := make([]string, 0, len(c.withdrawn))
	for d := range c.withdrawn {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Behaviors

func (c *Calendar) Create(id uuid.UUID, ordersOpenBeyond, editor string) error {
	return c.Raise(CalendarCreated{
		CalendarID:       id,
		OrdersOpenBeyond: ordersOpenBeyond,
		Editor:           editor,
		CreatedAt:        time.Now().UTC(),
	})
}

func (c *Calendar) Withdraw(date, editor string) error {
	return c.Raise(DateWithdrawn{
		CalendarID:  c.id,
		Date:        date,
		Editor:      editor,
		WithdrawnAt: time.Now().UTC(),
	})
}

func (c *Calendar) Reinstate(date, editor string) error {
	return c.Raise(DateReinstated{
		CalendarID:   c.id,
		Date:         date,
		Editor:       editor,
		ReinstatedAt: time.Now().UTC(),
	})
}

func (c *Calendar) MoveCutoff(ordersOpenBeyond, editor string) error {
	return c.Raise(OrdersOpenCutoffMoved{
		CalendarID:       c.id,
		OrdersOpenBeyond: ordersOpenBeyond,
		Editor:           editor,
		MovedAt:          time.Now().UTC(),
	})
}

// Event handlers. The withdrawn set is replaced on every change rather than
// mutated, so snapshots handed out earlier never alias live state.

func (c *Calendar) onCreated(e CalendarCreated) {
	c.id = e.CalendarID
	c.ordersOpenBeyond = e.OrdersOpenBeyond
	c.withdrawn = map[string]struct{}{}
}

func (c *Calendar) onDateWithdrawn(e DateWithdrawn) {
	next := make(map[string]struct{}, len(c.withdrawn)+1)
	for d := range c.withdrawn {
		next[d] = struct{}{}
	}
	next[e.Date] = struct{}{}
	c.withdrawn = next
}

func (c *Calendar) onDateReinstated(e DateReinstated) {
	next := make(map[string]struct{}, len(c.withdrawn))
	for d := range c.withdrawn {
		if d != e.Date {
			next[d] = struct{}{}
		}
	}
	c.withdrawn = next
}

func (c *Calendar) onCutoffMoved(e OrdersOpenCutoffMoved) {
	c.ordersOpenBeyond = e.OrdersOpenBeyond
}
