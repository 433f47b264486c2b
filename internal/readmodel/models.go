package readmodel

import "time"

// Versioned is implemented by every read model document. Version counts
// applied events for the document; 0 means the document has not been
// inserted yet, so projectors know whether to insert or replace.
type Versioned interface {
	DocVersion() int
}

// Filling is one choice on a menu.
type Filling struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AllowsBread bool   `json:"allows_bread"`
}

// Menu is the denormalized view of a menu and its fillings.
type Menu struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Fillings  []Filling `json:"fillings"`
	Editor    string    `json:"editor"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

func (m *Menu) DocVersion() int { return m.Version }

// Filling returns the filling with the given id, if present.
func (m *Menu) Filling(id string) (Filling, bool) {
	for _, f := range m.Fillings {
		if f.ID == id {
			return f, true
		}
	}
	return Filling{}, false
}

// Calendar is the denormalized view of the ordering calendar: the days
// ordering is suspended plus the cutoff at or beyond which orders are open.
type Calendar struct {
	ID               string    `json:"id"`
	WithdrawnDates   []string  `json:"withdrawn_dates"` // ISO dates, sorted
	OrdersOpenBeyond string    `json:"orders_open_beyond"`
	Editor           string    `json:"editor"`
	UpdatedAt        time.Time `json:"updated_at"`
	Version          int       `json:"version"`
}

func (c *Calendar) DocVersion() int { return c.Version }

// IsWithdrawn reports whether the given ISO date is withdrawn.
func (c *Calendar) IsWithdrawn(date string) bool {
	for _, d := range c.WithdrawnDates {
		if d == date {
			return true
		}
	}
	return false
}

// Order statuses mirror the write-side lifecycle.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusCancelled = "cancelled"
)

// Order is the denormalized view of one editor's lunch order for one date.
type Order struct {
	ID         string    `json:"id"`
	MenuID     string    `json:"menu_id"`
	CalendarID string    `json:"calendar_id"`
	Editor     string    `json:"editor"`
	Date       string    `json:"date"` // ISO date
	FillingID  string    `json:"filling_id"`
	Bread      bool      `json:"bread"`
	Status     string    `json:"status"`
	PlacedAt   time.Time `json:"placed_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int       `json:"version"`
}

func (o *Order) DocVersion() int { return o.Version }
