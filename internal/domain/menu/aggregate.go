package menu

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/lunch-orders/internal/domain/aggregate"
)

const AggregateType = "Menu"

// Filling is one choice on the menu. AllowsBread controls whether orders
// for this filling may include bread.
type Filling struct {
	ID          uuid.UUID
	Name        string
	AllowsBread bool
}

// Menu is the menu aggregate. All fields mutate only inside the event
// handlers registered in NewMenu; behaviors raise events and never touch
// state directly.
type Menu struct {
	aggregate.Root

	id       uuid.UUID
	name     string
	fillings map[uuid.UUID]Filling
}

// NewMenu constructs an empty, uninitialized menu with its event routes
// mounted. Load it from history or drive it through Create.
func NewMenu() *Menu {
	m := &Menu{}
	r := aggregate.NewRouter()
	aggregate.On(r, m.onCreated)
	aggregate.On(r, m.onRenamed)
	aggregate.On(r, m.onFillingAdded)
	aggregate.On(r, m.onFillingUpdated)
	m.Mount(r)
	return m
}

func (m *Menu) AggregateType() string    { return AggregateType }
func (m *Menu) AggregateID() uuid.UUID   { return m.id }
func (m *Menu) Name() string             { return m.name }

// Fillings returns a copy of the menu's fillings.
func (m *Menu) Fillings() []Filling {
	out := make([]Filling, 0, len(m.fillings))
	for _, f := range m.fillings {
		out = append(out, f)
	}
	return out
}

// Filling returns the filling with the given id, if present.
func (m *Menu) Filling(id uuid.UUID) (Filling, bool) {
	f, ok := m.fillings[id]
	return f, ok
}

// Behaviors

func (m *Menu) Create(id uuid.UUID, name, editor string) error {
	return m.Raise(MenuCreated{
		MenuID:    id,
		Name:      name,
		Editor:    editor,
		CreatedAt: time.Now().UTC(),
	})
}

func (m *Menu) Rename(name, editor string) error {
	return m.Raise(MenuRenamed{
		MenuID:    m.id,
		Name:      name,
		Editor:    editor,
		RenamedAt: time.Now().UTC(),
	})
}

func (m *Menu) AddFilling(fillingID uuid.UUID, name string, allowsBread bool, editor string) error {
	return m.Raise(FillingAdded{
		MenuID:      m.id,
		FillingID:   fillingID,
		Name:        name,
		AllowsBread: allowsBread,
		Editor:      editor,
		AddedAt:     time.Now().UTC(),
	})
}

func (m *Menu) UpdateFilling(fillingID uuid.UUID, name string, allowsBread bool, editor string) error {
	return m.Raise(FillingUpdated{
		MenuID:      m.id,
		FillingID:   fillingID,
		Name:        name,
		AllowsBread: allowsBread,
		Editor:      editor,
		UpdatedAt:   time.Now().UTC(),
	})
}

// Event handlers. The fillings map is replaced, not mutated in place, so a
// previously returned snapshot never aliases live state.

func (m *Menu) onCreated(e MenuCreated) {
	m.id = e.MenuID
	m.name = e.Name
	m.fillings = map[uuid.UUID]Filling{}
}

func (m *Menu) onRenamed(e MenuRenamed) {
	m.name = e.Name
}

func (m *Menu) onFillingAdded(e FillingAdded) {
	m.setFilling(Filling{ID: e.FillingID, Name: e.Name, AllowsBread: e.AllowsBread})
}

func (m *Menu) onFillingUpdated(e FillingUpdated) {
	m.setFilling(Filling{ID: e.FillingID, Name: e.Name, AllowsBread: e.AllowsBread})
}

func (m *Menu) setFilling(f Filling) {
	next := make(map[uuid.UUID]Filling, len(m.fillings)+1)
	for id, existing := range m.fillings {
		next[id] = existing
	}
	next[f.ID] = f
	m.fillings = next
}
