package menu

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/lunch-orders/internal/domain/aggregate"
)

const (
	EventMenuCreated    = "MenuCreated"
	EventMenuRenamed    = "MenuRenamed"
	EventFillingAdded   = "FillingAdded"
	EventFillingUpdated = "FillingUpdated"
)

type MenuCreated struct {
	MenuID    uuid.UUID `json:"menu_id"`
	Name      string    `json:"name"`
	Editor    string    `json:"editor"`
	CreatedAt time.Time `json:"created_at"`
}

func (MenuCreated) EventType() string { return EventMenuCreated }

type MenuRenamed struct {
	MenuID    uuid.UUID `json:"menu_id"`
	Name      string    `json:"name"`
	Editor    string    `json:"editor"`
	RenamedAt time.Time `json:"renamed_at"`
}

func (MenuRenamed) EventType() string { return EventMenuRenamed }

type FillingAdded struct {
	MenuID      uuid.UUID `json:"menu_id"`
	FillingID   uuid.UUID `json:"filling_id"`
	Name        string    `json:"name"`
	AllowsBread bool      `json:"allows_bread"`
	Editor      string    `json:"editor"`
	AddedAt     time.Time `json:"added_at"`
}

func (FillingAdded) EventType() string { return EventFillingAdded }

type FillingUpdated struct {
	MenuID      uuid.UUID `json:"menu_id"`
	FillingID   uuid.UUID `json:"filling_id"`
	Name        string    `json:"name"`
	AllowsBread bool      `json:"allows_bread"`
	Editor      string    `json:"editor"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (FillingUpdated) EventType() string { return EventFillingUpdated }

// RegisterEvents adds decoders for every menu event to the registry.
func RegisterEvents(r *aggregate.Registry) {
	aggregate.RegisterEvent[MenuCreated](r)
	aggregate.RegisterEvent[MenuRenamed](r)
	aggregate.RegisterEvent[FillingAdded](r)
	aggregate.RegisterEvent[FillingUpdated](r)
}
