package store

import (
	"context"
	"errors"
)

var (
	// ErrDocumentNotFound is returned by Replace when the target document
	// does not exist.
	ErrDocumentNotFound = errors.New("read model document not found")

	// ErrDocumentExists is returned by Insert when a document with the same
	// id already exists in the collection.
	ErrDocumentExists = errors.New("read model document already exists")
)

// ReadStoreInterface is the read-model document store. Documents carry a
// Version field where 0 signals "not yet inserted"; projectors Insert on
// first sight of an entity and Replace afterwards. Read models are never the
// source of truth and may be dropped and rebuilt from the event log.
type ReadStoreInterface interface {
	Get(ctx context.Context, collection, id string) (any, bool, error)
	GetAll(ctx context.Context, collection string) ([]any, error)
	Insert(ctx context.Context, collection, id string, doc any) error
	Replace(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
}

// Collection names used across projector, query handler and read stores.
const (
	CollectionMenus     = "menus"
	CollectionCalendars = "calendars"
	CollectionOrders    = "orders"
)
