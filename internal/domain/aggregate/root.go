package aggregate

import (
	"errors"

	"github.com/google/uuid"
)

const (
	// UninitializedVersion marks an aggregate that has never been created:
	// no id assigned, no events raised or replayed.
	UninitializedVersion = -1

	// NewStreamVersion marks an aggregate created in memory but not yet
	// persisted. It is distinct from version 0 (first event committed):
	// saving from this state requires a "stream must not exist" append,
	// while any version >= 0 requires an expected-version-checked append.
	NewStreamVersion = -100
)

// ErrNotInitialized is returned when an aggregate is used before its
// constructor mounted a router.
var ErrNotInitialized = errors.New("aggregate not initialized: no router mounted")

// Aggregate is what the Store persists and loads. The unexported commit
// method keeps the set of implementations closed over Root.
type Aggregate interface {
	AggregateType() string
	AggregateID() uuid.UUID
	Version() int
	Replay(events []Event) error
	UncommittedEvents() []Event
	ClearUncommittedEvents()

	commit(version int)
}

// Root is the base of every event-sourced aggregate. Concrete aggregates
// embed it and mount a router in their constructor; from then on state
// changes flow only through Raise (new events) or Replay (history).
type Root struct {
	version     int
	uncommitted []Event
	router      *Router
}

// Mount attaches the event router and resets the aggregate to the
// uninitialized state. Called exactly once, from the aggregate constructor.
func (r *Root) Mount(router *Router) {
	r.router = router
	r.version = UninitializedVersion
	r.uncommitted = nil
}

// Version returns the committed version: UninitializedVersion before any
// event, NewStreamVersion after the first raise on a fresh instance, and
// otherwise the zero-based version of the last committed event. Raising
// events does not advance it; a successful save does.
func (r *Root) Version() int { return r.version }

// Raise buffers the event as uncommitted and immediately applies it through
// the router, so behaviors invoked later in the same command observe
// up-to-date state. A fresh aggregate moves to NewStreamVersion on its
// first raise.
func (r *Root) Raise(event Event) error {
	if r.router == nil {
		return ErrNotInitialized
	}
	if event == nil {
		return ErrNilEvent
	}

	if err := r.router.Dispatch(event); err != nil {
		return err
	}
	r.uncommitted = append(r.uncommitted, event)
	if r.version == UninitializedVersion {
		r.version = NewStreamVersion
	}
	return nil
}

// Replay rebuilds state by applying the full ordered history. The version
// ends at len(events)-1 and the uncommitted buffer stays empty.
func (r *Root) Replay(events []Event) error {
	if r.router == nil {
		return ErrNotInitialized
	}
	for _, event := range events {
		if err := r.router.Dispatch(event); err != nil {
			return err
		}
		r.version++
	}
	return nil
}

// UncommittedEvents returns the events raised since the last save, in raise
// order.
func (r *Root) UncommittedEvents() []Event {
	return r.uncommitted
}

// ClearUncommittedEvents drops the buffer. The Store calls commit instead,
// which also advances the version; this is exposed for callers that discard
// an aggregate without saving.
func (r *Root) ClearUncommittedEvents() {
	r.uncommitted = nil
}

func (r *Root) commit(version int) {
	r.version = version
	r.uncommitted = nil
}
