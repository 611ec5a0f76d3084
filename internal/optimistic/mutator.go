// Package optimistic coordinates "apply now, confirm later" writes against a
// projection store: capture the previous value, show the new value
// immediately, issue the remote call, then commit or roll back when it
// settles. A failed mutation is never left looking like a success; the
// original error always reaches the caller after local state is restored.
package optimistic

import (
	"context"
	"errors"
	"sync"

	"github.com/listd/listd/internal/models"
	"github.com/listd/listd/internal/projection"
)

// Errors returned before any remote call is made.
var (
	ErrPending  = errors.New("another edit to this field is still pending")
	ErrNotFound = errors.New("entity not present in local projection")
)

// OpState tracks a pending operation through its lifecycle.
type OpState int

const (
	StatePending OpState = iota
	StateCommitted
	StateRolledBack
)

// PendingOperation records one in-flight mutation: the target, the
// pre-mutation snapshot of the affected field, and how it settled.
type PendingOperation struct {
	EntityID string
	Field    string
	Previous any
	State    OpState
}

type opKey struct {
	id    string
	field string
}

// Mutator is the only writer to its projection store. At most one pending
// operation per (entity id, field) is allowed; a second concurrent edit gets
// ErrPending. Callers disable their controls while submitting, but the
// invariant holds even when they don't.
type Mutator[T any] struct {
	store *projection.Store[T]

	mu       sync.Mutex
	inflight map[opKey]*PendingOperation
}

// NewMutator creates a mutator owning writes to the given store.
func NewMutator[T any](store *projection.Store[T]) *Mutator[T] {
	return &Mutator[T]{
		store:    store,
		inflight: make(map[opKey]*PendingOperation),
	}
}

// Inflight reports whether an edit to the given field is still pending,
// for "submitting" style control guards.
func (m *Mutator[T]) Inflight(id, field string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inflight[opKey{id, field}]
	return ok
}

func (m *Mutator[T]) begin(id, field string, previous any) (*PendingOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := opKey{id, field}
	if _, ok := m.inflight[k]; ok {
		return nil, ErrPending
	}
	op := &PendingOperation{EntityID: id, Field: field, Previous: previous, State: StatePending}
	m.inflight[k] = op
	return op, nil
}

func (m *Mutator[T]) settle(op *PendingOperation, state OpState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op.State = state
	delete(m.inflight, opKey{op.EntityID, op.Field})
}

// othersInflight reports whether any other field of the entity still has a
// pending operation.
func (m *Mutator[T]) othersInflight(id, field string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.inflight {
		if k.id == id && k.field != field {
			return true
		}
	}
	return false
}

// Update applies a single-field optimistic edit. get and set scope the edit
// to one field so a rollback restores only that field, leaving concurrent
// edits to other fields of the same entity alone. remote may return a
// canonical value (server-assigned timestamps etc.) that replaces the
// optimistic one on success; nil keeps the optimistic value.
func Update[T, V any](ctx context.Context, m *Mutator[T], id, field string,
	get func(T) V, set func(T, V) T, next V,
	remote func(context.Context) (*T, error)) error {

	cur, ok := m.store.Get(id)
	if !ok {
		return ErrNotFound
	}
	prev := get(cur)

	op, err := m.begin(id, field, prev)
	if err != nil {
		return err
	}

	m.store.Put(id, set(cur, next), models.Pending)

	canonical, err := remote(ctx)
	if err != nil {
		// Roll back just this field on whatever the entity looks like now.
		// While another field of the entity is still in flight the entity
		// stays pending, keeping its reload protection for that edit.
		if cur2, ok := m.store.Get(id); ok {
			prov := models.Confirmed
			if m.othersInflight(id, field) {
				prov = models.Pending
			}
			m.store.Put(id, set(cur2, prev), prov)
		}
		m.settle(op, StateRolledBack)
		return err
	}

	switch {
	case m.othersInflight(id, field):
		// Merge only this field from the canonical value; a wholesale
		// replace would clobber the other in-flight edit, and flipping to
		// confirmed would drop its reload protection.
		if cur2, ok := m.store.Get(id); ok {
			v := next
			if canonical != nil {
				v = get(*canonical)
			}
			m.store.Put(id, set(cur2, v), models.Pending)
		}
	case canonical != nil:
		m.store.Put(id, *canonical, models.Confirmed)
	default:
		m.store.MarkConfirmed(id)
	}
	m.settle(op, StateCommitted)
	return nil
}

// Create optimistically inserts an entity, then replaces it with the
// server's canonical version. On failure the entity is removed again.
func (m *Mutator[T]) Create(ctx context.Context, id string, entity T,
	remote func(context.Context) (*T, error)) error {

	op, err := m.begin(id, "create", nil)
	if err != nil {
		return err
	}

	m.store.Put(id, entity, models.Pending)

	canonical, err := remote(ctx)
	if err != nil {
		m.store.Remove(id)
		m.settle(op, StateRolledBack)
		return err
	}

	if canonical != nil {
		m.store.Put(id, *canonical, models.Confirmed)
	} else {
		m.store.MarkConfirmed(id)
	}
	m.settle(op, StateCommitted)
	return nil
}

// Delete optimistically removes an entity. On failure the entity is
// restored at its old position, so deletes follow the same rollback
// contract as every other mutation.
func (m *Mutator[T]) Delete(ctx context.Context, id string,
	remote func(context.Context) error) error {

	prev, idx, ok := m.store.Remove(id)
	if !ok {
		return ErrNotFound
	}

	op, err := m.begin(id, "delete", prev)
	if err != nil {
		m.store.Restore(id, prev, idx)
		return err
	}

	if err := remote(ctx); err != nil {
		m.store.Restore(id, prev, idx)
		m.settle(op, StateRolledBack)
		return err
	}
	m.settle(op, StateCommitted)
	return nil
}

// Reorder applies a full client-computed ordering, sends it as one request,
// and reconciles. Change-notification reloads are paused for the duration so
// a remote push cannot re-derive a conflicting order mid-flight; exactly one
// reload runs once the request settles, success or failure, picking up
// server-assigned order values.
func (m *Mutator[T]) Reorder(ctx context.Context, ids []string,
	remote func(context.Context) error) error {

	m.store.Pause()
	m.store.SetOrder(ids)

	err := remote(ctx)

	m.store.Resume()
	reloadErr := m.store.Reload(ctx)

	if err != nil {
		return err
	}
	return reloadErr
}
