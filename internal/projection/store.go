// Package projection holds the client-side cached view of one remote
// collection (lists, items of a list, permissions, invitations). The store
// is the last-known-good mapping from entity id to value, replaced wholesale
// by Reload against the sync server. All writes funnel through the
// optimistic mutator; nothing else may touch entity fields, which is what
// keeps the one-pending-edit-per-field invariant enforceable in one place.
package projection

import (
	"context"
	"log/slog"
	"sync"

	"github.com/listd/listd/internal/models"
)

// Source fetches the authoritative collection from the remote server.
type Source[T any] func(ctx context.Context) ([]T, error)

type tracked[T any] struct {
	value T
	prov  models.Provenance
}

// Store is the local projection of one remote collection. It preserves the
// server's ordering and overlays pending optimistic values across reloads.
type Store[T any] struct {
	name   string
	source Source[T]
	key    func(T) string

	mu      sync.Mutex
	byID    map[string]tracked[T]
	order   []string
	loaded  bool
	paused  int
	skipped bool // a reload was absorbed while paused

	// pending optimistic values, re-applied on top of a reload that
	// completes while the edit is still in flight
	pending map[string]T
}

// NewStore creates an empty, not-yet-loaded store.
func NewStore[T any](name string, source Source[T], key func(T) string) *Store[T] {
	return &Store[T]{
		name:    name,
		source:  source,
		key:     key,
		byID:    make(map[string]tracked[T]),
		pending: make(map[string]T),
	}
}

// Reload replaces the whole projection from the remote source. Idempotent.
// While reloads are paused it records that one was requested and returns
// without fetching. On fetch failure the store is cleared to an
// empty-but-loaded state so callers never hang on a perpetual loading state.
func (s *Store[T]) Reload(ctx context.Context) error {
	s.mu.Lock()
	if s.paused > 0 {
		s.skipped = true
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	values, err := s.source(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	if err != nil {
		slog.Warn("projection reload", "collection", s.name, "err", err)
		s.byID = make(map[string]tracked[T])
		s.order = nil
		return err
	}

	byID := make(map[string]tracked[T], len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		id := s.key(v)
		byID[id] = tracked[T]{value: v, prov: models.Confirmed}
		order = append(order, id)
	}
	// Re-apply edits still in flight: a reload resolving mid-mutation must
	// not clobber the newest pending local value.
	for id, v := range s.pending {
		if _, ok := byID[id]; ok {
			byID[id] = tracked[T]{value: v, prov: models.Pending}
		}
	}
	s.byID = byID
	s.order = order
	return nil
}

// Loaded reports whether at least one Reload has settled.
func (s *Store[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Get returns the current value for an id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.byID[id]
	return tr.value, ok
}

// Provenance returns whether an id currently reflects a pending local edit.
func (s *Store[T]) Provenance(id string) (models.Provenance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.byID[id]
	return tr.prov, ok
}

// Snapshot returns all values in collection order.
func (s *Store[T]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		if tr, ok := s.byID[id]; ok {
			out = append(out, tr.value)
		}
	}
	return out
}

// IDs returns the collection order.
func (s *Store[T]) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of entities.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Put writes a value. Pending writes are recorded in the in-flight overlay;
// Confirmed writes clear it. New ids are appended to the order.
func (s *Store[T]) Put(id string, v T, prov models.Provenance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		s.order = append(s.order, id)
	}
	s.byID[id] = tracked[T]{value: v, prov: prov}
	if prov == models.Pending {
		s.pending[id] = v
	} else {
		delete(s.pending, id)
	}
}

// MarkConfirmed flips a pending entity to confirmed without changing its
// value (the optimistic value became authoritative).
func (s *Store[T]) MarkConfirmed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tr, ok := s.byID[id]; ok {
		tr.prov = models.Confirmed
		s.byID[id] = tr
	}
	delete(s.pending, id)
}

// Remove deletes an entity and returns its value and position so a failed
// remote delete can restore it where it was.
func (s *Store[T]) Remove(id string) (T, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.byID[id]
	if !ok {
		var zero T
		return zero, -1, false
	}
	delete(s.byID, id)
	delete(s.pending, id)
	idx := -1
	for i, oid := range s.order {
		if oid == id {
			idx = i
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return tr.value, idx, true
}

// Restore reinserts a previously removed entity at its old position.
func (s *Store[T]) Restore(id string, v T, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = tracked[T]{value: v, prov: models.Confirmed}
	if index < 0 || index > len(s.order) {
		index = len(s.order)
	}
	s.order = append(s.order, "")
	copy(s.order[index+1:], s.order[index:])
	s.order[index] = id
}

// SetOrder rearranges the collection to the given id sequence. Ids not
// present in the store are skipped; ids missing from the sequence keep
// their relative order at the end.
func (s *Store[T]) SetOrder(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(ids))
	order := make([]string, 0, len(s.order))
	for _, id := range ids {
		if _, ok := s.byID[id]; ok && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	for _, id := range s.order {
		if !seen[id] {
			order = append(order, id)
		}
	}
	s.order = order
}

// Pause suspends reloads. Calls nest; each Pause needs a matching Resume.
func (s *Store[T]) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused++
}

// Resume lifts a pause and reports whether any reload was absorbed while
// paused. The caller decides whether to reload; the reorder flow always
// does, to pick up server-assigned order values.
func (s *Store[T]) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused > 0 {
		s.paused--
	}
	if s.paused > 0 {
		return false
	}
	skipped := s.skipped
	s.skipped = false
	return skipped
}
