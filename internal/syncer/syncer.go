// Package syncer reconciles canonical in-memory lists after a confirmed
// backend mutation, without refetching the collection.
package syncer

import (
	"fmt"
	"net/http"
	"sync"

	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// Identifiable is implemented by every record kept in a canonical list.
type Identifiable interface {
	EntityID() string
}

// Kind enumerates the mutations a list can be reconciled against.
type Kind string

const (
	Create Kind = "create"
	Update Kind = "update"
	Delete Kind = "delete"
)

// Change describes one confirmed backend mutation.
type Change[T Identifiable] struct {
	Kind   Kind
	ID     string
	Record T
}

// Created builds a Create change keyed by the record's backend id.
func Created[T Identifiable](record T) Change[T] {
	return Change[T]{Kind: Create, ID: record.EntityID(), Record: record}
}

// Updated builds an Update change keyed by the record's id.
func Updated[T Identifiable](record T) Change[T] {
	return Change[T]{Kind: Update, ID: record.EntityID(), Record: record}
}

// Deleted builds a Delete change for id.
func Deleted[T Identifiable](id string) Change[T] {
	return Change[T]{Kind: Delete, ID: id}
}

var (
	// ErrDraft is returned when a change carries no identifier.
	ErrDraft = appErrors.New("DRAFT_RECORD", http.StatusUnprocessableEntity, "record has no identifier")
	// ErrDuplicate is returned when a create collides with an existing entry.
	ErrDuplicate = appErrors.Clone(appErrors.ErrConflict, "record already present")
	// ErrAbsent is returned when an update or delete targets a missing entry.
	ErrAbsent = appErrors.Clone(appErrors.ErrNotFound, "record not found")
)

// Apply returns a new list with change applied. The input is never mutated.
// Creates append, updates replace in place and deletes remove by id.
func Apply[T Identifiable](list []T, change Change[T]) ([]T, error) {
	id := change.ID
	if id == "" && change.Kind != Delete {
		id = change.Record.EntityID()
	}
	if id == "" {
		return nil, ErrDraft
	}
	if change.Kind != Delete && change.Record.EntityID() != id {
		return nil, appErrors.Clone(ErrDraft, fmt.Sprintf("record id %q does not match change id %q", change.Record.EntityID(), id))
	}

	idx := indexOf(list, id)
	switch change.Kind {
	case Create:
		if idx >= 0 {
			return nil, appErrors.Clone(ErrDuplicate, fmt.Sprintf("record %s already present", id))
		}
		out := make([]T, len(list), len(list)+1)
		copy(out, list)
		return append(out, change.Record), nil
	case Update:
		if idx < 0 {
			return nil, appErrors.Clone(ErrAbsent, fmt.Sprintf("record %s not found", id))
		}
		out := make([]T, len(list))
		copy(out, list)
		out[idx] = change.Record
		return out, nil
	case Delete:
		if idx < 0 {
			return nil, appErrors.Clone(ErrAbsent, fmt.Sprintf("record %s not found", id))
		}
		out := make([]T, 0, len(list)-1)
		out = append(out, list[:idx]...)
		return append(out, list[idx+1:]...), nil
	default:
		return nil, fmt.Errorf("unknown change kind %q", change.Kind)
	}
}

func indexOf[T Identifiable](list []T, id string) int {
	for i := range list {
		if list[i].EntityID() == id {
			return i
		}
	}
	return -1
}

// Collection is the mutex-guarded canonical list owned by one controller.
// Every entry carries a monotonic revision and deleted ids are tombstoned
// so a late response cannot bring them back.
type Collection[T Identifiable] struct {
	mu         sync.RWMutex
	items      []T
	revisions  map[string]uint64
	tombstones map[string]struct{}
	clock      uint64
}

// NewCollection returns an empty collection.
func NewCollection[T Identifiable]() *Collection[T] {
	return &Collection[T]{
		revisions:  make(map[string]uint64),
		tombstones: make(map[string]struct{}),
	}
}

// Replace installs a freshly fetched list. Records without id, duplicated
// ids (first wins) and tombstoned ids are dropped. It returns the number of
// records discarded.
func (c *Collection[T]) Replace(list []T) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(list))
	items := make([]T, 0, len(list))
	revisions := make(map[string]uint64, len(list))
	dropped := 0
	for _, item := range list {
		id := item.EntityID()
		if id == "" {
			dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		if _, dead := c.tombstones[id]; dead {
			dropped++
			continue
		}
		seen[id] = struct{}{}
		items = append(items, item)
		if rev, ok := c.revisions[id]; ok {
			revisions[id] = rev
		} else {
			c.clock++
			revisions[id] = c.clock
		}
	}
	c.items = items
	c.revisions = revisions
	return dropped
}

// Apply reconciles the collection with a confirmed change.
func (c *Collection[T]) Apply(change Change[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := change.ID
	if id == "" && change.Kind != Delete {
		id = change.Record.EntityID()
	}
	if _, dead := c.tombstones[id]; dead && change.Kind != Delete {
		return appErrors.Clone(appErrors.ErrDeleted, fmt.Sprintf("record %s was deleted", id))
	}

	next, err := Apply(c.items, change)
	if err != nil {
		return err
	}
	c.items = next
	switch change.Kind {
	case Delete:
		delete(c.revisions, id)
		c.tombstones[id] = struct{}{}
	default:
		c.clock++
		c.revisions[id] = c.clock
	}
	return nil
}

// Items returns a copy of the canonical list.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the entry for id together with its revision.
func (c *Collection[T]) Get(id string) (T, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	idx := indexOf(c.items, id)
	if idx < 0 {
		return zero, 0, false
	}
	return c.items[idx], c.revisions[id], true
}

// Revision returns the current revision of id, or zero when absent.
func (c *Collection[T]) Revision(id string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revisions[id]
}

// Deleted reports whether id was removed during the collection's lifetime.
func (c *Collection[T]) Deleted(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, dead := c.tombstones[id]
	return dead
}

// Len returns the number of entries.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear empties the list. Tombstones survive.
func (c *Collection[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.revisions = make(map[string]uint64)
}
