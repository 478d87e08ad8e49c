// Package karena implements C1: a generational-vector arena with
// soft-delete and reusable identifier tokens, per spec section 4.1.
//
// Grounded on the teacher's object-pooling discipline in
// internal/interp/runtime/pool.go (reuse slots instead of relying solely
// on GC) and its reference-counted lifecycle in refcount.go, adapted here
// from value pooling to slot-indexed storage with tombstones.
package karena

import "github.com/QuEraComputing/kirin/internal/kerrors"

// ID is an opaque 32-bit token, unique within the Arena that minted it.
// Tokens are reusable after Compact runs; comparing tokens minted by two
// different arenas is a programmer error the type system cannot catch.
type ID uint32

// Invalid is the zero ID; no Arena ever hands it out, so it is safe to
// use as an "unset" sentinel in structs that embed an ID.
const Invalid ID = 0

type slot[T any] struct {
	value   T
	deleted bool
}

// Arena is an ordered sequence of slots, each either live or tombstoned.
type Arena[T any] struct {
	slots []slot[T]
}

// New creates an empty arena.
func New[T any]() *Arena[T] {
	// slots[0] is reserved so that ID 0 (Invalid) never aliases a real slot.
	return &Arena[T]{slots: make([]slot[T], 1)}
}

// Alloc appends value and returns its new, never-before-issued ID.
func (a *Arena[T]) Alloc(value T) ID {
	id := ID(len(a.slots))
	a.slots = append(a.slots, slot[T]{value: value})
	return id
}

func (a *Arena[T]) index(id ID) (int, error) {
	i := int(id)
	if id == Invalid || i >= len(a.slots) {
		return 0, kerrors.OutOfBounds(id)
	}
	return i, nil
}

// Get returns a copy of the live value at id, or a Deleted/OutOfBounds
// error.
func (a *Arena[T]) Get(id ID) (T, error) {
	var zero T
	i, err := a.index(id)
	if err != nil {
		return zero, err
	}
	s := &a.slots[i]
	if s.deleted {
		return zero, kerrors.Deleted(id)
	}
	return s.value, nil
}

// GetMut returns a mutable pointer to the live value at id.
func (a *Arena[T]) GetMut(id ID) (*T, error) {
	i, err := a.index(id)
	if err != nil {
		return nil, err
	}
	s := &a.slots[i]
	if s.deleted {
		return nil, kerrors.Deleted(id)
	}
	return &s.value, nil
}

// MarkDeleted tombstones id; the slot index remains consumed until
// Compact runs.
func (a *Arena[T]) MarkDeleted(id ID) error {
	i, err := a.index(id)
	if err != nil {
		return err
	}
	a.slots[i].deleted = true
	var zero T
	a.slots[i].value = zero
	return nil
}

// IsLive reports whether id names a non-tombstoned slot.
func (a *Arena[T]) IsLive(id ID) bool {
	i, err := a.index(id)
	if err != nil {
		return false
	}
	return !a.slots[i].deleted
}

// IterLive calls fn for every live (id, value) pair in allocation order,
// skipping tombstones.
func (a *Arena[T]) IterLive(fn func(ID, T)) {
	for i := 1; i < len(a.slots); i++ {
		s := &a.slots[i]
		if !s.deleted {
			fn(ID(i), s.value)
		}
	}
}

// Len returns the number of live entries.
func (a *Arena[T]) Len() int {
	n := 0
	for i := 1; i < len(a.slots); i++ {
		if !a.slots[i].deleted {
			n++
		}
	}
	return n
}

// IDMap is the old-id -> new-id remapping produced by Compact. It is the
// caller's responsibility to apply it to every external reference into
// this arena (spec 4.1).
type IDMap map[ID]ID

// Lookup translates an old id, returning Invalid if it was tombstoned
// (and therefore has no surviving new id).
func (m IDMap) Lookup(old ID) ID {
	return m[old]
}

// Compact drops tombstoned slots and returns the resulting remapping.
// Alloc never reuses a slot index until Compact runs; after Compact, new
// IDs are dense starting at 1 again.
func (a *Arena[T]) Compact() IDMap {
	remap := make(IDMap, len(a.slots))
	newSlots := make([]slot[T], 1, len(a.slots))
	for i := 1; i < len(a.slots); i++ {
		s := a.slots[i]
		if s.deleted {
			continue
		}
		newID := ID(len(newSlots))
		newSlots = append(newSlots, s)
		remap[ID(i)] = newID
	}
	a.slots = newSlots
	return remap
}
