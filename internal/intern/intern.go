// Package intern implements C2: a bijection between keys and compact,
// insertion-ordered integer handles (spec section 4.2).
//
// String keys are normalized through golang.org/x/text/unicode/norm
// before interning, the same sub-package the teacher uses for
// case/locale-sensitive string comparisons in
// internal/interp/builtins/strings_compare.go, so that two source
// spellings of what is semantically one symbol name collapse to a single
// handle.
package intern

import (
	"golang.org/x/text/unicode/norm"
)

// Handle is a dense, insertion-ordered integer identifying an interned
// key within one InternTable.
type Handle uint32

// Table is a bijection between keys of type K and Handles, in insertion
// order. It is not safe for concurrent use without external
// synchronization, consistent with the single-owner discipline in
// spec section 5.
type Table[K comparable, V any] struct {
	byKey    map[K]Handle
	order    []entry[K, V]
	normKeys bool
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// New creates an empty intern table for arbitrary comparable keys.
func New[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{byKey: make(map[K]Handle)}
}

// Intern inserts key (with value) if absent and returns its handle. If
// key was already interned, the existing handle is returned and value is
// discarded (first writer wins, matching symbol-table semantics).
func (t *Table[K, V]) Intern(key K, value V) Handle {
	if h, ok := t.byKey[key]; ok {
		return h
	}
	h := Handle(len(t.order))
	t.order = append(t.order, entry[K, V]{key: key, value: value})
	t.byKey[key] = h
	return h
}

// Lookup returns the value for an already-minted handle.
func (t *Table[K, V]) Lookup(h Handle) (V, bool) {
	var zero V
	if int(h) >= len(t.order) {
		return zero, false
	}
	return t.order[h].value, true
}

// Key returns the key an already-minted handle was interned under.
func (t *Table[K, V]) Key(h Handle) (K, bool) {
	var zero K
	if int(h) >= len(t.order) {
		return zero, false
	}
	return t.order[h].key, true
}

// Resolve returns the handle for key if it has already been interned,
// without minting a new one.
func (t *Table[K, V]) Resolve(key K) (Handle, bool) {
	h, ok := t.byKey[key]
	return h, ok
}

// IterInsertionOrder calls fn for every (handle, key, value) triple in
// the order keys were first interned.
func (t *Table[K, V]) IterInsertionOrder(fn func(Handle, K, V)) {
	for i, e := range t.order {
		fn(Handle(i), e.key, e.value)
	}
}

// Len returns the number of distinct interned keys.
func (t *Table[K, V]) Len() int { return len(t.order) }

// Normalize canonicalizes a symbol spelling to Unicode NFC so that two
// byte-distinct but canonically-equivalent spellings intern to the same
// handle. Used by Symbols and GlobalSymbols before Intern/Resolve.
func Normalize(s string) string {
	return norm.NFC.String(s)
}
