package karena

import (
	"testing"

	"github.com/QuEraComputing/kirin/internal/kerrors"
)

func TestAllocGetRoundTrip(t *testing.T) {
	a := New[string]()
	id := a.Alloc("hello")

	got, err := a.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestMarkDeletedThenGetFails(t *testing.T) {
	a := New[int]()
	id := a.Alloc(42)

	if err := a.MarkDeleted(id); err != nil {
		t.Fatalf("MarkDeleted: %v", err)
	}

	if a.IsLive(id) {
		t.Fatalf("expected id to be dead after MarkDeleted")
	}

	_, err := a.Get(id)
	if !kerrors.Is(err, kerrors.KindDeleted) {
		t.Fatalf("expected Deleted error, got %v", err)
	}
}

func TestOutOfBounds(t *testing.T) {
	a := New[int]()
	_, err := a.Get(ID(99))
	if !kerrors.Is(err, kerrors.KindOutOfBounds) {
		t.Fatalf("expected OutOfBounds error, got %v", err)
	}

	_, err = a.Get(Invalid)
	if !kerrors.Is(err, kerrors.KindOutOfBounds) {
		t.Fatalf("expected OutOfBounds error for Invalid id, got %v", err)
	}
}

func TestAllocNeverReusesBeforeCompact(t *testing.T) {
	a := New[int]()
	id1 := a.Alloc(1)
	_ = a.MarkDeleted(id1)
	id2 := a.Alloc(2)

	if id1 == id2 {
		t.Fatalf("alloc reused a tombstoned slot before compact")
	}
}

func TestCompactRemapsLiveIDs(t *testing.T) {
	a := New[string]()
	idA := a.Alloc("a")
	idB := a.Alloc("b")
	idC := a.Alloc("c")
	_ = a.MarkDeleted(idB)

	remap := a.Compact()

	if remap.Lookup(idB) != Invalid {
		t.Fatalf("expected tombstoned id to remap to Invalid")
	}

	newA := remap.Lookup(idA)
	newC := remap.Lookup(idC)

	got, err := a.Get(newA)
	if err != nil || got != "a" {
		t.Fatalf("Get(newA) = %q, %v", got, err)
	}
	got, err = a.Get(newC)
	if err != nil || got != "c" {
		t.Fatalf("Get(newC) = %q, %v", got, err)
	}
	if a.Len() != 2 {
		t.Fatalf("expected 2 live entries after compact, got %d", a.Len())
	}
}

func TestIterLiveSkipsTombstones(t *testing.T) {
	a := New[int]()
	ids := make([]ID, 5)
	for i := range ids {
		ids[i] = a.Alloc(i)
	}
	_ = a.MarkDeleted(ids[1])
	_ = a.MarkDeleted(ids[3])

	seen := map[ID]int{}
	a.IterLive(func(id ID, v int) { seen[id] = v })

	if len(seen) != 3 {
		t.Fatalf("expected 3 live entries, got %d", len(seen))
	}
	if _, ok := seen[ids[1]]; ok {
		t.Fatalf("tombstoned id should not appear in IterLive")
	}
}
