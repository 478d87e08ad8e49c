package intern

import "testing"

func TestInternDeduplicates(t *testing.T) {
	tbl := New[string, int]()
	h1 := tbl.Intern("foo", 1)
	h2 := tbl.Intern("foo", 2)

	if h1 != h2 {
		t.Fatalf("expected same handle for repeated key, got %v and %v", h1, h2)
	}
	v, ok := tbl.Lookup(h1)
	if !ok || v != 1 {
		t.Fatalf("expected first-writer value 1, got %v (ok=%v)", v, ok)
	}
}

func TestInternInsertionOrder(t *testing.T) {
	tbl := New[string, struct{}]()
	tbl.Intern("c", struct{}{})
	tbl.Intern("a", struct{}{})
	tbl.Intern("b", struct{}{})

	var order []string
	tbl.IterInsertionOrder(func(_ Handle, k string, _ struct{}) {
		order = append(order, k)
	})

	want := []string{"c", "a", "b"}
	for i, k := range want {
		if order[i] != k {
			t.Fatalf("order[%d] = %q, want %q", i, order[i], k)
		}
	}
}

func TestResolveWithoutMinting(t *testing.T) {
	tbl := New[string, struct{}]()
	if _, ok := tbl.Resolve("missing"); ok {
		t.Fatalf("expected Resolve of unseen key to fail")
	}
	tbl.Intern("present", struct{}{})
	if _, ok := tbl.Resolve("present"); !ok {
		t.Fatalf("expected Resolve of interned key to succeed")
	}
}

func TestSymbolsNFCNormalization(t *testing.T) {
	syms := NewSymbols()

	// Same word, two canonically-equivalent but byte-distinct spellings:
	// one precomposed (U+00E9, "e with acute" as a single codepoint), one
	// decomposed ("e" followed by the standalone combining acute accent
	// U+0301). Both are raw UTF-8 source literals; the guard below fails
	// the test if they ever collapse to identical bytes.
	precomposed := "café"
	decomposed := "café"
	if precomposed == decomposed {
		t.Fatalf("test fixture is broken: precomposed and decomposed forms must differ byte-for-byte")
	}

	a := syms.Intern(precomposed)
	b := syms.Intern(decomposed)
	if a != b {
		t.Fatalf("expected canonically-equivalent spellings to share a Symbol")
	}
}

func TestGlobalSymbolsDistinctFromSymbols(t *testing.T) {
	syms := NewSymbols()
	globals := NewGlobalSymbols()

	s := syms.Intern("main")
	g := globals.Intern("main")

	// Same underlying handle value is fine; the point is the Go type
	// system keeps them from being interchangeable without a cast.
	if Handle(s) != Handle(g) {
		t.Fatalf("expected both tables to mint handle 0 for their first symbol")
	}
}
