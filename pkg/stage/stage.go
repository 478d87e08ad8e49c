// Package stage holds the storage bundle for one compile stage: its
// structural IR store, its staged/specialized function tables, and a
// stage-local symbol table distinct from the pipeline's global one
// (spec section 4.6, glossary "Compile stage").
package stage

import (
	"github.com/QuEraComputing/kirin/internal/intern"
	"github.com/QuEraComputing/kirin/pkg/function"
	"github.com/QuEraComputing/kirin/pkg/ir"
)

// ID names one compile stage within a Pipeline.
type ID uint32

// StoreHolder is the non-generic facet every Info[L,C] satisfies,
// letting dynamic (stage-tag-at-runtime) drivers reach a stage's
// structural store without knowing its L or C.
type StoreHolder interface {
	StructuralStore() *ir.Store
}

// Info is StageInfo<L> from the spec: L is used only as a phantom type
// parameter so that Pipeline.WithStage[L] can type-assert an erased
// map[stage.ID]any back to the right Info[L,C] without every caller
// re-deriving which dialect a stage hosts. C is the type-attribute
// representation that dialect L's signatures are expressed over.
type Info[L any, C any] struct {
	ID ID

	Store *ir.Store

	// Functions is keyed by the function's stage-local symbol.
	Functions map[intern.Symbol]*function.Function[C]

	symbols *intern.Symbols
}

// New creates an empty per-stage storage bundle.
func New[L any, C any](id ID) *Info[L, C] {
	return &Info[L, C]{
		ID:        id,
		Store:     ir.NewStore(),
		Functions: make(map[intern.Symbol]*function.Function[C]),
		symbols:   intern.NewSymbols(),
	}
}

// StructuralStore returns the stage's structural IR store through a
// non-generic interface (see StoreHolder) so that dynamic,
// stage-tag-at-runtime drivers can reach it without knowing L or C
// (spec section 4.10, "a parallel set of dynamic APIs dispatches
// through the stage tag at runtime").
func (s *Info[L, C]) StructuralStore() *ir.Store { return s.Store }

// Symbol interns name into this stage's local symbol table.
func (s *Info[L, C]) Symbol(name string) intern.Symbol { return s.symbols.Intern(name) }

// SymbolName resolves sym back to its source text.
func (s *Info[L, C]) SymbolName(sym intern.Symbol) (string, bool) { return s.symbols.Name(sym) }

// Function creates-or-returns the Function registered under sym.
func (s *Info[L, C]) Function(sym intern.Symbol, globalName intern.GlobalSymbol) *function.Function[C] {
	if fn, ok := s.Functions[sym]; ok {
		return fn
	}
	fn := function.New[C](globalName)
	s.Functions[sym] = fn
	return fn
}
