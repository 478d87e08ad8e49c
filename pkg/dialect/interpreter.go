package dialect

import "github.com/QuEraComputing/kirin/pkg/ir"

// Interpreter is the tiny state contract a dialect's Interpret method is
// given (spec section 4.8). Frame push/pop, current-frame access, fuel
// accounting, and the run loop are deliberately NOT on this contract —
// they differ between the concrete stack interpreter and the abstract
// interpreter, so each implements them inherently rather than exposing
// them here.
type Interpreter[V any] interface {
	// ReadRef inspects the value currently bound to ssa in the active
	// frame.
	ReadRef(ssa ir.ValueID) (V, error)
	// Write binds v to result in the active frame.
	Write(result ir.ValueID, v V) error
}

// Interpretable is implemented by every dialect payload (ir.Definition
// additionally implementing this). The driver resolves
// statement.Def.(Interpretable[V]) and calls Interpret once per step
// (spec section 4.9): static dispatch through the concrete payload
// type, no registry involved.
//
// results is the statement's own result value ids, as allocated by
// Store.NewStatement from Definition.ResultTypes() — a payload value
// cannot know these at construction time (the store mints them
// afterward), so the driver hands them back in on every step. A
// payload with no results ignores the slice.
type Interpretable[V any] interface {
	Interpret(interp Interpreter[V], results []ir.ValueID) (Continuation[V], error)
}
