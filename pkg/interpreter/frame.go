// Package interpreter implements the concrete (stack) interpreter from
// spec section 4.11: a frame stack driven by step/advance, with fuel,
// max-depth, and breakpoint support, plus the small Interpreter[V]
// read/write contract that dialect Interpretable implementations are
// given (spec section 4.8).
package interpreter

import (
	"github.com/QuEraComputing/kirin/pkg/ir"
	"github.com/QuEraComputing/kirin/pkg/stage"
)

// Frame holds one activation's state (spec section 4.8). Bindings is a
// sparse SSA-value -> value-of-domain map, insertion-only during the
// activation and cleared on pop: SSA ids are dense across the whole
// stage arena, but a single activation only ever binds a small,
// non-contiguous subset.
type Frame[V any] struct {
	Stage   stage.ID
	Cursor  ir.StatementID // InvalidStatement at end of block
	Bindings map[ir.ValueID]V

	// ResultBinding is the SSA value, in the CALLER's frame, that should
	// receive this frame's return value on pop. InvalidValue for the
	// root frame (nothing to write back to).
	ResultBinding ir.ValueID
}

func newFrame[V any](stageID stage.ID, entry ir.StatementID, resultBinding ir.ValueID) *Frame[V] {
	return &Frame[V]{
		Stage:         stageID,
		Cursor:        entry,
		Bindings:      make(map[ir.ValueID]V),
		ResultBinding: resultBinding,
	}
}
