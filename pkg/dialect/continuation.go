package dialect

import "github.com/QuEraComputing/kirin/pkg/ir"

// Continuation is the value a dialect's Interpret emits to tell the
// driver what to do next (spec section 4.7). It is a closed sum type:
// every variant below implements the unexported continuationNode
// marker method, matching the teacher's expressionNode/statementNode
// idiom for a closed AST node hierarchy (ast.Expression/ast.Statement).
type Continuation[V any] interface {
	continuationNode()
}

// Continue advances to the next statement in the current block.
type Continue struct{}

func (Continue) continuationNode() {}

// Jump binds Args to Target's block arguments by position (arity must
// match) and moves the cursor to Target's entry.
type Jump struct {
	Target ir.BlockID
	Args   []ir.ValueID
}

func (Jump) continuationNode() {}

// ForkTarget is one branch of a Fork continuation.
type ForkTarget struct {
	Target ir.BlockID
	Args   []ir.ValueID
}

// Fork enqueues every target with its argument bindings; valid only
// during abstract interpretation (spec section 4.7 invariant: Fork in
// concrete execution is a programmer error, surfaced as BadState).
type Fork struct {
	Targets []ForkTarget
}

func (Fork) continuationNode() {}

// Call pushes a new frame on Stage with Args bound to Callee's entry
// block arguments, suspending the caller's cursor on the current
// statement until the callee returns into ResultBinding.
type Call[V any] struct {
	Callee        any // ir.StatementID of the statement whose first region is the callee body (see interpreter.Stack.advanceCall)
	Stage         any // stage.ID
	Args          []V
	ResultBinding ir.ValueID
}

func (Call[V]) continuationNode() {}

// Return pops the current frame and binds Value into the popped
// frame's call-result slot in the caller's frame.
type Return[V any] struct {
	Value V
}

func (Return[V]) continuationNode() {}

// Break suspends execution at the current statement without advancing
// the cursor; the driver returns control to the caller.
type Break struct{}

func (Break) continuationNode() {}

// Halt terminates the interpreter session entirely.
type Halt struct{}

func (Halt) continuationNode() {}
