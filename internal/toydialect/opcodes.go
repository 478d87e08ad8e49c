package toydialect

import (
	"github.com/QuEraComputing/kirin/pkg/dialect"
	"github.com/QuEraComputing/kirin/pkg/ir"
)

// IntType is this dialect's only value type.
type IntType struct{}

func (IntType) String() string           { return "int" }
func (IntType) Equal(other ir.Type) bool { _, ok := other.(IntType); return ok }

// Const produces Ops.FromLiteral(Value).
type Const[V any] struct {
	Ops   Ops[V]
	Value int
}

func (Const[V]) Operands() []ir.ValueID   { return nil }
func (Const[V]) ResultTypes() []ir.Type   { return []ir.Type{IntType{}} }
func (Const[V]) Successors() []ir.BlockID { return nil }
func (Const[V]) NumRegions() int          { return 0 }
func (Const[V]) IsPure() bool             { return true }
func (Const[V]) IsSpeculatable() bool     { return true }
func (Const[V]) IsTerminator() bool       { return false }
func (Const[V]) IsConstant() bool         { return true }

func (c Const[V]) Interpret(interp dialect.Interpreter[V], results []ir.ValueID) (dialect.Continuation[V], error) {
	if err := interp.Write(results[0], c.Ops.FromLiteral(c.Value)); err != nil {
		return nil, err
	}
	return dialect.Continue{}, nil
}

// Add produces Ops.Add(lhs, rhs).
type Add[V any] struct {
	Ops      Ops[V]
	Lhs, Rhs ir.ValueID
}

func (a Add[V]) Operands() []ir.ValueID { return []ir.ValueID{a.Lhs, a.Rhs} }
func (Add[V]) ResultTypes() []ir.Type   { return []ir.Type{IntType{}} }
func (Add[V]) Successors() []ir.BlockID { return nil }
func (Add[V]) NumRegions() int          { return 0 }
func (Add[V]) IsPure() bool             { return true }
func (Add[V]) IsSpeculatable() bool     { return true }
func (Add[V]) IsTerminator() bool       { return false }
func (Add[V]) IsConstant() bool         { return false }

func (a Add[V]) Interpret(interp dialect.Interpreter[V], results []ir.ValueID) (dialect.Continuation[V], error) {
	lhs, err := interp.ReadRef(a.Lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := interp.ReadRef(a.Rhs)
	if err != nil {
		return nil, err
	}
	if err := interp.Write(results[0], a.Ops.Add(lhs, rhs)); err != nil {
		return nil, err
	}
	return dialect.Continue{}, nil
}

// Lt produces Ops.LessThan(lhs, rhs).
type Lt[V any] struct {
	Ops      Ops[V]
	Lhs, Rhs ir.ValueID
}

func (l Lt[V]) Operands() []ir.ValueID { return []ir.ValueID{l.Lhs, l.Rhs} }
func (Lt[V]) ResultTypes() []ir.Type   { return []ir.Type{IntType{}} }
func (Lt[V]) Successors() []ir.BlockID { return nil }
func (Lt[V]) NumRegions() int          { return 0 }
func (Lt[V]) IsPure() bool             { return true }
func (Lt[V]) IsSpeculatable() bool     { return true }
func (Lt[V]) IsTerminator() bool       { return false }
func (Lt[V]) IsConstant() bool         { return false }

func (l Lt[V]) Interpret(interp dialect.Interpreter[V], results []ir.ValueID) (dialect.Continuation[V], error) {
	lhs, err := interp.ReadRef(l.Lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := interp.ReadRef(l.Rhs)
	if err != nil {
		return nil, err
	}
	if err := interp.Write(results[0], l.Ops.LessThan(lhs, rhs)); err != nil {
		return nil, err
	}
	return dialect.Continue{}, nil
}

// Jump unconditionally transfers to Target, passing Args.
type Jump[V any] struct {
	Target ir.BlockID
	Args   []ir.ValueID
}

func (Jump[V]) Operands() []ir.ValueID   { return nil }
func (Jump[V]) ResultTypes() []ir.Type   { return nil }
func (j Jump[V]) Successors() []ir.BlockID { return []ir.BlockID{j.Target} }
func (Jump[V]) NumRegions() int          { return 0 }
func (Jump[V]) IsPure() bool             { return false }
func (Jump[V]) IsSpeculatable() bool     { return false }
func (Jump[V]) IsTerminator() bool       { return true }
func (Jump[V]) IsConstant() bool         { return false }

func (j Jump[V]) Interpret(interp dialect.Interpreter[V], results []ir.ValueID) (dialect.Continuation[V], error) {
	return dialect.Jump{Target: j.Target, Args: j.Args}, nil
}

// CondBranch defers entirely to Ops.Branch, since whether a condition's
// value picks one successor or forks both is domain-specific.
type CondBranch[V any] struct {
	Ops                 Ops[V]
	Cond                ir.ValueID
	IfTrue, IfFalse     ir.BlockID
	TrueArgs, FalseArgs []ir.ValueID
}

func (c CondBranch[V]) Operands() []ir.ValueID   { return []ir.ValueID{c.Cond} }
func (CondBranch[V]) ResultTypes() []ir.Type     { return nil }
func (c CondBranch[V]) Successors() []ir.BlockID { return []ir.BlockID{c.IfTrue, c.IfFalse} }
func (CondBranch[V]) NumRegions() int            { return 0 }
func (CondBranch[V]) IsPure() bool               { return false }
func (CondBranch[V]) IsSpeculatable() bool       { return false }
func (CondBranch[V]) IsTerminator() bool         { return true }
func (CondBranch[V]) IsConstant() bool           { return false }

func (c CondBranch[V]) Interpret(interp dialect.Interpreter[V], results []ir.ValueID) (dialect.Continuation[V], error) {
	cond, err := interp.ReadRef(c.Cond)
	if err != nil {
		return nil, err
	}
	return c.Ops.Branch(cond, c.IfTrue, c.IfFalse, c.TrueArgs, c.FalseArgs)
}

// Return returns Operand's value.
type Return[V any] struct {
	Operand ir.ValueID
}

func (r Return[V]) Operands() []ir.ValueID { return []ir.ValueID{r.Operand} }
func (Return[V]) ResultTypes() []ir.Type   { return nil }
func (Return[V]) Successors() []ir.BlockID { return nil }
func (Return[V]) NumRegions() int          { return 0 }
func (Return[V]) IsPure() bool             { return false }
func (Return[V]) IsSpeculatable() bool     { return false }
func (Return[V]) IsTerminator() bool       { return true }
func (Return[V]) IsConstant() bool         { return false }

func (r Return[V]) Interpret(interp dialect.Interpreter[V], results []ir.ValueID) (dialect.Continuation[V], error) {
	v, err := interp.ReadRef(r.Operand)
	if err != nil {
		return nil, err
	}
	return dialect.Return[V]{Value: v}, nil
}

// Call invokes a (possibly cross-stage) callee by delegating straight
// to dialect.Call[V] (spec section 4.10: "mixed-stage recursion" — the
// interpreter.Stack driver resolves Stage and Callee dynamically at
// Advance time, regardless of which stage issued the Call). It is not a
// structural terminator: interpreter.Stack's advanceReturn sets the
// caller's cursor to this statement's successor directly once the
// callee returns, so ordinary statements may follow a call in the same
// block, exactly as with any other value-producing instruction.
type Call[V any] struct {
	Stage         any // stage.ID of the callee
	Callee        any // ir.StatementID of the callee's entry statement
	Args          []ir.ValueID
	ResultBinding ir.ValueID
}

func (c Call[V]) Operands() []ir.ValueID { return append([]ir.ValueID(nil), c.Args...) }
func (Call[V]) ResultTypes() []ir.Type   { return []ir.Type{IntType{}} }
func (Call[V]) Successors() []ir.BlockID { return nil }
func (Call[V]) NumRegions() int          { return 0 }
func (Call[V]) IsPure() bool             { return false }
func (Call[V]) IsSpeculatable() bool     { return false }
func (Call[V]) IsTerminator() bool       { return false }
func (Call[V]) IsConstant() bool         { return false }

func (c Call[V]) Interpret(interp dialect.Interpreter[V], results []ir.ValueID) (dialect.Continuation[V], error) {
	args := make([]V, len(c.Args))
	for i, operand := range c.Args {
		v, err := interp.ReadRef(operand)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	resultBinding := c.ResultBinding
	if len(results) > 0 {
		resultBinding = results[0]
	}
	return dialect.Call[V]{Stage: c.Stage, Callee: c.Callee, Args: args, ResultBinding: resultBinding}, nil
}
