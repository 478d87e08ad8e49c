package interpreter_test

import (
	"testing"

	"github.com/QuEraComputing/kirin/internal/kerrors"
	"github.com/QuEraComputing/kirin/pkg/dialect"
	"github.com/QuEraComputing/kirin/pkg/interpreter"
	"github.com/QuEraComputing/kirin/pkg/ir"
	"github.com/QuEraComputing/kirin/pkg/pipeline"
	"github.com/QuEraComputing/kirin/pkg/stage"
)

type intType struct{}

func (intType) String() string           { return "int" }
func (intType) Equal(other ir.Type) bool { _, ok := other.(intType); return ok }

// constOp produces a literal int value.
type constOp struct{ value int }

func (constOp) Operands() []ir.ValueID   { return nil }
func (constOp) ResultTypes() []ir.Type   { return []ir.Type{intType{}} }
func (constOp) Successors() []ir.BlockID { return nil }
func (constOp) NumRegions() int          { return 0 }
func (constOp) IsPure() bool             { return true }
func (constOp) IsSpeculatable() bool     { return true }
func (constOp) IsTerminator() bool       { return false }
func (constOp) IsConstant() bool         { return true }
func (c constOp) Interpret(interp dialect.Interpreter[int], results []ir.ValueID) (dialect.Continuation[int], error) {
	if err := interp.Write(results[0], c.value); err != nil {
		return nil, err
	}
	return dialect.Continue{}, nil
}

// jumpOp unconditionally transfers to target, passing args.
type jumpOp struct {
	target ir.BlockID
	args   []ir.ValueID
}

func (jumpOp) Operands() []ir.ValueID     { return nil }
func (jumpOp) ResultTypes() []ir.Type     { return nil }
func (j jumpOp) Successors() []ir.BlockID { return []ir.BlockID{j.target} }
func (jumpOp) NumRegions() int            { return 0 }
func (jumpOp) IsPure() bool               { return false }
func (jumpOp) IsSpeculatable() bool       { return false }
func (jumpOp) IsTerminator() bool         { return true }
func (jumpOp) IsConstant() bool           { return false }
func (j jumpOp) Interpret(interp dialect.Interpreter[int], results []ir.ValueID) (dialect.Continuation[int], error) {
	return dialect.Jump{Target: j.target, Args: j.args}, nil
}

// ltOp computes lhs < rhs as a 0/1 int.
type ltOp struct{ lhs, rhs ir.ValueID }

func (l ltOp) Operands() []ir.ValueID  { return []ir.ValueID{l.lhs, l.rhs} }
func (ltOp) ResultTypes() []ir.Type    { return []ir.Type{intType{}} }
func (ltOp) Successors() []ir.BlockID  { return nil }
func (ltOp) NumRegions() int           { return 0 }
func (ltOp) IsPure() bool              { return true }
func (ltOp) IsSpeculatable() bool      { return true }
func (ltOp) IsTerminator() bool        { return false }
func (ltOp) IsConstant() bool          { return false }
func (l ltOp) Interpret(interp dialect.Interpreter[int], results []ir.ValueID) (dialect.Continuation[int], error) {
	lhs, err := interp.ReadRef(l.lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := interp.ReadRef(l.rhs)
	if err != nil {
		return nil, err
	}
	out := 0
	if lhs < rhs {
		out = 1
	}
	if err := interp.Write(results[0], out); err != nil {
		return nil, err
	}
	return dialect.Continue{}, nil
}

// addOp computes lhs + rhs.
type addOp struct{ lhs, rhs ir.ValueID }

func (a addOp) Operands() []ir.ValueID { return []ir.ValueID{a.lhs, a.rhs} }
func (addOp) ResultTypes() []ir.Type   { return []ir.Type{intType{}} }
func (addOp) Successors() []ir.BlockID { return nil }
func (addOp) NumRegions() int          { return 0 }
func (addOp) IsPure() bool             { return true }
func (addOp) IsSpeculatable() bool     { return true }
func (addOp) IsTerminator() bool       { return false }
func (addOp) IsConstant() bool         { return false }
func (a addOp) Interpret(interp dialect.Interpreter[int], results []ir.ValueID) (dialect.Continuation[int], error) {
	lhs, err := interp.ReadRef(a.lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := interp.ReadRef(a.rhs)
	if err != nil {
		return nil, err
	}
	if err := interp.Write(results[0], lhs+rhs); err != nil {
		return nil, err
	}
	return dialect.Continue{}, nil
}

// condBranchOp branches to ifTrue when cond != 0, else ifFalse.
type condBranchOp struct {
	cond             ir.ValueID
	ifTrue, ifFalse  ir.BlockID
	trueArgs, falseArgs []ir.ValueID
}

func (c condBranchOp) Operands() []ir.ValueID   { return []ir.ValueID{c.cond} }
func (condBranchOp) ResultTypes() []ir.Type     { return nil }
func (c condBranchOp) Successors() []ir.BlockID { return []ir.BlockID{c.ifTrue, c.ifFalse} }
func (condBranchOp) NumRegions() int            { return 0 }
func (condBranchOp) IsPure() bool               { return false }
func (condBranchOp) IsSpeculatable() bool       { return false }
func (condBranchOp) IsTerminator() bool         { return true }
func (condBranchOp) IsConstant() bool           { return false }
func (c condBranchOp) Interpret(interp dialect.Interpreter[int], results []ir.ValueID) (dialect.Continuation[int], error) {
	v, err := interp.ReadRef(c.cond)
	if err != nil {
		return nil, err
	}
	if v != 0 {
		return dialect.Jump{Target: c.ifTrue, Args: c.trueArgs}, nil
	}
	return dialect.Jump{Target: c.ifFalse, Args: c.falseArgs}, nil
}

// returnOp returns operand's value.
type returnOp struct{ operand ir.ValueID }

func (r returnOp) Operands() []ir.ValueID { return []ir.ValueID{r.operand} }
func (returnOp) ResultTypes() []ir.Type   { return nil }
func (returnOp) Successors() []ir.BlockID { return nil }
func (returnOp) NumRegions() int          { return 0 }
func (returnOp) IsPure() bool             { return false }
func (returnOp) IsSpeculatable() bool     { return false }
func (returnOp) IsTerminator() bool       { return true }
func (returnOp) IsConstant() bool         { return false }
func (r returnOp) Interpret(interp dialect.Interpreter[int], results []ir.ValueID) (dialect.Continuation[int], error) {
	v, err := interp.ReadRef(r.operand)
	if err != nil {
		return nil, err
	}
	return dialect.Return[int]{Value: v}, nil
}

// counterLoop type only.
type counterDialect struct{}

func buildCounterLoop(t *testing.T) (*pipeline.Pipeline, stage.ID, ir.BlockID) {
	t.Helper()
	p := pipeline.New()
	stageID := pipeline.AddStage[counterDialect, string](p, "concrete")
	info, ok := pipeline.WithStage[counterDialect, string](p, stageID)
	if !ok {
		t.Fatalf("WithStage: stage not found")
	}
	store := info.Store

	region := store.NewRegion(ir.InvalidStatement)
	entry, _, err := store.NewBlock(region, nil)
	if err != nil {
		t.Fatalf("NewBlock(entry): %v", err)
	}
	header, headerArgs, err := store.NewBlock(region, []ir.Type{intType{}})
	if err != nil {
		t.Fatalf("NewBlock(header): %v", err)
	}
	body, _, err := store.NewBlock(region, nil)
	if err != nil {
		t.Fatalf("NewBlock(body): %v", err)
	}
	exit, _, err := store.NewBlock(region, nil)
	if err != nil {
		t.Fatalf("NewBlock(exit): %v", err)
	}
	x := headerArgs[0]

	// entry: const 0; jump header(0)
	zeroID, err := store.NewStatement(constOp{value: 0})
	if err != nil {
		t.Fatalf("NewStatement(const 0): %v", err)
	}
	if err := store.AppendStatement(entry, zeroID); err != nil {
		t.Fatalf("Append(const 0): %v", err)
	}
	zeroStmt, _ := store.Statement(zeroID)
	jumpToHeaderID, err := store.NewStatement(jumpOp{target: header, args: []ir.ValueID{zeroStmt.Results[0]}})
	if err != nil {
		t.Fatalf("NewStatement(jump header): %v", err)
	}
	if err := store.AppendStatement(entry, jumpToHeaderID); err != nil {
		t.Fatalf("Append(jump header): %v", err)
	}

	// header: const 100; lt x, 100; condbr body, exit
	hundredID, err := store.NewStatement(constOp{value: 100})
	if err != nil {
		t.Fatalf("NewStatement(const 100): %v", err)
	}
	if err := store.AppendStatement(header, hundredID); err != nil {
		t.Fatalf("Append(const 100): %v", err)
	}
	hundredStmt, _ := store.Statement(hundredID)

	ltID, err := store.NewStatement(ltOp{lhs: x, rhs: hundredStmt.Results[0]})
	if err != nil {
		t.Fatalf("NewStatement(lt): %v", err)
	}
	if err := store.AppendStatement(header, ltID); err != nil {
		t.Fatalf("Append(lt): %v", err)
	}
	ltStmt, _ := store.Statement(ltID)

	condBranchID, err := store.NewStatement(condBranchOp{
		cond: ltStmt.Results[0], ifTrue: body, ifFalse: exit,
		trueArgs: nil, falseArgs: nil,
	})
	if err != nil {
		t.Fatalf("NewStatement(condbr): %v", err)
	}
	if err := store.AppendStatement(header, condBranchID); err != nil {
		t.Fatalf("Append(condbr): %v", err)
	}

	// body: const 1; add x, 1; jump header(x+1)
	oneID, err := store.NewStatement(constOp{value: 1})
	if err != nil {
		t.Fatalf("NewStatement(const 1): %v", err)
	}
	if err := store.AppendStatement(body, oneID); err != nil {
		t.Fatalf("Append(const 1): %v", err)
	}
	oneStmt, _ := store.Statement(oneID)

	addID, err := store.NewStatement(addOp{lhs: x, rhs: oneStmt.Results[0]})
	if err != nil {
		t.Fatalf("NewStatement(add): %v", err)
	}
	if err := store.AppendStatement(body, addID); err != nil {
		t.Fatalf("Append(add): %v", err)
	}
	addStmt, _ := store.Statement(addID)

	jumpToHeader2ID, err := store.NewStatement(jumpOp{target: header, args: []ir.ValueID{addStmt.Results[0]}})
	if err != nil {
		t.Fatalf("NewStatement(jump header 2): %v", err)
	}
	if err := store.AppendStatement(body, jumpToHeader2ID); err != nil {
		t.Fatalf("Append(jump header 2): %v", err)
	}

	// exit: return x
	retID, err := store.NewStatement(returnOp{operand: x})
	if err != nil {
		t.Fatalf("NewStatement(return): %v", err)
	}
	if err := store.AppendStatement(exit, retID); err != nil {
		t.Fatalf("Append(return): %v", err)
	}

	_ = region
	return p, stageID, entry
}

func TestCounterLoopConcrete(t *testing.T) {
	p, stageID, entry := buildCounterLoop(t)
	stack := interpreter.New[int, struct{}](p.StoreFor).WithFuel(10000)

	cont, err := runFrom(stack, stageID, entry)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	ret, ok := cont.(dialect.Return[int])
	if !ok {
		t.Fatalf("expected a Return continuation, got %T", cont)
	}
	if ret.Value != 100 {
		t.Fatalf("expected counter loop to return 100, got %d", ret.Value)
	}
}

func TestCounterLoopFuelExhaustion(t *testing.T) {
	p, stageID, entry := buildCounterLoop(t)
	stack := interpreter.New[int, struct{}](p.StoreFor).WithFuel(50)

	_, err := runFrom(stack, stageID, entry)
	if !kerrors.Is(err, kerrors.KindExhausted) {
		t.Fatalf("expected KindExhausted, got %v", err)
	}
}

func runFrom(stack *interpreter.Stack[int, struct{}], stageID stage.ID, entry ir.BlockID) (dialect.Continuation[int], error) {
	return stack.RunFromBlock(stageID, entry, nil)
}
