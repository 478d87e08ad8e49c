package toydialect

import (
	"fmt"

	"github.com/QuEraComputing/kirin/pkg/ir"
	"github.com/QuEraComputing/kirin/pkg/pipeline"
	"github.com/QuEraComputing/kirin/pkg/stage"
)

// CalleeStage and CallerStage mark the two stages built by
// BuildMixedStageRecursion.
type CalleeStage struct{}
type CallerStage struct{}

// FuncDef is a bare statement whose sole purpose is to own a region
// (spec section 3: regions are owned by the statement that introduces
// them), so that interpreter.Stack.advanceCall's entry.Regions()[0]
// lookup has a populated callee body to resolve through.
type FuncDef struct{}

func (FuncDef) Operands() []ir.ValueID   { return nil }
func (FuncDef) ResultTypes() []ir.Type   { return nil }
func (FuncDef) Successors() []ir.BlockID { return nil }
func (FuncDef) NumRegions() int          { return 1 }
func (FuncDef) IsPure() bool             { return true }
func (FuncDef) IsSpeculatable() bool     { return false }
func (FuncDef) IsTerminator() bool       { return false }
func (FuncDef) IsConstant() bool         { return false }

// BuildMixedStageRecursion wires two stages: the callee stage hosts a
// single block add5(n) returning n+5; the caller stage hosts main(),
// which calls add5(37) in the callee's store and returns its result —
// the cross-stage dispatch scenario from spec section 8 scenario 5.
// interpreter.Stack.advanceCall resolves Stage/Callee dynamically
// against whichever stage they name, independent of which stage issued
// the call.
func BuildMixedStageRecursion(p *pipeline.Pipeline) (callerID stage.ID, callerEntry ir.BlockID, err error) {
	calleeID := pipeline.AddStage[CalleeStage, string](p, "callee")
	calleeInfo, ok := pipeline.WithStage[CalleeStage, string](p, calleeID)
	if !ok {
		return 0, 0, fmt.Errorf("toydialect: callee stage not found after AddStage")
	}
	calleeStore := calleeInfo.Store

	funcDefID, err := calleeStore.NewStatement(FuncDef{})
	if err != nil {
		return 0, 0, fmt.Errorf("NewStatement(FuncDef): %w", err)
	}
	funcDefStmt, _ := calleeStore.Statement(funcDefID)
	calleeRegion := funcDefStmt.Regions[0]

	calleeEntry, calleeArgs, err := calleeStore.NewBlock(calleeRegion, []ir.Type{IntType{}})
	if err != nil {
		return 0, 0, fmt.Errorf("NewBlock(callee entry): %w", err)
	}
	n := calleeArgs[0]

	fiveID, err := calleeStore.NewStatement(Const[int]{Ops: IntOps{}, Value: 5})
	if err != nil {
		return 0, 0, fmt.Errorf("NewStatement(const 5): %w", err)
	}
	if err := calleeStore.AppendStatement(calleeEntry, fiveID); err != nil {
		return 0, 0, err
	}
	fiveStmt, _ := calleeStore.Statement(fiveID)

	addID, err := calleeStore.NewStatement(Add[int]{Ops: IntOps{}, Lhs: n, Rhs: fiveStmt.Results[0]})
	if err != nil {
		return 0, 0, fmt.Errorf("NewStatement(add): %w", err)
	}
	if err := calleeStore.AppendStatement(calleeEntry, addID); err != nil {
		return 0, 0, err
	}
	addStmt, _ := calleeStore.Statement(addID)

	retID, err := calleeStore.NewStatement(Return[int]{Operand: addStmt.Results[0]})
	if err != nil {
		return 0, 0, fmt.Errorf("NewStatement(return): %w", err)
	}
	if err := calleeStore.AppendStatement(calleeEntry, retID); err != nil {
		return 0, 0, err
	}

	callerID = pipeline.AddStage[CallerStage, string](p, "caller")
	callerInfo, ok := pipeline.WithStage[CallerStage, string](p, callerID)
	if !ok {
		return 0, 0, fmt.Errorf("toydialect: caller stage not found after AddStage")
	}
	callerStore := callerInfo.Store

	callerRegion := callerStore.NewRegion(ir.InvalidStatement)
	callerEntry, _, err = callerStore.NewBlock(callerRegion, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("NewBlock(caller entry): %w", err)
	}

	argID, err := callerStore.NewStatement(Const[int]{Ops: IntOps{}, Value: 37})
	if err != nil {
		return 0, 0, fmt.Errorf("NewStatement(const 37): %w", err)
	}
	if err := callerStore.AppendStatement(callerEntry, argID); err != nil {
		return 0, 0, err
	}
	argStmt, _ := callerStore.Statement(argID)

	callID, err := callerStore.NewStatement(Call[int]{
		Stage:  calleeID,
		Callee: funcDefID,
		Args:   []ir.ValueID{argStmt.Results[0]},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("NewStatement(call): %w", err)
	}
	if err := callerStore.AppendStatement(callerEntry, callID); err != nil {
		return 0, 0, err
	}
	callStmt, _ := callerStore.Statement(callID)

	callerRetID, err := callerStore.NewStatement(Return[int]{Operand: callStmt.Results[0]})
	if err != nil {
		return 0, 0, fmt.Errorf("NewStatement(caller return): %w", err)
	}
	if err := callerStore.AppendStatement(callerEntry, callerRetID); err != nil {
		return 0, 0, err
	}

	return callerID, callerEntry, nil
}
