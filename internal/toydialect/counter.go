package toydialect

import (
	"fmt"

	"github.com/QuEraComputing/kirin/pkg/ir"
	"github.com/QuEraComputing/kirin/pkg/pipeline"
	"github.com/QuEraComputing/kirin/pkg/stage"
)

// CounterLoopStage marks a stage built by BuildCounterLoop.
type CounterLoopStage struct{}

// BuildCounterLoop builds entry: x0=0; jump header(x0); header(x): c =
// x<bound; condbr body, exit; body: x1 = x+1; jump header(x1); exit:
// return x — the loop shape from spec section 8 scenario 1 ("counting
// loop"), parameterized over Ops[V] so the same CFG drives both the
// concrete stack interpreter and the abstract interval interpreter.
func BuildCounterLoop[V any](p *pipeline.Pipeline, stageName string, ops Ops[V], bound int) (stage.ID, ir.BlockID, error) {
	stageID := pipeline.AddStage[CounterLoopStage, string](p, stageName)
	info, ok := pipeline.WithStage[CounterLoopStage, string](p, stageID)
	if !ok {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("toydialect: stage %q not found after AddStage", stageName)
	}
	store := info.Store

	region := store.NewRegion(ir.InvalidStatement)
	entry, _, err := store.NewBlock(region, nil)
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewBlock(entry): %w", err)
	}
	header, headerArgs, err := store.NewBlock(region, []ir.Type{IntType{}})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewBlock(header): %w", err)
	}
	body, _, err := store.NewBlock(region, nil)
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewBlock(body): %w", err)
	}
	exit, exitArgs, err := store.NewBlock(region, []ir.Type{IntType{}})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewBlock(exit): %w", err)
	}
	x := headerArgs[0]

	zeroID, err := store.NewStatement(Const[V]{Ops: ops, Value: 0})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewStatement(const 0): %w", err)
	}
	if err := store.AppendStatement(entry, zeroID); err != nil {
		return stage.ID(0), ir.BlockID(0), err
	}
	zeroStmt, _ := store.Statement(zeroID)

	jumpHeaderID, err := store.NewStatement(Jump[V]{Target: header, Args: []ir.ValueID{zeroStmt.Results[0]}})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewStatement(jump header): %w", err)
	}
	if err := store.AppendStatement(entry, jumpHeaderID); err != nil {
		return stage.ID(0), ir.BlockID(0), err
	}

	boundID, err := store.NewStatement(Const[V]{Ops: ops, Value: bound})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewStatement(const bound): %w", err)
	}
	if err := store.AppendStatement(header, boundID); err != nil {
		return stage.ID(0), ir.BlockID(0), err
	}
	boundStmt, _ := store.Statement(boundID)

	ltID, err := store.NewStatement(Lt[V]{Ops: ops, Lhs: x, Rhs: boundStmt.Results[0]})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewStatement(lt): %w", err)
	}
	if err := store.AppendStatement(header, ltID); err != nil {
		return stage.ID(0), ir.BlockID(0), err
	}
	ltStmt, _ := store.Statement(ltID)

	condID, err := store.NewStatement(CondBranch[V]{
		Ops: ops, Cond: ltStmt.Results[0], IfTrue: body, IfFalse: exit,
		TrueArgs: nil, FalseArgs: []ir.ValueID{x},
	})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewStatement(condbr): %w", err)
	}
	if err := store.AppendStatement(header, condID); err != nil {
		return stage.ID(0), ir.BlockID(0), err
	}

	oneID, err := store.NewStatement(Const[V]{Ops: ops, Value: 1})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewStatement(const 1): %w", err)
	}
	if err := store.AppendStatement(body, oneID); err != nil {
		return stage.ID(0), ir.BlockID(0), err
	}
	oneStmt, _ := store.Statement(oneID)

	addID, err := store.NewStatement(Add[V]{Ops: ops, Lhs: x, Rhs: oneStmt.Results[0]})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewStatement(add): %w", err)
	}
	if err := store.AppendStatement(body, addID); err != nil {
		return stage.ID(0), ir.BlockID(0), err
	}
	addStmt, _ := store.Statement(addID)

	jumpBackID, err := store.NewStatement(Jump[V]{Target: header, Args: []ir.ValueID{addStmt.Results[0]}})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewStatement(jump back): %w", err)
	}
	if err := store.AppendStatement(body, jumpBackID); err != nil {
		return stage.ID(0), ir.BlockID(0), err
	}

	retID, err := store.NewStatement(Return[V]{Operand: exitArgs[0]})
	if err != nil {
		return stage.ID(0), ir.BlockID(0), fmt.Errorf("NewStatement(return): %w", err)
	}
	if err := store.AppendStatement(exit, retID); err != nil {
		return stage.ID(0), ir.BlockID(0), err
	}

	return stageID, entry, nil
}
