package ir_test

import (
	"testing"

	"github.com/QuEraComputing/kirin/internal/kerrors"
	"github.com/QuEraComputing/kirin/pkg/ir"
)

// i32 is a minimal ir.Type used only to exercise the structural store;
// real dialects provide richer type lattices (pkg/dialect).
type i32 struct{}

func (i32) String() string           { return "i32" }
func (i32) Equal(other ir.Type) bool { _, ok := other.(i32); return ok }

// constDef is a zero-operand, single-result, non-terminator statement
// kind, standing in for something like "const 42 : i32".
type constDef struct{ results []ir.Type }

func (d constDef) Operands() []ir.ValueID    { return nil }
func (d constDef) ResultTypes() []ir.Type    { return d.results }
func (d constDef) Successors() []ir.BlockID  { return nil }
func (d constDef) NumRegions() int           { return 0 }
func (d constDef) IsPure() bool              { return true }
func (d constDef) IsSpeculatable() bool      { return true }
func (d constDef) IsTerminator() bool        { return false }
func (d constDef) IsConstant() bool          { return true }

// addDef consumes two operands and produces one result.
type addDef struct {
	lhs, rhs ir.ValueID
}

func (d addDef) Operands() []ir.ValueID   { return []ir.ValueID{d.lhs, d.rhs} }
func (d addDef) ResultTypes() []ir.Type   { return []ir.Type{i32{}} }
func (d addDef) Successors() []ir.BlockID { return nil }
func (d addDef) NumRegions() int          { return 0 }
func (d addDef) IsPure() bool             { return true }
func (d addDef) IsSpeculatable() bool     { return true }
func (d addDef) IsTerminator() bool       { return false }
func (d addDef) IsConstant() bool         { return false }

// returnDef is a terminator with no successors (function return).
type returnDef struct{ operand ir.ValueID }

func (d returnDef) Operands() []ir.ValueID   { return []ir.ValueID{d.operand} }
func (d returnDef) ResultTypes() []ir.Type   { return nil }
func (d returnDef) Successors() []ir.BlockID { return nil }
func (d returnDef) NumRegions() int          { return 0 }
func (d returnDef) IsPure() bool             { return false }
func (d returnDef) IsSpeculatable() bool     { return false }
func (d returnDef) IsTerminator() bool       { return true }
func (d returnDef) IsConstant() bool         { return false }

// branchDef is a terminator that jumps unconditionally to one successor.
type branchDef struct{ target ir.BlockID }

func (d branchDef) Operands() []ir.ValueID   { return nil }
func (d branchDef) ResultTypes() []ir.Type   { return nil }
func (d branchDef) Successors() []ir.BlockID { return []ir.BlockID{d.target} }
func (d branchDef) NumRegions() int          { return 0 }
func (d branchDef) IsPure() bool             { return false }
func (d branchDef) IsSpeculatable() bool     { return false }
func (d branchDef) IsTerminator() bool       { return true }
func (d branchDef) IsConstant() bool         { return false }

func buildSingleBlockFunction(t *testing.T) (*ir.Store, ir.RegionID, ir.BlockID, ir.StatementID, ir.StatementID) {
	t.Helper()
	s := ir.NewStore()
	region := s.NewRegion(ir.InvalidStatement)
	block, _, err := s.NewBlock(region, nil)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}

	constID, err := s.NewStatement(constDef{results: []ir.Type{i32{}}})
	if err != nil {
		t.Fatalf("NewStatement(const): %v", err)
	}
	if err := s.AppendStatement(block, constID); err != nil {
		t.Fatalf("AppendStatement(const): %v", err)
	}
	constStmt, err := s.Statement(constID)
	if err != nil {
		t.Fatalf("Statement(const): %v", err)
	}

	retID, err := s.NewStatement(returnDef{operand: constStmt.Results[0]})
	if err != nil {
		t.Fatalf("NewStatement(return): %v", err)
	}
	if err := s.AppendStatement(block, retID); err != nil {
		t.Fatalf("AppendStatement(return): %v", err)
	}
	return s, region, block, constID, retID
}

func TestAppendBuildsWellFormedBlock(t *testing.T) {
	s, region, _, _, _ := buildSingleBlockFunction(t)
	if err := s.Validate([]ir.RegionID{region}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAppendAfterTerminatorRejected(t *testing.T) {
	s, _, block, _, _ := buildSingleBlockFunction(t)
	extraID, err := s.NewStatement(constDef{results: []ir.Type{i32{}}})
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}
	err = s.AppendStatement(block, extraID)
	if !kerrors.Is(err, kerrors.KindInvalidTerminator) {
		t.Fatalf("expected KindInvalidTerminator, got %v", err)
	}
}

func TestInsertBeforeTerminatorSucceeds(t *testing.T) {
	s, region, block, _, retID := buildSingleBlockFunction(t)
	midID, err := s.NewStatement(constDef{results: []ir.Type{i32{}}})
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}
	if err := s.InsertBefore(retID, midID); err != nil {
		t.Fatalf("InsertBefore: %v", err)
	}
	if err := s.Validate([]ir.RegionID{region}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	blk, err := s.Block(block)
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if blk.LastStmt != retID {
		t.Fatalf("expected return to remain last statement, got %v", blk.LastStmt)
	}
}

func TestCrossRegionSuccessorRejected(t *testing.T) {
	s := ir.NewStore()
	region1 := s.NewRegion(ir.InvalidStatement)
	region2 := s.NewRegion(ir.InvalidStatement)
	block1, _, err := s.NewBlock(region1, nil)
	if err != nil {
		t.Fatalf("NewBlock region1: %v", err)
	}
	block2, _, err := s.NewBlock(region2, nil)
	if err != nil {
		t.Fatalf("NewBlock region2: %v", err)
	}

	branchID, err := s.NewStatement(branchDef{target: block2})
	if err != nil {
		t.Fatalf("NewStatement(branch): %v", err)
	}
	err = s.AppendStatement(block1, branchID)
	if !kerrors.Is(err, kerrors.KindCrossRegionSuccessor) {
		t.Fatalf("expected KindCrossRegionSuccessor, got %v", err)
	}
}

func TestReplaceAllUsesWithRewritesOperands(t *testing.T) {
	s, region, block, constID, retID := buildSingleBlockFunction(t)
	constStmt, err := s.Statement(constID)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	oldVal := constStmt.Results[0]

	newConstID, err := s.NewStatement(constDef{results: []ir.Type{i32{}}})
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}
	if err := s.InsertBefore(constID, newConstID); err != nil {
		t.Fatalf("InsertBefore: %v", err)
	}
	newConstStmt, err := s.Statement(newConstID)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	newVal := newConstStmt.Results[0]

	if err := s.ReplaceAllUsesWith(oldVal, newVal); err != nil {
		t.Fatalf("ReplaceAllUsesWith: %v", err)
	}

	retStmt, err := s.Statement(retID)
	if err != nil {
		t.Fatalf("Statement(return): %v", err)
	}
	if retStmt.Operands[0] != newVal {
		t.Fatalf("expected return operand to be rewritten to %v, got %v", newVal, retStmt.Operands[0])
	}

	newV, err := s.Value(newVal)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if len(newV.Uses) != 1 || newV.Uses[0].Stmt != retID {
		t.Fatalf("expected new value to have exactly the moved use, got %+v", newV.Uses)
	}

	oldV, err := s.Value(oldVal)
	if err != nil {
		t.Fatalf("Value(old): %v", err)
	}
	if len(oldV.Uses) != 0 {
		t.Fatalf("expected old value to have no remaining uses, got %+v", oldV.Uses)
	}
	_ = region
	_ = block
}

func TestEraseStatementReleasesOperandUses(t *testing.T) {
	s, _, _, constID, retID := buildSingleBlockFunction(t)
	constStmt, err := s.Statement(constID)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	val := constStmt.Results[0]

	if err := s.EraseStatement(retID); err != nil {
		t.Fatalf("EraseStatement: %v", err)
	}
	if s.IsLiveStatement(retID) {
		t.Fatalf("expected return statement to be tombstoned")
	}

	v, err := s.Value(val)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if len(v.Uses) != 0 {
		t.Fatalf("expected const's result to have no uses after its consumer was erased, got %+v", v.Uses)
	}
}

func TestReplaceStatementArityMismatch(t *testing.T) {
	s, _, _, constID, _ := buildSingleBlockFunction(t)
	zeroResultID, err := s.NewStatement(constDef{results: nil})
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}
	err = s.ReplaceStatement(constID, zeroResultID)
	if !kerrors.Is(err, kerrors.KindArityMismatch) {
		t.Fatalf("expected KindArityMismatch, got %v", err)
	}
}

func TestReplaceStatementRewritesUsesAndTombstonesOld(t *testing.T) {
	s, region, _, constID, retID := buildSingleBlockFunction(t)
	replacementID, err := s.NewStatement(constDef{results: []ir.Type{i32{}}})
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}

	if err := s.ReplaceStatement(constID, replacementID); err != nil {
		t.Fatalf("ReplaceStatement: %v", err)
	}
	if s.IsLiveStatement(constID) {
		t.Fatalf("expected old statement to be tombstoned")
	}
	if err := s.Validate([]ir.RegionID{region}); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	retStmt, err := s.Statement(retID)
	if err != nil {
		t.Fatalf("Statement(return): %v", err)
	}
	replacementStmt, err := s.Statement(replacementID)
	if err != nil {
		t.Fatalf("Statement(replacement): %v", err)
	}
	if retStmt.Operands[0] != replacementStmt.Results[0] {
		t.Fatalf("expected return to consume replacement's result")
	}
}

func TestRemoveStatementThenReinsertElsewhere(t *testing.T) {
	s, region, block, constID, _ := buildSingleBlockFunction(t)
	if err := s.RemoveStatement(constID); err != nil {
		t.Fatalf("RemoveStatement: %v", err)
	}
	blk, err := s.Block(block)
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if err := s.Validate([]ir.RegionID{region}); err != nil {
		t.Fatalf("Validate after removal: %v", err)
	}
	_ = blk

	// Re-attach it to a fresh block in the same region.
	block2, _, err := s.NewBlock(region, nil)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	if err := s.AppendStatement(block2, constID); err != nil {
		t.Fatalf("AppendStatement: %v", err)
	}
	stmt, err := s.Statement(constID)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if stmt.Block != block2 {
		t.Fatalf("expected statement to be attached to block2")
	}
}

func TestDoubleAttachRejected(t *testing.T) {
	s, region, _, constID, _ := buildSingleBlockFunction(t)
	block2, _, err := s.NewBlock(region, nil)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	err = s.AppendStatement(block2, constID)
	if err == nil {
		t.Fatalf("expected error attaching an already-attached statement twice")
	}
}

func TestInsertBeforeDetachedCursorRejected(t *testing.T) {
	s := ir.NewStore()
	detachedID, err := s.NewStatement(constDef{results: []ir.Type{i32{}}})
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}
	otherID, err := s.NewStatement(constDef{results: []ir.Type{i32{}}})
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}
	err = s.InsertBefore(detachedID, otherID)
	if !kerrors.Is(err, kerrors.KindOrphanStatement) {
		t.Fatalf("expected KindOrphanStatement, got %v", err)
	}
}

func TestValidateRejectsBlockMissingTerminator(t *testing.T) {
	s := ir.NewStore()
	region := s.NewRegion(ir.InvalidStatement)
	block, _, err := s.NewBlock(region, nil)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	constID, err := s.NewStatement(constDef{results: []ir.Type{i32{}}})
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}
	if err := s.AppendStatement(block, constID); err != nil {
		t.Fatalf("AppendStatement: %v", err)
	}

	err = s.Validate([]ir.RegionID{region})
	if !kerrors.Is(err, kerrors.KindInvalidTerminator) {
		t.Fatalf("expected KindInvalidTerminator, got %v", err)
	}
}
