package ir

import (
	"github.com/QuEraComputing/kirin/internal/karena"
	"github.com/QuEraComputing/kirin/internal/kerrors"
)

// Store owns every Value, Statement, Block, and Region belonging to one
// compile stage's dialect instance. All four arenas share one Store so
// that a single compaction run can be offered to callers as one
// operation (spec section 4.1, "it is the caller's responsibility to
// apply [a compaction remapping] to external references").
//
// Every mutating operation below is a Store method rather than a method
// on Statement/Block/Region themselves, matching the ownership
// discipline in spec section 9: "Ownership is singular (the arena);
// every other reference is a by-index back-reference that the arena
// checks at dereference."
type Store struct {
	Values     *karena.Arena[Value]
	Statements *karena.Arena[Statement]
	Blocks     *karena.Arena[Block]
	Regions    *karena.Arena[Region]
}

// NewStore creates an empty structural store.
func NewStore() *Store {
	return &Store{
		Values:     karena.New[Value](),
		Statements: karena.New[Statement](),
		Blocks:     karena.New[Block](),
		Regions:    karena.New[Region](),
	}
}

// --- construction ---------------------------------------------------

// NewRegion allocates an empty region owned by owner (InvalidStatement
// for a top-level function body).
func (s *Store) NewRegion(owner StatementID) RegionID {
	return RegionID(s.Regions.Alloc(Region{Owner: owner, FirstBlock: InvalidBlock, LastBlock: InvalidBlock}))
}

// NewBlock allocates a block with the given argument types inside
// region, appending it as the region's new last block (or entry block,
// if region was empty).
func (s *Store) NewBlock(region RegionID, argTypes []Type) (BlockID, []ValueID, error) {
	blockID := BlockID(s.Blocks.Alloc(Block{Region: region, FirstStmt: InvalidStatement, LastStmt: InvalidStatement}))
	args := make([]ValueID, len(argTypes))
	for i, t := range argTypes {
		args[i] = ValueID(s.Values.Alloc(Value{Origin: OriginBlockArgument, Block: blockID, ArgIndex: i, Type: t}))
	}
	blk, err := s.Blocks.GetMut(karena.ID(blockID))
	if err != nil {
		return InvalidBlock, nil, err
	}
	blk.Args = args
	if err := s.AppendBlockToRegion(region, blockID); err != nil {
		return InvalidBlock, nil, err
	}
	return blockID, args, nil
}

// NewStatement allocates a detached statement from a dialect payload:
// operand use-list entries are registered, result values are allocated
// per def.ResultTypes(), and def.NumRegions() empty child regions are
// allocated. The statement is not yet part of any block; Append*
// attaches it.
func (s *Store) NewStatement(def Definition) (StatementID, error) {
	operands := def.Operands()
	stmtID := StatementID(s.Statements.Alloc(Statement{
		Block:      InvalidBlock,
		Prev:       InvalidStatement,
		Next:       InvalidStatement,
		Operands:   append([]ValueID(nil), operands...),
		Successors: append([]BlockID(nil), def.Successors()...),
		Def:        def,
	}))
	for i, opID := range operands {
		if err := s.addUse(opID, stmtID, i); err != nil {
			return InvalidStatement, err
		}
	}

	resultTypes := def.ResultTypes()
	results := make([]ValueID, len(resultTypes))
	for i, t := range resultTypes {
		results[i] = ValueID(s.Values.Alloc(Value{Origin: OriginStatementResult, Stmt: stmtID, ResultIndex: i, Type: t}))
	}

	numRegions := def.NumRegions()
	regions := make([]RegionID, numRegions)
	for i := 0; i < numRegions; i++ {
		regions[i] = s.NewRegion(stmtID)
	}

	stmt, err := s.Statements.GetMut(karena.ID(stmtID))
	if err != nil {
		return InvalidStatement, err
	}
	stmt.Results = results
	stmt.Regions = regions
	return stmtID, nil
}

// --- block/statement linkage -----------------------------------------

// linkBetween wires stmtID into block's intrusive statement list between
// prevID and nextID (either may be InvalidStatement), enforcing
// invariant 2 (a terminator must be last) and invariant 4 (a
// terminator's successors must stay within block's region).
func (s *Store) linkBetween(block BlockID, prevID, nextID StatementID, stmtID StatementID) error {
	stmt, err := s.Statements.GetMut(karena.ID(stmtID))
	if err != nil {
		return err
	}
	if !stmt.IsDetached() {
		return kerrors.BadState("statement is already attached to a block")
	}
	if err := s.checkSuccessorRegions(block, stmt); err != nil {
		return err
	}
	if prevID != InvalidStatement {
		prev, err := s.Statements.Get(karena.ID(prevID))
		if err != nil {
			return err
		}
		if prev.Def.IsTerminator() {
			return kerrors.InvalidTerminator("cannot insert after a terminator")
		}
	}
	if stmt.Def.IsTerminator() && nextID != InvalidStatement {
		return kerrors.InvalidTerminator("terminator must be the last statement in its block")
	}

	stmt.Block = block
	stmt.Prev = prevID
	stmt.Next = nextID

	blk, err := s.Blocks.GetMut(karena.ID(block))
	if err != nil {
		return err
	}
	if prevID == InvalidStatement {
		blk.FirstStmt = stmtID
	} else {
		p, err := s.Statements.GetMut(karena.ID(prevID))
		if err != nil {
			return err
		}
		p.Next = stmtID
	}
	if nextID == InvalidStatement {
		blk.LastStmt = stmtID
	} else {
		n, err := s.Statements.GetMut(karena.ID(nextID))
		if err != nil {
			return err
		}
		n.Prev = stmtID
	}
	return nil
}

func (s *Store) checkSuccessorRegions(block BlockID, stmt *Statement) error {
	if len(stmt.Successors) == 0 {
		return nil
	}
	blk, err := s.Blocks.Get(karena.ID(block))
	if err != nil {
		return err
	}
	for _, succ := range stmt.Successors {
		succBlk, err := s.Blocks.Get(karena.ID(succ))
		if err != nil {
			return err
		}
		if succBlk.Region != blk.Region {
			return kerrors.CrossRegionSuccessor()
		}
	}
	return nil
}

// AppendStatement inserts stmtID at the tail of block's statement list.
func (s *Store) AppendStatement(block BlockID, stmtID StatementID) error {
	blk, err := s.Blocks.Get(karena.ID(block))
	if err != nil {
		return err
	}
	return s.linkBetween(block, blk.LastStmt, InvalidStatement, stmtID)
}

// InsertBefore inserts stmtID immediately before cursor in cursor's
// block.
func (s *Store) InsertBefore(cursor, stmtID StatementID) error {
	cur, err := s.Statements.Get(karena.ID(cursor))
	if err != nil {
		return err
	}
	if cur.IsDetached() {
		return kerrors.OrphanStatement()
	}
	return s.linkBetween(cur.Block, cur.Prev, cursor, stmtID)
}

// InsertAfter inserts stmtID immediately after cursor in cursor's block.
func (s *Store) InsertAfter(cursor, stmtID StatementID) error {
	cur, err := s.Statements.Get(karena.ID(cursor))
	if err != nil {
		return err
	}
	if cur.IsDetached() {
		return kerrors.OrphanStatement()
	}
	return s.linkBetween(cur.Block, cursor, cur.Next, stmtID)
}

// RemoveStatement unlinks stmtID from its block without touching its
// operand use-list entries (spec section 4.4, "Block::remove(stmt)").
// The statement remains live in the arena, just detached.
func (s *Store) RemoveStatement(stmtID StatementID) error {
	stmt, err := s.Statements.GetMut(karena.ID(stmtID))
	if err != nil {
		return err
	}
	if stmt.IsDetached() {
		return kerrors.OrphanStatement()
	}
	blk, err := s.Blocks.GetMut(karena.ID(stmt.Block))
	if err != nil {
		return err
	}
	if stmt.Prev == InvalidStatement {
		blk.FirstStmt = stmt.Next
	} else {
		p, err := s.Statements.GetMut(karena.ID(stmt.Prev))
		if err != nil {
			return err
		}
		p.Next = stmt.Next
	}
	if stmt.Next == InvalidStatement {
		blk.LastStmt = stmt.Prev
	} else {
		n, err := s.Statements.GetMut(karena.ID(stmt.Next))
		if err != nil {
			return err
		}
		n.Prev = stmt.Prev
	}
	stmt.Block = InvalidBlock
	stmt.Prev = InvalidStatement
	stmt.Next = InvalidStatement
	return nil
}

// ReplaceStatement swaps oldID for newID in-place (same block position)
// and rewrites every use of oldID's results to newID's corresponding
// results. Arity of the two result lists must match. oldID is erased
// (its own operand uses released, its arena slot tombstoned) once the
// swap completes.
func (s *Store) ReplaceStatement(oldID, newID StatementID) error {
	oldStmt, err := s.Statements.Get(karena.ID(oldID))
	if err != nil {
		return err
	}
	newStmt, err := s.Statements.Get(karena.ID(newID))
	if err != nil {
		return err
	}
	if len(oldStmt.Results) != len(newStmt.Results) {
		return kerrors.ArityMismatch(len(oldStmt.Results), len(newStmt.Results))
	}
	if oldStmt.IsDetached() {
		return kerrors.OrphanStatement()
	}

	block, prev, next := oldStmt.Block, oldStmt.Prev, oldStmt.Next

	if err := s.RemoveStatement(oldID); err != nil {
		return err
	}
	if err := s.linkBetween(block, prev, next, newID); err != nil {
		return err
	}
	for i := range oldStmt.Results {
		if err := s.ReplaceAllUsesWith(oldStmt.Results[i], newStmt.Results[i]); err != nil {
			return err
		}
	}
	return s.eraseOperandsAndTombstone(oldID)
}

// EraseStatement unlinks stmtID (if attached), releases its operand
// uses, recursively erases its contained regions, and tombstones its
// arena slot (spec section 4.4, "Statement::erase()").
func (s *Store) EraseStatement(stmtID StatementID) error {
	stmt, err := s.Statements.Get(karena.ID(stmtID))
	if err != nil {
		return err
	}
	if !stmt.IsDetached() {
		if err := s.RemoveStatement(stmtID); err != nil {
			return err
		}
	}
	for _, regionID := range stmt.Regions {
		if err := s.EraseRegion(regionID); err != nil {
			return err
		}
	}
	return s.eraseOperandsAndTombstone(stmtID)
}

func (s *Store) eraseOperandsAndTombstone(stmtID StatementID) error {
	stmt, err := s.Statements.Get(karena.ID(stmtID))
	if err != nil {
		return err
	}
	for i, opID := range stmt.Operands {
		_ = s.removeUse(opID, stmtID, i)
	}
	return s.Statements.MarkDeleted(karena.ID(stmtID))
}

// EraseRegion tombstones every block in region (recursively erasing
// their statements) and then region itself.
func (s *Store) EraseRegion(regionID RegionID) error {
	region, err := s.Regions.Get(karena.ID(regionID))
	if err != nil {
		return err
	}
	blockID := region.FirstBlock
	for blockID != InvalidBlock {
		blk, err := s.Blocks.Get(karena.ID(blockID))
		if err != nil {
			return err
		}
		next := blk.Next
		if err := s.eraseBlockStatements(blockID); err != nil {
			return err
		}
		if err := s.Blocks.MarkDeleted(karena.ID(blockID)); err != nil {
			return err
		}
		blockID = next
	}
	return s.Regions.MarkDeleted(karena.ID(regionID))
}

func (s *Store) eraseBlockStatements(blockID BlockID) error {
	blk, err := s.Blocks.Get(karena.ID(blockID))
	if err != nil {
		return err
	}
	stmtID := blk.FirstStmt
	for stmtID != InvalidStatement {
		stmt, err := s.Statements.Get(karena.ID(stmtID))
		if err != nil {
			return err
		}
		next := stmt.Next
		for _, r := range stmt.Regions {
			if err := s.EraseRegion(r); err != nil {
				return err
			}
		}
		if err := s.eraseOperandsAndTombstone(stmtID); err != nil {
			return err
		}
		stmtID = next
	}
	return nil
}

// --- region/block linkage ---------------------------------------------

// AppendBlockToRegion appends blockID as region's new last block.
func (s *Store) AppendBlockToRegion(regionID RegionID, blockID BlockID) error {
	region, err := s.Regions.GetMut(karena.ID(regionID))
	if err != nil {
		return err
	}
	blk, err := s.Blocks.GetMut(karena.ID(blockID))
	if err != nil {
		return err
	}
	blk.Prev = region.LastBlock
	blk.Next = InvalidBlock
	if region.LastBlock == InvalidBlock {
		region.FirstBlock = blockID
	} else {
		prev, err := s.Blocks.GetMut(karena.ID(region.LastBlock))
		if err != nil {
			return err
		}
		prev.Next = blockID
	}
	region.LastBlock = blockID
	return nil
}

// RemoveBlockFromRegion unlinks blockID from its region's block list.
func (s *Store) RemoveBlockFromRegion(blockID BlockID) error {
	blk, err := s.Blocks.Get(karena.ID(blockID))
	if err != nil {
		return err
	}
	region, err := s.Regions.GetMut(karena.ID(blk.Region))
	if err != nil {
		return err
	}
	if blk.Prev == InvalidBlock {
		region.FirstBlock = blk.Next
	} else {
		p, err := s.Blocks.GetMut(karena.ID(blk.Prev))
		if err != nil {
			return err
		}
		p.Next = blk.Next
	}
	if blk.Next == InvalidBlock {
		region.LastBlock = blk.Prev
	} else {
		n, err := s.Blocks.GetMut(karena.ID(blk.Next))
		if err != nil {
			return err
		}
		n.Prev = blk.Prev
	}
	return nil
}

// --- use-list bookkeeping ----------------------------------------------

func (s *Store) addUse(valueID ValueID, stmt StatementID, operandIndex int) error {
	v, err := s.Values.GetMut(karena.ID(valueID))
	if err != nil {
		return err
	}
	v.Uses = append(v.Uses, Use{Stmt: stmt, OperandIndex: operandIndex})
	return nil
}

func (s *Store) removeUse(valueID ValueID, stmt StatementID, operandIndex int) error {
	v, err := s.Values.GetMut(karena.ID(valueID))
	if err != nil {
		return err
	}
	for i, u := range v.Uses {
		if u.Stmt == stmt && u.OperandIndex == operandIndex {
			v.Uses = append(v.Uses[:i], v.Uses[i+1:]...)
			return nil
		}
	}
	return nil
}

// ReplaceAllUsesWith rewrites every use of old to refer to newVal
// instead, moving each Use token from old's use list to newVal's (spec
// section 4.4, "SSAValue::replace_all_uses_with").
func (s *Store) ReplaceAllUsesWith(old, newVal ValueID) error {
	if old == newVal {
		return nil
	}
	oldV, err := s.Values.GetMut(karena.ID(old))
	if err != nil {
		return err
	}
	uses := oldV.Uses
	oldV.Uses = nil

	for _, u := range uses {
		stmt, err := s.Statements.GetMut(karena.ID(u.Stmt))
		if err != nil {
			return err
		}
		if u.OperandIndex < 0 || u.OperandIndex >= len(stmt.Operands) {
			return kerrors.ArityMismatch(len(stmt.Operands), u.OperandIndex+1)
		}
		stmt.Operands[u.OperandIndex] = newVal

		newV, err := s.Values.GetMut(karena.ID(newVal))
		if err != nil {
			return err
		}
		newV.Uses = append(newV.Uses, u)
	}
	return nil
}

// SetOperand rewrites stmtID's operand at index to point at newVal,
// moving the use-list entry accordingly. Used by callers that need to
// change a single operand in place (e.g. backedge bookkeeping when a
// call's callee operand changes) rather than a full RAUW.
func (s *Store) SetOperand(stmtID StatementID, index int, newVal ValueID) error {
	stmt, err := s.Statements.GetMut(karena.ID(stmtID))
	if err != nil {
		return err
	}
	if index < 0 || index >= len(stmt.Operands) {
		return kerrors.ArityMismatch(len(stmt.Operands), index+1)
	}
	old := stmt.Operands[index]
	if old == newVal {
		return nil
	}
	stmt.Operands[index] = newVal
	_ = s.removeUse(old, stmtID, index)
	return s.addUse(newVal, stmtID, index)
}
