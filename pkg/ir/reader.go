package ir

import (
	"github.com/QuEraComputing/kirin/internal/karena"
	"github.com/QuEraComputing/kirin/internal/kerrors"
)

// The accessors below return copies of the arena-backed structs (not
// pointers into the arena) so that callers cannot accidentally bypass
// Store's mutation methods and desync the intrusive lists or use lists.

func (s *Store) Value(id ValueID) (Value, error)         { return s.Values.Get(karena.ID(id)) }
func (s *Store) Statement(id StatementID) (Statement, error) {
	return s.Statements.Get(karena.ID(id))
}
func (s *Store) Block(id BlockID) (Block, error)   { return s.Blocks.Get(karena.ID(id)) }
func (s *Store) Region(id RegionID) (Region, error) { return s.Regions.Get(karena.ID(id)) }

func (s *Store) IsLiveStatement(id StatementID) bool { return s.Statements.IsLive(karena.ID(id)) }
func (s *Store) IsLiveBlock(id BlockID) bool         { return s.Blocks.IsLive(karena.ID(id)) }
func (s *Store) IsLiveRegion(id RegionID) bool       { return s.Regions.IsLive(karena.ID(id)) }
func (s *Store) IsLiveValue(id ValueID) bool         { return s.Values.IsLive(karena.ID(id)) }

// BlockStatements visits each statement in block order from block's entry.
func (s *Store) BlockStatements(blockID BlockID, fn func(StatementID, Statement) error) error {
	blk, err := s.Blocks.Get(karena.ID(blockID))
	if err != nil {
		return err
	}
	id := blk.FirstStmt
	for id != InvalidStatement {
		stmt, err := s.Statements.Get(karena.ID(id))
		if err != nil {
			return err
		}
		if err := fn(id, stmt); err != nil {
			return err
		}
		id = stmt.Next
	}
	return nil
}

// RegionBlocks visits blockID in region order from region's entry.
func (s *Store) RegionBlocks(regionID RegionID, fn func(BlockID, Block) error) error {
	region, err := s.Regions.Get(karena.ID(regionID))
	if err != nil {
		return err
	}
	id := region.FirstBlock
	for id != InvalidBlock {
		blk, err := s.Blocks.Get(karena.ID(id))
		if err != nil {
			return err
		}
		if err := fn(id, blk); err != nil {
			return err
		}
		id = blk.Next
	}
	return nil
}

// Validate walks every live region reachable from roots and checks the
// structural invariants from spec section 8 ("Invariants under random
// construction"): every non-empty block ends in exactly one terminator
// which is its last statement, every terminator's successors lie in the
// same region as the block it terminates, and every operand of every
// statement has a matching (statement, operand index) entry in its
// value's use list. Use lists are not checked in the other direction: a
// use-list entry naming a statement that no longer has that operand is
// not reported.
func (s *Store) Validate(roots []RegionID) error {
	seen := map[RegionID]bool{}
	var walkRegion func(RegionID) error
	walkRegion = func(regionID RegionID) error {
		if seen[regionID] {
			return nil
		}
		seen[regionID] = true
		return s.RegionBlocks(regionID, func(blockID BlockID, blk Block) error {
			return s.validateBlock(blockID, blk, walkRegion)
		})
	}
	for _, r := range roots {
		if err := walkRegion(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) validateBlock(blockID BlockID, blk Block, walkRegion func(RegionID) error) error {
	sawTerminator := false
	if err := s.BlockStatements(blockID, func(stmtID StatementID, stmt Statement) error {
		if sawTerminator {
			return kerrors.InvalidTerminator("a terminator was not the block's last statement")
		}
		if stmt.Def.IsTerminator() {
			sawTerminator = true
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
		for i, opID := range stmt.Operands {
			v, err := s.Values.Get(karena.ID(opID))
			if err != nil {
				return err
			}
			found := false
			for _, u := range v.Uses {
				if u.Stmt == stmtID && u.OperandIndex == i {
					found = true
					break
				}
			}
			if !found {
				return kerrors.BadState("operand use-list entry missing")
			}
		}
		for _, r := range stmt.Regions {
			if err := walkRegion(r); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if blk.FirstStmt != InvalidStatement && !sawTerminator {
		return kerrors.InvalidTerminator("block does not end in a terminator")
	}
	return nil
}
