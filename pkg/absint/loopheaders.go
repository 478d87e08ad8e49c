package absint

import "github.com/QuEraComputing/kirin/pkg/ir"

// LoopHeadersByBackedge is a structural pre-pass identifying candidate
// widening points for LoopHeaders: a block is a loop header if some
// block reachable from it (via Successors()) jumps back to it. This is
// the caller-supplied "structural pre-pass" the spec leaves
// unspecified (section 9): a simple reachability-based backedge
// detector, not a full dominator-tree loop analysis — sufficient for
// reducible CFGs with natural loops, which is what every dialect built
// on top of kirin's structured-region model produces.
func LoopHeadersByBackedge(store *ir.Store, entry ir.BlockID) (map[ir.BlockID]bool, error) {
	headers := make(map[ir.BlockID]bool)
	onStack := make(map[ir.BlockID]bool)
	visited := make(map[ir.BlockID]bool)

	var walk func(block ir.BlockID) error
	walk = func(block ir.BlockID) error {
		visited[block] = true
		onStack[block] = true
		defer func() { onStack[block] = false }()

		successors, err := blockSuccessors(store, block)
		if err != nil {
			return err
		}
		for _, succ := range successors {
			if onStack[succ] {
				headers[succ] = true
				continue
			}
			if !visited[succ] {
				if err := walk(succ); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(entry); err != nil {
		return nil, err
	}
	return headers, nil
}

// blockSuccessors collects the successor blocks named by block's
// terminator statement.
func blockSuccessors(store *ir.Store, block ir.BlockID) ([]ir.BlockID, error) {
	blk, err := store.Block(block)
	if err != nil {
		return nil, err
	}
	if blk.LastStmt == ir.InvalidStatement {
		return nil, nil
	}
	last, err := store.Statement(blk.LastStmt)
	if err != nil {
		return nil, err
	}
	return last.Successors, nil
}
