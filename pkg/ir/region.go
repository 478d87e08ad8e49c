package ir

// Region is an ordered list of blocks owned either by a statement (a
// nested region, e.g. a loop body) or by nothing (a top-level function
// body). The first block is the entry block (spec section 3, "Region").
type Region struct {
	Owner StatementID // InvalidStatement for a top-level function body

	// Intrusive doubly-linked list of blocks, head/tail.
	FirstBlock, LastBlock BlockID
}
