package ir

// Definition is the capability contract a dialect's per-statement-kind
// payload must implement (spec section 4.3, "a dialect L is a
// value-typed sum whose variants are statement kinds"). A Store asks a
// Definition for its structural shape exactly once, at construction
// time (NewStatement); after that the generic Statement fields
// (Operands, Results, Successors, Regions) are the source of truth, so
// that generic rewrite code never has to know which concrete dialect it
// is touching. The four boolean predicates, by contrast, are queried
// live on every check, since they are cheap and must never desync from
// the payload.
type Definition interface {
	// Operands returns, in order, the SSA values this statement kind
	// consumes.
	Operands() []ValueID
	// ResultTypes returns, in order, the type of each value this
	// statement kind produces.
	ResultTypes() []Type
	// Successors returns, in order, the blocks this statement kind may
	// transfer control to (only meaningful for terminators).
	Successors() []BlockID
	// NumRegions returns how many regions this statement kind owns.
	NumRegions() int

	IsPure() bool
	IsSpeculatable() bool
	IsTerminator() bool
	IsConstant() bool
}

// Statement is one instruction: its structural shape (operands,
// results, successors, owned regions) plus its dialect-specific
// payload (spec section 3, "Statement").
type Statement struct {
	Block BlockID // InvalidBlock if detached

	// Intrusive doubly-linked list within Block.
	Prev, Next StatementID

	Operands   []ValueID
	Results    []ValueID
	Successors []BlockID
	Regions    []RegionID

	Def Definition
}

// IsDetached reports whether the statement has not been inserted into
// any block.
func (s *Statement) IsDetached() bool { return s.Block == InvalidBlock }
