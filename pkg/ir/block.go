package ir

// Block is an ordered sequence of statements plus its ordered argument
// list (spec section 3, "Block"). A well-formed block ends with exactly
// one terminator statement. Store's insert operations reject a statement
// placed after a terminator; a block with no terminator is reported only
// by Validate.
type Block struct {
	Region RegionID

	// Intrusive doubly-linked list within Region.
	Prev, Next BlockID

	Args []ValueID

	// Intrusive doubly-linked list of statements, head/tail.
	FirstStmt, LastStmt StatementID
}
