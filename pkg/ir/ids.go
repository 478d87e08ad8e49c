// Package ir implements C5, the structural IR shared by every dialect:
// SSA values with use lists, intrusively-linked statements inside blocks,
// blocks inside regions, and the Definition capability contract a
// dialect's per-statement payload must satisfy (spec sections 3 and
// 4.4). Symbol types are not defined here; they live in internal/intern.
//
// Grounded on the teacher's internal/ast node hierarchy (pkg/ast.Node /
// Expression / Statement interfaces implemented by concrete structs,
// dispatched by type switch rather than a registry) adapted from a tree
// of owned nodes to an arena of by-ID back-references, per the rewrite
// in spec section 9 ("Cyclic graphs ... -> arenas with index tokens plus
// intrusive doubly-linked sibling pointers").
package ir

import (
	"fmt"

	"github.com/QuEraComputing/kirin/internal/karena"
)

// ValueID identifies an SSA value within one Store.
type ValueID karena.ID

// StatementID identifies a statement within one Store.
type StatementID karena.ID

// BlockID identifies a block within one Store.
type BlockID karena.ID

// RegionID identifies a region within one Store.
type RegionID karena.ID

// InvalidValue, InvalidStatement, InvalidBlock, InvalidRegion are the
// zero/unset sentinels for each ID type (never minted by a Store).
const (
	InvalidValue     = ValueID(karena.Invalid)
	InvalidStatement = StatementID(karena.Invalid)
	InvalidBlock     = BlockID(karena.Invalid)
	InvalidRegion    = RegionID(karena.Invalid)
)

func (id ValueID) String() string     { return fmt.Sprintf("%%%d", karena.ID(id)) }
func (id StatementID) String() string { return fmt.Sprintf("stmt%d", karena.ID(id)) }
func (id BlockID) String() string     { return fmt.Sprintf("^bb%d", karena.ID(id)) }
func (id RegionID) String() string    { return fmt.Sprintf("region%d", karena.ID(id)) }

// Type is the minimum interface a dialect's type attribute must satisfy:
// equality and a textual form. Clone is implicit (Go value/interface
// copy); default is the implicit zero value of whatever concrete type
// backs this interface. The optional TypeLattice extension lives in
// pkg/dialect, which layers lattice operations on top of this contract
// without ir needing to know about them.
type Type interface {
	fmt.Stringer
	Equal(other Type) bool
}
