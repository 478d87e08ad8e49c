// Package dialect layers the generic abstraction contracts (lattice
// algebra, interpretable dispatch, the continuation protocol, and the
// interpreter read/write contract) one level above the structural IR in
// pkg/ir. It imports pkg/ir; pkg/ir never imports dialect, which is
// what keeps the dialect<->ir relationship acyclic (see DESIGN.md).
package dialect

// Lattice is satisfied by any type supporting the join/meet/is_subseteq
// algebra from spec section 4.3. Implementations must satisfy the
// lattice laws (associativity, commutativity, idempotence of Join and
// Meet; IsSubseteq consistent with Meet) — verified by the property
// harness in property_test.go, not enforced by the type system.
type Lattice[T any] interface {
	Join(other T) T
	Meet(other T) T
	IsSubseteq(other T) bool
}

// TypeLattice adds the optional Top/Bottom lattice operations from spec
// section 4.3 to Lattice. It does not embed the minimal type-attribute
// interface, which is ir.Type.
type TypeLattice[T any] interface {
	Lattice[T]
	Top() T
	Bottom() T
}

// AbstractValue extends Lattice with the widen/narrow operators
// required by the abstract interpreter (spec section 4.12). Widen must
// satisfy self ⊑ Widen(next) and next ⊑ Widen(next), and the ascending
// chain x0, Widen(x0,x1), Widen(·,x2), … must stabilize in finite
// steps. Every implementation supplies its own Narrow (there is no
// default; returning self unchanged is valid for a domain with no useful
// narrowing), and it must satisfy self ⊓ next ⊑ Narrow(next) ⊑ self.
type AbstractValue[T any] interface {
	Lattice[T]
	Widen(next T) T
	Narrow(next T) T
}
