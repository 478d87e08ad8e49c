// Package signature implements the dispatch algebra from spec section
// 4.5: comparing a call's argument/return types against a candidate
// specialization's declared signature, and reducing a set of applicable
// candidates to Unique/Ambiguous/NoMatch.
package signature

import "github.com/QuEraComputing/kirin/pkg/dialect"

// Order is the partial order cmp_candidate returns between two
// applicable candidates.
type Order int

const (
	Incomparable Order = iota
	Less
	Equal
	More
)

// Signature is an ordered parameter-type list plus a return type, over
// some type-attribute representation C.
type Signature[C any] struct {
	Params []C
	Return C
}

// Env carries whatever bindings Applicable solved while matching a call
// against a candidate (e.g. type-variable substitutions); Semantics
// implementations that need none may use any concrete placeholder type
// for C itself.
type Env[C any] struct {
	Bindings map[string]C
}

// Semantics is SignatureSemantics<T,C> from the spec: it decides whether
// a candidate signature can serve a call signature, and orders two
// applicable candidates.
type Semantics[C any] interface {
	Applicable(call, candidate Signature[C]) (Env[C], bool)
	CmpCandidate(a Signature[C], aEnv Env[C], b Signature[C], bEnv Env[C]) Order
}

// ExactSemantics requires component-wise type equality; it never
// reports More or Less between two applicable candidates (so two
// applicable exact candidates are always Ambiguous, never resolved by
// specificity).
type ExactSemantics[C comparable] struct{}

func (ExactSemantics[C]) Applicable(call, candidate Signature[C]) (Env[C], bool) {
	if len(call.Params) != len(candidate.Params) {
		return Env[C]{}, false
	}
	for i := range call.Params {
		if call.Params[i] != candidate.Params[i] {
			return Env[C]{}, false
		}
	}
	if call.Return != candidate.Return {
		return Env[C]{}, false
	}
	return Env[C]{}, true
}

func (ExactSemantics[C]) CmpCandidate(Signature[C], Env[C], Signature[C], Env[C]) Order {
	return Incomparable
}

// LatticeSemantics requires T: TypeLattice (spec section 4.5):
// applicable iff every call parameter is IsSubseteq the candidate's
// parameter (the argument's type must fit what the candidate accepts)
// and the candidate's return is IsSubseteq the call's return (the
// specialization's concrete return must satisfy what the caller's
// context expects); CmpCandidate orders two applicable candidates by
// pointwise IsSubseteq, reporting More when a is strictly more specific
// (pointwise ⊑ b) and Less when b is.
type LatticeSemantics[C any] struct {
	Lattice func(C) dialect.Lattice[C]
}

func (s LatticeSemantics[C]) Applicable(call, candidate Signature[C]) (Env[C], bool) {
	if len(call.Params) != len(candidate.Params) {
		return Env[C]{}, false
	}
	for i := range call.Params {
		if !s.Lattice(call.Params[i]).IsSubseteq(candidate.Params[i]) {
			return Env[C]{}, false
		}
	}
	if !s.Lattice(candidate.Return).IsSubseteq(call.Return) {
		return Env[C]{}, false
	}
	return Env[C]{}, true
}

func (s LatticeSemantics[C]) CmpCandidate(a Signature[C], _ Env[C], b Signature[C], _ Env[C]) Order {
	aLeB := pointwiseSubseteq(s, a, b)
	bLeA := pointwiseSubseteq(s, b, a)
	switch {
	case aLeB && bLeA:
		return Equal
	case aLeB:
		return More
	case bLeA:
		return Less
	default:
		return Incomparable
	}
}

func pointwiseSubseteq[C any](s LatticeSemantics[C], a, b Signature[C]) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !s.Lattice(a.Params[i]).IsSubseteq(b.Params[i]) {
			return false
		}
	}
	return s.Lattice(a.Return).IsSubseteq(b.Return)
}
