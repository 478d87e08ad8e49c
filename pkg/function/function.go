// Package function implements the function refinement hierarchy from
// spec section 4.6: a bare Function name resolves to zero or more
// per-stage StagedFunction entries, each of which accumulates
// SpecializedFunction bodies, plus the backedge bookkeeping that drives
// invalidation-triggered recompilation.
package function

import (
	"github.com/QuEraComputing/kirin/internal/kerrors"
	"github.com/QuEraComputing/kirin/internal/intern"
	"github.com/QuEraComputing/kirin/pkg/ir"
	"github.com/QuEraComputing/kirin/pkg/signature"
)

// StagedID and SpecializationID are opaque handles minted by a
// Function; they remain valid (addressable) even after the entry they
// name has been invalidated, per spec section 4.6: "invalidation never
// erases entries."
type StagedID uint32
type SpecializationID uint32

// CallSite identifies one call statement that resolved to a particular
// specialization, for backedge bookkeeping.
type CallSite struct {
	Caller   ir.StatementID
	CallerFn any // the calling *Function[C]; CallSite itself is not generic
}

// StagedEntry is a function's staged declaration for one compile stage:
// the signature the dialect's dispatch layer matches calls against.
type StagedEntry[C any] struct {
	ID          StagedID
	Signature   signature.Signature[C]
	Invalidated bool
	// Backedges is the set of call sites that resolved against this
	// staged entry's own signature match (distinct from the backedges
	// recorded per specialization below).
	Backedges []CallSite
}

// SpecializedEntry is one concrete implementation body for a staged
// entry's signature, registered under its own (possibly narrower)
// signature per spec section 4.5.
type SpecializedEntry[C any] struct {
	ID          SpecializationID
	Staged      StagedID
	Signature   signature.Signature[C]
	Body        ir.RegionID
	Invalidated bool
	Backedges   []CallSite
}

// Function is the top-level named entity stage.Info.Function hands out; it owns
// every staged and specialized entry registered against its name,
// across every compile stage.
type Function[C any] struct {
	Name   intern.GlobalSymbol
	staged []*StagedEntry[C]
	spec   []*SpecializedEntry[C]

	nextStagedID StagedID
	nextSpecID   SpecializationID
}

// New creates an empty Function for name.
func New[C any](name intern.GlobalSymbol) *Function[C] {
	return &Function[C]{Name: name}
}

// sameConceptualSignature is the "not multiple dispatch" check from
// spec section 4.6: two staged entries sharing a name must describe the
// same abstract operation. Lacking a semantic equivalence oracle, this
// module treats "same conceptual signature" as "same arity" — the
// caller's dialect is responsible for any richer equivalence check
// before calling StagedFunction.
func sameConceptualSignature[C any](a, b signature.Signature[C]) bool {
	return len(a.Params) == len(b.Params)
}

// StagedFunction attaches a staged entry under sig for this function. A
// second attempt with a conflicting (non-equal, but conceptually
// compatible) signature returns StagedConflict carrying the prior
// entry's signature and the new one, so the caller may retry via
// RedefineStagedFunction.
func (f *Function[C]) StagedFunction(sig signature.Signature[C], equal func(a, b signature.Signature[C]) bool) (*StagedEntry[C], error) {
	for _, existing := range f.staged {
		if existing.Invalidated {
			continue
		}
		if equal(existing.Signature, sig) {
			return existing, nil
		}
		if !sameConceptualSignature[C](existing.Signature, sig) {
			return nil, kerrors.StagedConflict(existing.Signature, sig)
		}
		return nil, kerrors.StagedConflict(existing.Signature, sig)
	}
	f.nextStagedID++
	entry := &StagedEntry[C]{ID: f.nextStagedID, Signature: sig}
	f.staged = append(f.staged, entry)
	return entry, nil
}

// RedefineStagedFunction marks old invalidated and attaches a new
// staged entry under sig, per spec section 4.6.
func (f *Function[C]) RedefineStagedFunction(old *StagedEntry[C], sig signature.Signature[C]) *StagedEntry[C] {
	old.Invalidated = true
	f.nextStagedID++
	entry := &StagedEntry[C]{ID: f.nextStagedID, Signature: sig, Backedges: old.Backedges}
	old.Backedges = nil
	f.staged = append(f.staged, entry)
	return entry
}

// Specialize appends a specialization body under sig for staged. A
// duplicate (non-invalidated) signature under the same staged entry
// returns SpecializeConflict.
func (f *Function[C]) Specialize(staged *StagedEntry[C], sig signature.Signature[C], body ir.RegionID, equal func(a, b signature.Signature[C]) bool) (*SpecializedEntry[C], error) {
	for _, existing := range f.spec {
		if existing.Staged != staged.ID || existing.Invalidated {
			continue
		}
		if equal(existing.Signature, sig) {
			return nil, kerrors.SpecializeConflict(existing.Signature, sig)
		}
	}
	f.nextSpecID++
	entry := &SpecializedEntry[C]{ID: f.nextSpecID, Staged: staged.ID, Signature: sig, Body: body}
	f.spec = append(f.spec, entry)
	return entry, nil
}

// RedefineSpecialization invalidates old and appends a new
// specialization under sig, carrying old's backedges forward so that
// the prior callers are still enumerable as needing recompilation.
func (f *Function[C]) RedefineSpecialization(old *SpecializedEntry[C], sig signature.Signature[C], body ir.RegionID) *SpecializedEntry[C] {
	old.Invalidated = true
	f.nextSpecID++
	entry := &SpecializedEntry[C]{ID: f.nextSpecID, Staged: old.Staged, Signature: sig, Body: body, Backedges: old.Backedges}
	old.Backedges = nil
	f.spec = append(f.spec, entry)
	return entry
}

// Specializations returns every specialization (live or invalidated)
// registered under staged, for Resolve to filter and reduce.
func (f *Function[C]) Specializations(staged *StagedEntry[C]) []*SpecializedEntry[C] {
	var out []*SpecializedEntry[C]
	for _, s := range f.spec {
		if s.Staged == staged.ID {
			out = append(out, s)
		}
	}
	return out
}

// AddBackedge records that call resolved to entry, for invalidation
// bookkeeping (spec section 4.6).
func (e *SpecializedEntry[C]) AddBackedge(site CallSite) { e.Backedges = append(e.Backedges, site) }

// RemoveBackedge removes the first backedge matching caller, mirroring
// erasure/operand-change bookkeeping (spec section 4.6: "removed on
// erasure or operand change").
func (e *SpecializedEntry[C]) RemoveBackedge(caller ir.StatementID) {
	for i, b := range e.Backedges {
		if b.Caller == caller {
			e.Backedges = append(e.Backedges[:i], e.Backedges[i+1:]...)
			return
		}
	}
}
