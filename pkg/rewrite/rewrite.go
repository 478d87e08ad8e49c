// Package rewrite provides the three rewrite primitives required by
// spec section 4.13 (replace_statement, erase_statement,
// remap_ids_after_compaction), each wired so that a call statement's
// backedge registration on its callee is kept consistent atomically
// with the structural edit.
package rewrite

import (
	"github.com/QuEraComputing/kirin/pkg/function"
	"github.com/QuEraComputing/kirin/pkg/ir"
)

// CallBackedge is implemented by a dialect's call-statement payload so
// that rewrite can find and update the callee's backedge set without
// needing to know the concrete dialect type.
type CallBackedge interface {
	// Callee returns the specialization this call statement currently
	// resolves to, or nil if the call is unresolved.
	Callee() *function.SpecializedEntry[any]
}

// ReplaceStatement swaps old for new in store (see Store.ReplaceStatement)
// and, if old's payload is a CallBackedge with a resolved callee,
// removes old's backedge and registers new's callee (if new is also a
// CallBackedge) — keeping invalidation bookkeeping atomic with the
// structural edit (spec section 4.13).
func ReplaceStatement(store *ir.Store, old, newID ir.StatementID) error {
	oldStmt, err := store.Statement(old)
	if err != nil {
		return err
	}
	if err := store.ReplaceStatement(old, newID); err != nil {
		return err
	}
	if cb, ok := oldStmt.Def.(CallBackedge); ok {
		if callee := cb.Callee(); callee != nil {
			callee.RemoveBackedge(old)
		}
	}
	newStmt, err := store.Statement(newID)
	if err != nil {
		return err
	}
	if cb, ok := newStmt.Def.(CallBackedge); ok {
		if callee := cb.Callee(); callee != nil {
			callee.AddBackedge(function.CallSite{Caller: newID})
		}
	}
	return nil
}

// EraseStatement erases id (see Store.EraseStatement) and, if its
// payload is a resolved CallBackedge, removes its backedge from the
// callee first.
func EraseStatement(store *ir.Store, id ir.StatementID) error {
	stmt, err := store.Statement(id)
	if err != nil {
		return err
	}
	if cb, ok := stmt.Def.(CallBackedge); ok {
		if callee := cb.Callee(); callee != nil {
			callee.RemoveBackedge(id)
		}
	}
	return store.EraseStatement(id)
}

// RemapIDsAfterCompaction rewrites every backedge's caller reference
// through idMap, matching the arena's Compact result (spec section
// 4.13). Callers pass the set of specializations whose backedges might
// reference compacted statement ids.
func RemapIDsAfterCompaction(entries []*function.SpecializedEntry[any], idMap map[ir.StatementID]ir.StatementID) {
	for _, e := range entries {
		remapped := e.Backedges[:0]
		for _, b := range e.Backedges {
			if newCaller, ok := idMap[b.Caller]; ok {
				b.Caller = newCaller
				remapped = append(remapped, b)
			}
			// A caller id absent from idMap was tombstoned by the
			// compaction itself; its backedge is dropped along with it.
		}
		e.Backedges = remapped
	}
}
