// Package absint implements the abstract interpreter from spec section
// 4.12: a worklist fixpoint over per-block entry abstract stores, with
// configurable widening strategies, an optional narrowing phase, and a
// summary cache for calls keyed by (callee, stage, abstract arguments).
// Interpreter handles Continue, Jump, Fork and Return continuations only:
// a Call continuation is reported as BadState, and Interpreter does not
// consult SummaryCache.
package absint

import (
	"github.com/QuEraComputing/kirin/internal/kerrors"
	"github.com/QuEraComputing/kirin/pkg/dialect"
	"github.com/QuEraComputing/kirin/pkg/interpreter"
	"github.com/QuEraComputing/kirin/pkg/ir"
	"github.com/QuEraComputing/kirin/pkg/stage"
)

// WideningStrategy decides, for a given block being (re)visited, whether
// the merge at that join point should widen rather than plain-join
// (spec section 4.12).
type WideningStrategy interface {
	ShouldWiden(block ir.BlockID, revisitCount int) bool
}

// AllJoins widens at every join (eagerly terminating).
type AllJoins struct{}

func (AllJoins) ShouldWiden(ir.BlockID, int) bool { return true }

// LoopHeaders widens only at blocks identified as loop headers by
// IsLoopHeader, which callers may supply via LoopHeadersByBackedge or
// their own structural pre-pass (spec section 9, open question:
// "whether widening-point identification is computed by the core or
// supplied by a caller is left to the implementer").
type LoopHeaders struct {
	IsLoopHeader func(ir.BlockID) bool
}

func (l LoopHeaders) ShouldWiden(block ir.BlockID, _ int) bool { return l.IsLoopHeader(block) }

// DelayedN widens only after K ascending revisits of a given block.
type DelayedN struct{ K int }

func (d DelayedN) ShouldWiden(_ ir.BlockID, revisitCount int) bool { return revisitCount > d.K }

// blockEntry is one block's abstract entry store.
type blockEntry[V any] struct {
	values     map[ir.ValueID]V
	revisits   int
	inWorklist bool
}

// Interpreter is the abstract interpreter (spec section 4.12). V must
// satisfy dialect.AbstractValue[V]; this is checked dynamically by type
// asserting each value through withValue rather than as a Go generic
// constraint, since Go has no way to call a method on a bare type
// parameter without either a constraint or a sample value to dispatch
// through, and the values flowing through here are exactly the ones
// produced by dialect Interpret calls, not ones the caller supplies
// up front.
type Interpreter[V any] struct {
	resolve interpreter.StoreResolver

	entries map[ir.BlockID]*blockEntry[V]
	order   []ir.BlockID // FIFO worklist with side-set membership in blockEntry.inWorklist

	widening         WideningStrategy
	maxIterations    int
	narrowIterations int
}

// New creates an abstract interpreter resolving stage stores through
// resolve (typically pipeline.StoreFor). maxIterations bounds the
// ascending phase (spec section 4.12: "a configurable iteration cap...
// exceeding it is DidNotConverge, not a panic"); narrowIterations is the
// number of descending-phase sweeps to run afterward (0 disables
// narrowing).
func New[V any](resolve interpreter.StoreResolver, widening WideningStrategy, maxIterations, narrowIterations int) *Interpreter[V] {
	return &Interpreter[V]{
		resolve:          resolve,
		entries:          make(map[ir.BlockID]*blockEntry[V]),
		widening:         widening,
		maxIterations:    maxIterations,
		narrowIterations: narrowIterations,
	}
}

func (ai *Interpreter[V]) entryFor(block ir.BlockID) *blockEntry[V] {
	e, ok := ai.entries[block]
	if !ok {
		e = &blockEntry[V]{values: make(map[ir.ValueID]V)}
		ai.entries[block] = e
	}
	return e
}

func (ai *Interpreter[V]) enqueue(block ir.BlockID) {
	e := ai.entryFor(block)
	if e.inWorklist {
		return
	}
	e.inWorklist = true
	ai.order = append(ai.order, block)
}

func (ai *Interpreter[V]) pop() (ir.BlockID, bool) {
	if len(ai.order) == 0 {
		return ir.InvalidBlock, false
	}
	block := ai.order[0]
	ai.order = ai.order[1:]
	ai.entries[block].inWorklist = false
	return block, true
}

// Seed enqueues entryBlock with initial abstract values bound to its
// block arguments (spec section 4.12 step 1).
func (ai *Interpreter[V]) Seed(stageID stage.ID, entryBlock ir.BlockID, args []V) error {
	store, ok := ai.resolve(stageID)
	if !ok {
		return kerrors.StageMismatch(stageID, stageID)
	}
	blk, err := store.Block(entryBlock)
	if err != nil {
		return err
	}
	if len(blk.Args) != len(args) {
		return kerrors.ArityMismatch(len(blk.Args), len(args))
	}
	e := ai.entryFor(entryBlock)
	for i, a := range args {
		e.values[blk.Args[i]] = a
	}
	ai.enqueue(entryBlock)
	return nil
}

// Result is the converged abstract store; on DidNotConverge, Run returns
// an empty Result alongside the error.
type Result[V any] struct {
	// BlockEntries is the fixpoint's per-block entry abstract store,
	// keyed by SSA value.
	BlockEntries map[ir.BlockID]map[ir.ValueID]V
}

// Run executes the ascending phase to a fixpoint (or DidNotConverge),
// followed by narrowIterations rounds of the descending phase, over the
// single-stage CFG reachable from the seeded entry blocks (spec section
// 4.12).
func (ai *Interpreter[V]) Run(stageID stage.ID) (Result[V], error) {
	if err := ai.ascend(stageID); err != nil {
		return Result[V]{}, err
	}
	ai.narrow(stageID)
	return ai.snapshot(), nil
}

func (ai *Interpreter[V]) snapshot() Result[V] {
	out := make(map[ir.BlockID]map[ir.ValueID]V, len(ai.entries))
	for block, e := range ai.entries {
		cp := make(map[ir.ValueID]V, len(e.values))
		for k, v := range e.values {
			cp[k] = v
		}
		out[block] = cp
	}
	return Result[V]{BlockEntries: out}
}

func (ai *Interpreter[V]) ascend(stageID stage.ID) error {
	iterations := 0
	for {
		block, ok := ai.pop()
		if !ok {
			return nil
		}
		iterations++
		if ai.maxIterations > 0 && iterations > ai.maxIterations {
			return kerrors.DidNotConverge(ai.maxIterations)
		}
		if err := ai.visit(stageID, block, false); err != nil {
			return err
		}
	}
}

func (ai *Interpreter[V]) narrow(stageID stage.ID) {
	for i := 0; i < ai.narrowIterations; i++ {
		for block := range ai.entries {
			ai.enqueue(block)
		}
		for {
			block, ok := ai.pop()
			if !ok {
				break
			}
			_ = ai.visit(stageID, block, true)
		}
	}
}

// visit runs Interpretable::interpret statement-by-statement from
// block's entry state, merging results at Jump/Fork targets (spec
// section 4.12 step 2).
func (ai *Interpreter[V]) visit(stageID stage.ID, block ir.BlockID, narrowing bool) error {
	store, ok := ai.resolve(stageID)
	if !ok {
		return kerrors.StageMismatch(stageID, stageID)
	}
	entry := ai.entryFor(block)
	working := &workingInterpreter[V]{values: cloneMap(entry.values)}

	blk, err := store.Block(block)
	if err != nil {
		return err
	}
	cursor := blk.FirstStmt
	for cursor != ir.InvalidStatement {
		stmt, err := store.Statement(cursor)
		if err != nil {
			return err
		}
		interpretable, ok := stmt.Def.(dialect.Interpretable[V])
		if !ok {
			return kerrors.BadState("statement definition does not implement Interpretable")
		}
		cont, err := interpretable.Interpret(working, stmt.Results)
		if err != nil {
			return err
		}
		switch c := cont.(type) {
		case dialect.Continue:
			cursor = stmt.Next
			continue
		case dialect.Jump:
			if err := ai.mergeTarget(store, c.Target, c.Args, working, narrowing); err != nil {
				return err
			}
			return nil
		case dialect.Fork:
			for _, target := range c.Targets {
				if err := ai.mergeTarget(store, target.Target, target.Args, working, narrowing); err != nil {
					return err
				}
			}
			return nil
		case dialect.Return[V]:
			// Return is a terminal state for this path; the returned
			// value is not recorded anywhere by Run.
			return nil
		default:
			return kerrors.BadState("unsupported continuation in abstract interpretation")
		}
	}
	return nil
}

// mergeTarget joins (or, during the descending phase, narrows) the
// source block's working values, plus the incoming values bound to
// target's block arguments, against target's existing entry store, so
// a successor can read values its predecessors defined. A target seen
// for the first time is always enqueued. args are SSA values in the SOURCE block, bound
// positionally to target's own parameter ids (spec section 3: block
// arguments are the SSA equivalent of phi nodes) — mirroring
// interpreter.Stack.advanceJump's concrete-side handling of the same
// Jump continuation.
func (ai *Interpreter[V]) mergeTarget(store *ir.Store, target ir.BlockID, args []ir.ValueID, working *workingInterpreter[V], narrowing bool) error {
	blk, err := store.Block(target)
	if err != nil {
		return err
	}
	if len(blk.Args) != len(args) {
		return kerrors.ArityMismatch(len(blk.Args), len(args))
	}

	_, seen := ai.entries[target]
	e := ai.entryFor(target)
	merged := cloneMap(e.values)
	for k, v := range working.values {
		merged[k] = v
	}
	for i, argVal := range args {
		v, ok := working.values[argVal]
		if !ok {
			return kerrors.Unbound(argVal)
		}
		merged[blk.Args[i]] = v
	}

	changed := !seen
	for k, v := range merged {
		prior, ok := e.values[k]
		if !ok {
			changed = true
			continue
		}
		if narrowing {
			nv := ai.withValue(prior).Narrow(v)
			if !ai.withValue(nv).IsSubseteq(prior) || !ai.withValue(prior).IsSubseteq(nv) {
				changed = true
			}
			merged[k] = nv
		} else if !ai.withValue(v).IsSubseteq(prior) {
			joined := ai.withValue(prior).Join(v)
			if ai.widening.ShouldWiden(target, e.revisits) {
				joined = ai.withValue(prior).Widen(joined)
			}
			if !ai.withValue(joined).IsSubseteq(prior) || !ai.withValue(prior).IsSubseteq(joined) {
				changed = true
			}
			merged[k] = joined
		} else {
			merged[k] = prior
		}
	}

	if changed {
		e.revisits++
		e.values = merged
		ai.enqueue(target)
	}
	return nil
}

func (ai *Interpreter[V]) withValue(v V) dialect.AbstractValue[V] {
	return any(v).(dialect.AbstractValue[V])
}

func cloneMap[V any](m map[ir.ValueID]V) map[ir.ValueID]V {
	out := make(map[ir.ValueID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// workingInterpreter implements dialect.Interpreter[V] over a plain map,
// standing in for a Frame during one block's statement walk.
type workingInterpreter[V any] struct {
	values map[ir.ValueID]V
}

func (w *workingInterpreter[V]) ReadRef(ssa ir.ValueID) (V, error) {
	v, ok := w.values[ssa]
	if !ok {
		var zero V
		return zero, kerrors.Unbound(ssa)
	}
	return v, nil
}

func (w *workingInterpreter[V]) Write(result ir.ValueID, v V) error {
	w.values[result] = v
	return nil
}

var _ dialect.Interpreter[any] = (*workingInterpreter[any])(nil)
