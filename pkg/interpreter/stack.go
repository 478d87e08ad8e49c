package interpreter

import (
	"github.com/QuEraComputing/kirin/internal/kerrors"
	"github.com/QuEraComputing/kirin/pkg/dialect"
	"github.com/QuEraComputing/kirin/pkg/ir"
	"github.com/QuEraComputing/kirin/pkg/pipeline"
	"github.com/QuEraComputing/kirin/pkg/stage"
)

// StoreResolver recovers a stage's structural store by id, erasing the
// stage's dialect/type-attribute parameters — see pipeline.StoreFor.
type StoreResolver func(stage.ID) (*ir.Store, bool)

// Stack is the concrete stack interpreter from spec section 4.11: a
// frame stack, optional fuel counter, optional max depth, and a
// breakpoint set. G is the optional global runtime state type
// (struct{} for domains with none); it starts as G's zero value and is
// reached through Global rather than threaded through every constructor.
type Stack[V any, G any] struct {
	resolve StoreResolver

	frames []*Frame[V]

	fuel        *int
	maxDepth    *int
	breakpoints map[ir.StatementID]bool

	global G
}

// New creates a stack interpreter resolving stage stores through
// resolve (typically pipeline.StoreFor).
func New[V any, G any](resolve StoreResolver) *Stack[V, G] {
	return &Stack[V, G]{resolve: resolve, breakpoints: make(map[ir.StatementID]bool)}
}

// FromPipeline is a convenience constructor wiring resolve to p.StoreFor.
func FromPipeline[V any, G any](p *pipeline.Pipeline) *Stack[V, G] {
	return New[V, G](p.StoreFor)
}

// WithFuel sets a per-session step budget; 0 fuel left on step causes
// Exhausted.
func (s *Stack[V, G]) WithFuel(n int) *Stack[V, G] { s.fuel = &n; return s }

// WithMaxDepth sets the maximum frame-stack depth checked before Call
// pushes a new frame.
func (s *Stack[V, G]) WithMaxDepth(n int) *Stack[V, G] { s.maxDepth = &n; return s }

// SetBreakpoint marks id as a breakpoint for RunUntilBreak.
func (s *Stack[V, G]) SetBreakpoint(id ir.StatementID) { s.breakpoints[id] = true }

// Global returns the attached global runtime state.
func (s *Stack[V, G]) Global() *G { return &s.global }

// Depth returns the current frame-stack depth.
func (s *Stack[V, G]) Depth() int { return len(s.frames) }

func (s *Stack[V, G]) current() (*Frame[V], error) {
	if len(s.frames) == 0 {
		return nil, kerrors.BadState("no active frame")
	}
	return s.frames[len(s.frames)-1], nil
}

// --- dialect.Interpreter[V] -------------------------------------------

// ReadRef implements dialect.Interpreter[V].
func (s *Stack[V, G]) ReadRef(ssa ir.ValueID) (V, error) {
	f, err := s.current()
	if err != nil {
		var zero V
		return zero, err
	}
	v, ok := f.Bindings[ssa]
	if !ok {
		var zero V
		return zero, kerrors.Unbound(ssa)
	}
	return v, nil
}

// Write implements dialect.Interpreter[V].
func (s *Stack[V, G]) Write(result ir.ValueID, v V) error {
	f, err := s.current()
	if err != nil {
		return err
	}
	f.Bindings[result] = v
	return nil
}

var _ dialect.Interpreter[any] = (*Stack[any, struct{}])(nil)

// --- step / advance -----------------------------------------------------

func (s *Stack[V, G]) storeFor(id stage.ID) (*ir.Store, error) {
	store, ok := s.resolve(id)
	if !ok {
		return nil, kerrors.StageMismatch(id, id)
	}
	return store, nil
}

// Step executes the current statement's dialect semantics and returns
// the raw continuation, without applying any cursor mutation (spec
// section 4.11).
func (s *Stack[V, G]) Step() (dialect.Continuation[V], error) {
	f, err := s.current()
	if err != nil {
		return nil, err
	}
	if s.fuel != nil {
		if *s.fuel <= 0 {
			return nil, kerrors.Exhausted()
		}
		*s.fuel--
	}
	if f.Cursor == ir.InvalidStatement {
		return nil, kerrors.BadState("cursor past end of block with no terminator executed")
	}
	store, err := s.storeFor(f.Stage)
	if err != nil {
		return nil, err
	}
	stmt, err := store.Statement(f.Cursor)
	if err != nil {
		return nil, err
	}
	interpretable, ok := stmt.Def.(dialect.Interpretable[V])
	if !ok {
		return nil, kerrors.BadState("statement definition does not implement Interpretable")
	}
	return interpretable.Interpret(s, stmt.Results)
}

// Advance applies the cursor mutations implied by control, which must
// be exactly the continuation Step most recently returned (spec section
// 4.11: "mixing stale values is a programmer error").
func (s *Stack[V, G]) Advance(control dialect.Continuation[V]) error {
	switch c := control.(type) {
	case dialect.Continue:
		return s.advanceContinue()
	case dialect.Jump:
		return s.advanceJump(c)
	case dialect.Fork:
		return kerrors.BadState("Fork is not valid in concrete execution")
	case dialect.Call[V]:
		return s.advanceCall(c)
	case dialect.Return[V]:
		return s.advanceReturn(c)
	case dialect.Break:
		return nil
	case dialect.Halt:
		return nil
	default:
		return kerrors.BadState("unrecognized continuation")
	}
}

func (s *Stack[V, G]) advanceContinue() error {
	f, err := s.current()
	if err != nil {
		return err
	}
	store, err := s.storeFor(f.Stage)
	if err != nil {
		return err
	}
	stmt, err := store.Statement(f.Cursor)
	if err != nil {
		return err
	}
	if stmt.Next == ir.InvalidStatement {
		return kerrors.BadState("Continue past the last statement of a block without a terminator")
	}
	f.Cursor = stmt.Next
	return nil
}

func (s *Stack[V, G]) advanceJump(j dialect.Jump) error {
	f, err := s.current()
	if err != nil {
		return err
	}
	store, err := s.storeFor(f.Stage)
	if err != nil {
		return err
	}
	blk, err := store.Block(j.Target)
	if err != nil {
		return err
	}
	if len(blk.Args) != len(j.Args) {
		return kerrors.ArityMismatch(len(blk.Args), len(j.Args))
	}
	for i, argVal := range j.Args {
		v, ok := f.Bindings[argVal]
		if !ok {
			return kerrors.Unbound(argVal)
		}
		f.Bindings[blk.Args[i]] = v
	}
	f.Cursor = blk.FirstStmt
	return nil
}

func (s *Stack[V, G]) advanceCall(c dialect.Call[V]) error {
	if s.maxDepth != nil && len(s.frames) >= *s.maxDepth {
		return kerrors.MaxDepthExceeded(*s.maxDepth)
	}
	stageID, ok := c.Stage.(stage.ID)
	if !ok {
		return kerrors.BadState("Call continuation carries a non-stage.ID Stage tag")
	}
	store, err := s.storeFor(stageID)
	if err != nil {
		return err
	}
	entry, ok := c.Callee.(ir.StatementID)
	if !ok {
		return kerrors.BadState("Call continuation carries a non-statement callee entry")
	}
	entryStmt, err := store.Statement(entry)
	if err != nil {
		return err
	}
	if len(entryStmt.Regions) == 0 {
		return kerrors.BadState("callee has no body region")
	}
	region, err := store.Region(entryStmt.Regions[0])
	if err != nil {
		return err
	}
	if region.FirstBlock == ir.InvalidBlock {
		return kerrors.BadState("callee body region has no entry block")
	}
	entryBlock, err := store.Block(region.FirstBlock)
	if err != nil {
		return err
	}
	if len(entryBlock.Args) != len(c.Args) {
		return kerrors.ArityMismatch(len(entryBlock.Args), len(c.Args))
	}

	callee := newFrame[V](stageID, entryBlock.FirstStmt, c.ResultBinding)
	for i, arg := range c.Args {
		callee.Bindings[entryBlock.Args[i]] = arg
	}
	s.frames = append(s.frames, callee)
	return nil
}

func (s *Stack[V, G]) advanceReturn(r dialect.Return[V]) error {
	if len(s.frames) == 0 {
		return kerrors.BadState("Return with no active frame")
	}
	popped := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	if popped.ResultBinding == ir.InvalidValue || len(s.frames) == 0 {
		return nil
	}
	caller := s.frames[len(s.frames)-1]
	caller.Bindings[popped.ResultBinding] = r.Value

	store, err := s.storeFor(caller.Stage)
	if err != nil {
		return err
	}
	callStmt, err := store.Statement(caller.Cursor)
	if err != nil {
		return err
	}
	if callStmt.Next != ir.InvalidStatement {
		caller.Cursor = callStmt.Next
	} else {
		caller.Cursor = ir.InvalidStatement
	}
	return nil
}

// --- run loops -----------------------------------------------------------

// Call resolves func's entry statement in stage stageID (caller's
// responsibility to have already resolved it), pushes a root frame, runs
// to completion, and returns the root return value.
func (s *Stack[V, G]) Call(stageID stage.ID, entry ir.StatementID, args []V) (V, error) {
	var zero V
	store, err := s.storeFor(stageID)
	if err != nil {
		return zero, err
	}
	entryStmt, err := store.Statement(entry)
	if err != nil {
		return zero, err
	}
	if len(entryStmt.Regions) == 0 {
		return zero, kerrors.BadState("function has no body region")
	}
	region, err := store.Region(entryStmt.Regions[0])
	if err != nil {
		return zero, err
	}
	entryBlock, err := store.Block(region.FirstBlock)
	if err != nil {
		return zero, err
	}
	if len(entryBlock.Args) != len(args) {
		return zero, kerrors.ArityMismatch(len(entryBlock.Args), len(args))
	}

	root := newFrame[V](stageID, entryBlock.FirstStmt, ir.InvalidValue)
	for i, a := range args {
		root.Bindings[entryBlock.Args[i]] = a
	}
	s.frames = append(s.frames, root)
	rootDepth := len(s.frames)

	var result V
	for len(s.frames) >= rootDepth {
		cont, err := s.Step()
		if err != nil {
			return zero, err
		}
		if ret, ok := cont.(dialect.Return[V]); ok && len(s.frames) == rootDepth {
			result = ret.Value
			s.frames = s.frames[:rootDepth-1]
			return result, nil
		}
		if _, ok := cont.(dialect.Halt); ok {
			return zero, kerrors.BadState("Halt during Call")
		}
		if err := s.Advance(cont); err != nil {
			return zero, err
		}
	}
	return result, nil
}

// RunFromBlock pushes a root frame whose cursor starts at entryBlock's
// first statement, binding args to entryBlock's arguments, and runs to
// completion via Run. Unlike Call, it does not resolve a callee
// function-definition statement first — useful for tests and tools that
// already hold a block id rather than a function entry statement.
func (s *Stack[V, G]) RunFromBlock(stageID stage.ID, entryBlock ir.BlockID, args []V) (dialect.Continuation[V], error) {
	store, err := s.storeFor(stageID)
	if err != nil {
		return nil, err
	}
	blk, err := store.Block(entryBlock)
	if err != nil {
		return nil, err
	}
	if len(blk.Args) != len(args) {
		return nil, kerrors.ArityMismatch(len(blk.Args), len(args))
	}
	root := newFrame[V](stageID, blk.FirstStmt, ir.InvalidValue)
	for i, a := range args {
		root.Bindings[blk.Args[i]] = a
	}
	s.frames = append(s.frames, root)
	return s.Run()
}

// Run loops Step/Advance until the root call returns or Halt, ignoring
// breakpoints.
func (s *Stack[V, G]) Run() (dialect.Continuation[V], error) {
	for {
		cont, err := s.Step()
		if err != nil {
			return nil, err
		}
		if _, ok := cont.(dialect.Halt); ok {
			return cont, nil
		}
		if err := s.Advance(cont); err != nil {
			return nil, err
		}
		if len(s.frames) == 0 {
			return cont, nil
		}
	}
}

// RunUntilBreak is like Run but checks the breakpoint set before each
// step and also respects dialect-emitted Break.
func (s *Stack[V, G]) RunUntilBreak() (dialect.Continuation[V], error) {
	for {
		if f, err := s.current(); err == nil && s.breakpoints[f.Cursor] {
			return dialect.Break{}, nil
		}
		cont, err := s.Step()
		if err != nil {
			return nil, err
		}
		if _, ok := cont.(dialect.Break); ok {
			return cont, nil
		}
		if _, ok := cont.(dialect.Halt); ok {
			return cont, nil
		}
		if err := s.Advance(cont); err != nil {
			return nil, err
		}
		if len(s.frames) == 0 {
			return cont, nil
		}
	}
}
