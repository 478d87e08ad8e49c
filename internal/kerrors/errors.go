// Package kerrors provides the tagged error taxonomy shared by every layer
// of the kirin IR core: arenas, structural IR, dispatch, function
// invalidation, and the interpreters. Errors are tagged, not stringly
// typed, per the taxonomy in spec section 6 and section 7.
package kerrors

import "fmt"

// Kind identifies which contract a *Error violates.
type Kind int

const (
	// Arena (C1)
	KindDeleted Kind = iota
	KindOutOfBounds

	// Structural IR (C5)
	KindArityMismatch
	KindOrphanStatement
	KindInvalidTerminator
	KindCrossRegionSuccessor

	// Symbols (C2, C9)
	KindUnknownSymbol

	// Function model (C7)
	KindStagedConflict
	KindSpecializeConflict

	// Dispatch (C6)
	KindNoMatch
	KindAmbiguous

	// Execution (C11, C12)
	KindUnbound
	KindBadState
	KindExhausted
	KindMaxDepthExceeded
	KindStageMismatch
	KindCallResolutionFailed
	KindDidNotConverge
)

var kindNames = map[Kind]string{
	KindDeleted:              "Deleted",
	KindOutOfBounds:          "OutOfBounds",
	KindArityMismatch:        "ArityMismatch",
	KindOrphanStatement:      "OrphanStatement",
	KindInvalidTerminator:    "InvalidTerminator",
	KindCrossRegionSuccessor: "CrossRegionSuccessor",
	KindUnknownSymbol:        "UnknownSymbol",
	KindStagedConflict:       "StagedConflict",
	KindSpecializeConflict:   "SpecializeConflict",
	KindNoMatch:              "NoMatch",
	KindAmbiguous:            "Ambiguous",
	KindUnbound:              "Unbound",
	KindBadState:             "BadState",
	KindExhausted:            "Exhausted",
	KindMaxDepthExceeded:     "MaxDepthExceeded",
	KindStageMismatch:        "StageMismatch",
	KindCallResolutionFailed: "CallResolutionFailed",
	KindDidNotConverge:       "DidNotConverge",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Error is the single tagged error type used throughout kirin. Every
// surfaced or locally-recovered condition in spec section 7 is one of
// these, distinguished by Kind rather than by a distinct Go type, so
// callers switch on Kind() instead of doing type assertions.
type Error struct {
	kind    Kind
	message string
	cause   error

	// Payload used only by KindStagedConflict / KindSpecializeConflict:
	// the caller may inspect Old/New and decide to retry via the
	// redefine_* API (spec 4.6). Left nil for every other kind.
	Old any
	New any
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the tag distinguishing this error's contract violation.
func (e *Error) Kind() Kind { return e.kind }

// Is supports errors.Is(err, kerrors.Sentinel(kind)).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.kind == e.kind
}

func new_(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Sentinel returns a bare error of the given kind suitable only for use
// with errors.Is; it carries no message or payload.
func Sentinel(kind Kind) *Error { return &Error{kind: kind, message: kind.String()} }

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as(err, &e) {
		return e.kind == kind
	}
	return false
}

// as is a tiny errors.As shim kept local to avoid importing "errors" just
// for this one call site used by Is.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// --- Constructors, one per Kind, mirroring the teacher's NewXError style ---

func Deleted(id any) *Error {
	return new_(KindDeleted, "slot %v has been tombstoned", id)
}

func OutOfBounds(id any) *Error {
	return new_(KindOutOfBounds, "id %v is out of bounds", id)
}

func ArityMismatch(want, got int) *Error {
	return new_(KindArityMismatch, "expected arity %d, got %d", want, got)
}

func OrphanStatement() *Error {
	return new_(KindOrphanStatement, "statement is not attached to a block")
}

func InvalidTerminator(reason string) *Error {
	return new_(KindInvalidTerminator, "%s", reason)
}

func CrossRegionSuccessor() *Error {
	return new_(KindCrossRegionSuccessor, "successor block belongs to a different region")
}

func UnknownSymbol(name string) *Error {
	return new_(KindUnknownSymbol, "unknown symbol: %s", name)
}

func StagedConflict(old, newSig any) *Error {
	e := new_(KindStagedConflict, "staged function signature conflict")
	e.Old, e.New = old, newSig
	return e
}

func SpecializeConflict(old, newSig any) *Error {
	e := new_(KindSpecializeConflict, "specialization signature conflict")
	e.Old, e.New = old, newSig
	return e
}

func NoMatch() *Error {
	return new_(KindNoMatch, "no applicable specialization")
}

func Ambiguous(candidates any) *Error {
	e := new_(KindAmbiguous, "ambiguous dispatch among %v", candidates)
	e.New = candidates
	return e
}

func Unbound(ssa any) *Error {
	return new_(KindUnbound, "unbound ssa value: %v", ssa)
}

func BadState(reason string) *Error {
	return new_(KindBadState, "%s", reason)
}

func Exhausted() *Error {
	return new_(KindExhausted, "fuel exhausted")
}

func MaxDepthExceeded(depth int) *Error {
	return new_(KindMaxDepthExceeded, "max call depth %d exceeded", depth)
}

func StageMismatch(want, got any) *Error {
	return new_(KindStageMismatch, "expected stage %v, frame is on stage %v", want, got)
}

func CallResolutionFailed(reason string) *Error {
	return new_(KindCallResolutionFailed, "%s", reason)
}

func DidNotConverge(iterations int) *Error {
	return new_(KindDidNotConverge, "fixpoint did not converge within %d iterations", iterations)
}

// Wrap attaches cause to an existing tagged error, mirroring the
// teacher's WrapError helper.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	e := new_(kind, format, args...)
	e.cause = cause
	return e
}
