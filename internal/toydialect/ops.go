// Package toydialect is a minimal dialect (const, add, icmp_lt, jump,
// condbr, call, return) used to exercise the kirin core end-to-end: the
// same opcode set runs both under the concrete stack interpreter
// (pkg/interpreter) and the abstract interpreter (pkg/absint), by
// parameterizing every opcode over an Ops[V] implementation rather than
// hard-coding int arithmetic. This is reference/test infrastructure, not
// a production dialect (spec section 6 lists "concrete builtin
// dialects" as a non-goal; this one exists solely to drive the
// scenarios in spec section 8).
package toydialect

import (
	"fmt"
	"math"

	"github.com/QuEraComputing/kirin/pkg/dialect"
	"github.com/QuEraComputing/kirin/pkg/ir"
)

// Ops supplies the domain-specific behavior every opcode needs: how to
// embed a literal, how to add, how to compare, and — since "take the
// true branch" means something different to a concrete int than to an
// abstract Interval — how to branch.
type Ops[V any] interface {
	FromLiteral(n int) V
	Add(a, b V) V
	LessThan(a, b V) V
	Branch(cond V, ifTrue, ifFalse ir.BlockID, trueArgs, falseArgs []ir.ValueID) (dialect.Continuation[V], error)
}

// IntOps is the concrete domain: plain machine ints, with LessThan
// returning 0/1 and Branch picking exactly one successor by testing
// cond != 0 (spec section 8 scenario 1).
type IntOps struct{}

func (IntOps) FromLiteral(n int) int { return n }
func (IntOps) Add(a, b int) int      { return a + b }
func (IntOps) LessThan(a, b int) int {
	if a < b {
		return 1
	}
	return 0
}
func (IntOps) Branch(cond int, ifTrue, ifFalse ir.BlockID, trueArgs, falseArgs []ir.ValueID) (dialect.Continuation[int], error) {
	if cond != 0 {
		return dialect.Jump{Target: ifTrue, Args: trueArgs}, nil
	}
	return dialect.Jump{Target: ifFalse, Args: falseArgs}, nil
}

// Interval is the abstract domain: a closed integer range, unbounded
// ends represented by math.MinInt/math.MaxInt (spec section 8 scenario
// 2, "interval analysis").
type Interval struct{ Lo, Hi int }

func IV(lo, hi int) Interval { return Interval{Lo: lo, Hi: hi} }

func (a Interval) Join(b Interval) Interval {
	return Interval{Lo: min(a.Lo, b.Lo), Hi: max(a.Hi, b.Hi)}
}

func (a Interval) Meet(b Interval) Interval {
	lo, hi := max(a.Lo, b.Lo), min(a.Hi, b.Hi)
	if lo > hi {
		return Interval{Lo: 1, Hi: 0}
	}
	return Interval{Lo: lo, Hi: hi}
}

func (a Interval) IsSubseteq(b Interval) bool {
	if a.Lo > a.Hi {
		return true
	}
	return a.Lo >= b.Lo && a.Hi <= b.Hi
}

func (a Interval) Widen(b Interval) Interval {
	out := a
	if b.Lo < a.Lo {
		out.Lo = math.MinInt
	}
	if b.Hi > a.Hi {
		out.Hi = math.MaxInt
	}
	return out
}

func (a Interval) Narrow(b Interval) Interval {
	out := a
	if a.Lo == math.MinInt && b.Lo != math.MinInt {
		out.Lo = b.Lo
	}
	if a.Hi == math.MaxInt && b.Hi != math.MaxInt {
		out.Hi = b.Hi
	}
	return out
}

func (a Interval) String() string {
	lo, hi := "-inf", "+inf"
	if a.Lo != math.MinInt {
		lo = fmt.Sprintf("%d", a.Lo)
	}
	if a.Hi != math.MaxInt {
		hi = fmt.Sprintf("%d", a.Hi)
	}
	return fmt.Sprintf("[%s, %s]", lo, hi)
}

var _ dialect.AbstractValue[Interval] = Interval{}

// IntervalOps is the abstract domain counterpart to IntOps: LessThan
// returns the full [0,1] range (the comparison's truth value is not
// tracked), and Branch always forks both successors, since the
// abstract interpreter must explore every reachable edge regardless of
// what the condition's abstract value says (spec section 4.12).
type IntervalOps struct{}

func (IntervalOps) FromLiteral(n int) Interval { return IV(n, n) }
func (IntervalOps) Add(a, b Interval) Interval {
	return Interval{Lo: addSat(a.Lo, b.Lo), Hi: addSat(a.Hi, b.Hi)}
}
func (IntervalOps) LessThan(Interval, Interval) Interval { return IV(0, 1) }
func (IntervalOps) Branch(_ Interval, ifTrue, ifFalse ir.BlockID, trueArgs, falseArgs []ir.ValueID) (dialect.Continuation[Interval], error) {
	return dialect.Fork{Targets: []dialect.ForkTarget{
		{Target: ifTrue, Args: trueArgs},
		{Target: ifFalse, Args: falseArgs},
	}}, nil
}

func addSat(a, b int) int {
	if a == math.MinInt || b == math.MinInt {
		return math.MinInt
	}
	if a == math.MaxInt || b == math.MaxInt {
		return math.MaxInt
	}
	return a + b
}
