package absint

import (
	"fmt"
	"sync"

	"github.com/QuEraComputing/kirin/pkg/stage"
	"golang.org/x/sync/singleflight"
)

// SummaryKey identifies one memoized call summary: a callee entry point
// on a given stage, keyed by a caller-supplied stable encoding of its
// abstract argument tuple (spec section 4.12: "call summaries are
// memoized per (callee, stage, abstract args), not recomputed on every
// call site").
type SummaryKey struct {
	Callee string
	Stage  stage.ID
	Args   string
}

func (k SummaryKey) group() string {
	return fmt.Sprintf("%s|%d|%s", k.Callee, k.Stage, k.Args)
}

// SummaryCache memoizes the abstract Result of analyzing one callee
// under one abstract argument tuple. Concurrent Resolve calls for the
// same key are coalesced through singleflight so that a callee reached
// from two different call sites during the same fixpoint round is
// analyzed once, not twice — the interpreter itself runs its own
// worklist single-threaded, but summaries are shared across
// Interpreter instances (e.g. one per goroutine exploring a different
// region of a large pipeline), which is where the coalescing pays off.
type SummaryCache[V any] struct {
	group singleflight.Group

	mu    sync.Mutex
	cache map[SummaryKey]Result[V]
}

// NewSummaryCache creates an empty cache.
func NewSummaryCache[V any]() *SummaryCache[V] {
	return &SummaryCache[V]{cache: make(map[SummaryKey]Result[V])}
}

// Resolve returns the cached Result for key, computing it via compute
// on a miss. Concurrent callers that miss while a computation for key is
// in flight share its result; a caller that misses after that
// computation returned but before its result was cached computes again.
func (c *SummaryCache[V]) Resolve(key SummaryKey, compute func() (Result[V], error)) (Result[V], error) {
	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key.group(), func() (any, error) {
		return compute()
	})
	if err != nil {
		return Result[V]{}, err
	}
	result := v.(Result[V])

	c.mu.Lock()
	c.cache[key] = result
	c.mu.Unlock()
	return result, nil
}

// Invalidate drops a memoized summary, e.g. after a redefine operation
// invalidates the callee it was computed against (spec section 4.6).
func (c *SummaryCache[V]) Invalidate(key SummaryKey) {
	c.mu.Lock()
	delete(c.cache, key)
	c.mu.Unlock()
}
