// Package mcts implements the parallel PUCT search tree: edges, nodes,
// child selection, and the playout/backup loop.
package mcts

import (
	"sync/atomic"

	"github.com/kestrelchess/puctcore/arena"
	"github.com/kestrelchess/puctcore/nnue"
	"github.com/kestrelchess/puctcore/position"
)

// VirtualLoss is subtracted from an edge's running sum on descent and
// restored (along with the real backed-up value) on the way back up —
// spec.md §5's mechanism for deterring multiple workers from piling onto
// the same edge while an expansion is in flight.
const VirtualLoss = int64(nnue.Scale)

// Edge is one legal move from a parent node (HotMoveInfo in spec.md
// §3). Move and Policy are fixed at creation except for the one-time
// root-policy refresh; Visits, SumEvaluations, and Child are updated
// lock-free from concurrent search workers.
type Edge struct {
	Move   position.Move
	Policy float32

	visits         atomic.Uint32
	sumEvaluations atomic.Int64
	child          atomic.Uint64 // packed arena.Handle
}

// Visits returns the edge's atomic visit count.
func (e *Edge) Visits() uint32 { return e.visits.Load() }

// SumEvaluations returns the atomic running sum of backed-up values.
func (e *Edge) SumEvaluations() int64 { return e.sumEvaluations.Load() }

// Child returns the edge's child handle and whether it is non-null.
func (e *Edge) Child() (arena.Handle, bool) {
	h := arena.Unpack(e.child.Load())
	return h, !h.IsNull()
}

// CompareAndSwapChild atomically links child into the edge iff it is
// currently null. Reports whether this call won the race.
func (e *Edge) CompareAndSwapChild(child arena.Handle) bool {
	return e.child.CompareAndSwap(arena.Handle{}.Pack(), child.Pack())
}

// ClearChild resets the edge's child pointer to null, used when a flip
// invalidates the root's children links.
func (e *Edge) ClearChild() {
	e.child.Store(arena.Handle{}.Pack())
}

// Down applies virtual loss: one more visit, SCALE subtracted from the
// running sum.
func (e *Edge) Down() {
	e.sumEvaluations.Add(-VirtualLoss)
	e.visits.Add(1)
}

// Up restores the virtual-loss debit and folds in the real backed-up
// value v (fixed-point, units of nnue.Scale).
func (e *Edge) Up(v int64) {
	e.sumEvaluations.Add(v + VirtualLoss)
}

// AverageValue returns sum_evaluations/visits in [-1, 1], or fpu if the
// edge is unvisited.
func (e *Edge) AverageValue(fpu float32) float32 {
	n := e.Visits()
	if n == 0 {
		return fpu
	}
	return float32(e.SumEvaluations()) / float32(n) / float32(nnue.Scale)
}

// AverageRaw returns sum_evaluations/visits in raw fixed-point units of
// nnue.Scale (i.e. not divided down to [-1, 1]), or fpu if unvisited.
// Used by the principal-variation selection formula, which mixes this raw
// average against a SCALE-sized penalty term (spec.md §4.7).
func (e *Edge) AverageRaw(fpu float32) float32 {
	n := e.Visits()
	if n == 0 {
		return fpu
	}
	return float32(e.SumEvaluations()) / float32(n)
}
