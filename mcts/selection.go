package mcts

import (
	"github.com/chewxy/math32"

	"github.com/kestrelchess/puctcore/nnue"
)

// FPUValue is the first-play-urgency value substituted for q(e) on an
// unvisited edge: spec.md §4.6 leaves the exact constant as a tunable
// "implementation-defined optimistic constant." This module picks a
// pessimistic -1.0 (loss-as-default) rather than an optimistic one, so
// that an unvisited sibling of an already-good line isn't preferred
// purely for being unexplored; see DESIGN.md.
const FPUValue float32 = -1.0

// ChooseChild selects the edge maximizing
// q(e) + cpuct * p(e) * sqrt(N) / (1 + n(e)), breaking ties by the first
// (lowest-index) edge. isRoot is accepted for parity with spec.md's
// selection signature; any root exploration boost is instead baked into
// edges' Policy once, during the root-policy refresh in Tree.New.
func ChooseChild(edges []Edge, cpuct float32, isRoot bool) int {
	var total uint32
	for i := range edges {
		total += edges[i].Visits()
	}
	sqrtN := math32.Sqrt(float32(total))

	best := 0
	bestValue := math32.Inf(-1)
	for i := range edges {
		e := &edges[i]
		q := e.AverageValue(FPUValue)
		puct := cpuct * e.Policy * sqrtN / (1 + float32(e.Visits()))
		value := q + puct
		if value > bestValue {
			bestValue = value
			best = i
		}
	}
	return best
}

// ChoosePrincipalChild selects the edge maximizing
// q(e) - k*2*SCALE/sqrt(n(e)) (spec.md §4.7's principal-variation pick).
// Unlike ChooseChild's PUCT formula, this operates on the raw
// (un-normalized) average in units of nnue.Scale, with -SCALE substituted
// for unvisited edges, exactly as spec.md states.
func ChoosePrincipalChild(edges []Edge, k float32) int {
	const fpuRaw = -float32(nnue.Scale)
	best := 0
	bestValue := math32.Inf(-1)
	for i := range edges {
		e := &edges[i]
		n := e.Visits()
		q := e.AverageRaw(fpuRaw)
		var penalty float32
		if n > 0 {
			penalty = k * 2 * float32(nnue.Scale) / math32.Sqrt(float32(n))
		}
		value := q - penalty
		if value > bestValue {
			bestValue = value
			best = i
		}
	}
	return best
}
