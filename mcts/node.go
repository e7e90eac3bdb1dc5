package mcts

import "github.com/kestrelchess/puctcore/eval"

// Node is SearchNode from spec.md §3: a contiguous edge slice plus a
// position flag. An empty edge slice means terminal or the unexpanded
// sentinel.
type Node struct {
	Edges []Edge
	Flag  eval.Flag
}

// IsTerminal reports whether this node has no legal moves and is not
// merely the unexpanded placeholder (Flag distinguishes the two: the
// unexpanded sentinel carries Flag == Standard).
func (n *Node) IsTerminal() bool {
	return len(n.Edges) == 0 && n.Flag != eval.Standard
}

// IsTablebase reports whether this node's flag was set by the tablebase
// oracle.
func (n *Node) IsTablebase() bool {
	return n.Flag.IsTablebase()
}

// EdgeSlice and SetEdgeSlice satisfy arena.NodeEdges, letting LRTable
// give a promoted node its own freshly allocated edge slice rather than
// aliasing the generation it was copied from.
func (n *Node) EdgeSlice() []Edge     { return n.Edges }
func (n *Node) SetEdgeSlice(e []Edge) { n.Edges = e }

// DrawNode and UnexpandedNode are the two static sentinels from spec.md
// §3: addressable for the lifetime of the process, never stored in an
// arena or transposition table.
var (
	DrawNode       = &Node{Flag: eval.TerminalDraw}
	UnexpandedNode = &Node{Flag: eval.Standard}
)
