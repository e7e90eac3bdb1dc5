package arena

import "sync"

// Generation is one (node pool, edge pool, hash index) triple. LRTable
// keeps exactly two of these and ping-pongs which one is "active" on each
// flip, rather than reallocating pools — the physical pools are fixed for
// the table's lifetime, only the active/previous labelling moves.
type Generation[N any, E any] struct {
	Nodes *Pool[N]
	Edges *Pool[E]
	mu    sync.RWMutex
	index map[[16]byte]uint32 // position hash -> 1-based Nodes index
}

func newGeneration[N any, E any](nodeCapacity, edgeCapacity int) *Generation[N, E] {
	return &Generation[N, E]{
		Nodes: NewPool[N](nodeCapacity),
		Edges: NewPool[E](edgeCapacity),
		index: make(map[[16]byte]uint32),
	}
}

func (g *Generation[N, E]) lookup(hash [16]byte) (*N, uint32, bool) {
	g.mu.RLock()
	idx, ok := g.index[hash]
	g.mu.RUnlock()
	if !ok {
		return nil, 0, false
	}
	return g.Nodes.Get(idx), idx, true
}

// insert records hash -> idx unless an entry already exists, in which
// case the existing index wins (matching spec.md §4.5's "if an entry for
// state already existed, return that existing pointer").
func (g *Generation[N, E]) insert(hash [16]byte, idx uint32) (winner uint32, existed bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.index[hash]; ok {
		return existing, true
	}
	g.index[hash] = idx
	return idx, false
}

func (g *Generation[N, E]) reset() {
	g.mu.Lock()
	g.index = make(map[[16]byte]uint32)
	g.mu.Unlock()
	g.Nodes.Reset()
	g.Edges.Reset()
}

// NodeEdges constrains the node pointer type NP (always *N) so that
// LRTable can read and rewrite a node's edge slice during promotion
// without importing any concrete domain type — the same self-referential
// pointer-constraint idiom used to let generic code call methods on a
// type parameter's pointer receiver. N and E stay domain-agnostic; only
// this interface knows a node "has" an edge slice.
type NodeEdges[N any, E any] interface {
	*N
	EdgeSlice() []E
	SetEdgeSlice([]E)
}

// LRTable is the two-generation transposition table (spec.md §4.5). N is
// the concrete node type, E the edge type, and NP is *N constrained by
// NodeEdges so promotion can give a promoted node its own edge slice
// instead of aliasing the generation it was copied from (mcts.Node /
// *mcts.Node / mcts.Edge in this module).
type LRTable[N any, NP NodeEdges[N, E], E any] struct {
	gens      [2]*Generation[N, E]
	activeIdx uint32
	flipMu    sync.Mutex
}

// NewLRTable allocates both generations with room for nodeCapacity nodes
// and edgeCapacity edges each.
func NewLRTable[N any, NP NodeEdges[N, E], E any](nodeCapacity, edgeCapacity int) *LRTable[N, NP, E] {
	return &LRTable[N, NP, E]{
		gens: [2]*Generation[N, E]{
			newGeneration[N, E](nodeCapacity, edgeCapacity),
			newGeneration[N, E](nodeCapacity, edgeCapacity),
		},
	}
}

func (t *LRTable[N, NP, E]) active() *Generation[N, E]   { return t.gens[t.activeIdx] }
func (t *LRTable[N, NP, E]) previous() *Generation[N, E] { return t.gens[1-t.activeIdx] }

// Lookup tries the active generation, then the previous one. A hit in the
// previous generation is promoted: its edges are copied into a freshly
// allocated slice in the active generation's edge pool, then the node
// itself is copied into the active generation's node pool and repointed
// at that fresh slice — mirroring descend's real-creation path, which
// also allocates edges and a node as two separate steps. Promoting a
// shallow copy of the node without also reallocating its edges would
// leave it aliasing the previous generation's Edges backing array, which
// the very next FlipTables call resets out from under any playout still
// concurrently reading or writing it. If either pool has no room, the
// previous-generation pointer is returned directly instead (spec.md
// §4.5).
func (t *LRTable[N, NP, E]) Lookup(hash [16]byte) (*N, Handle, bool) {
	if n, idx, ok := t.active().lookup(hash); ok {
		return n, Handle{Generation: t.activeIdx, Index: idx}, true
	}

	n, prevIdx, ok := t.previous().lookup(hash)
	if !ok {
		return nil, Handle{}, false
	}
	prevHandle := Handle{Generation: 1 - t.activeIdx, Index: prevIdx}

	srcEdges := NP(n).EdgeSlice()
	dstEdges, _, err := t.active().Edges.AllocN(len(srcEdges))
	if err != nil {
		return n, prevHandle, true
	}
	copy(dstEdges, srcEdges)

	dst, newIdx, err := t.active().Nodes.Alloc()
	if err != nil {
		return n, prevHandle, true
	}
	*dst = *n
	NP(dst).SetEdgeSlice(dstEdges)

	winnerIdx, existed := t.active().insert(hash, newIdx)
	if existed {
		return t.active().Nodes.Get(winnerIdx), Handle{Generation: t.activeIdx, Index: winnerIdx}, true
	}
	return dst, Handle{Generation: t.activeIdx, Index: newIdx}, true
}

// AllocActiveNode reserves a fresh node slot in the active generation.
func (t *LRTable[N, NP, E]) AllocActiveNode() (*N, Handle, error) {
	n, idx, err := t.active().Nodes.Alloc()
	if err != nil {
		return nil, Handle{}, err
	}
	return n, Handle{Generation: t.activeIdx, Index: idx}, nil
}

// AllocActiveEdges reserves n contiguous edge slots in the active
// generation (alloc_move_info).
func (t *LRTable[N, NP, E]) AllocActiveEdges(n int) ([]E, error) {
	edges, _, err := t.active().Edges.AllocN(n)
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// Insert indexes h under hash in the active generation. If an entry for
// hash already existed, its handle is returned with existed=true and the
// caller must redirect to it instead of h.
func (t *LRTable[N, NP, E]) Insert(hash [16]byte, h Handle) (winner Handle, existed bool) {
	winnerIdx, existed := t.active().insert(hash, h.Index)
	return Handle{Generation: t.activeIdx, Index: winnerIdx}, existed
}

// Get dereferences a handle produced by this table (Lookup/AllocActiveNode).
func (t *LRTable[N, NP, E]) Get(h Handle) *N {
	return t.gens[h.Generation].Nodes.Get(h.Index)
}

// IsArenaFull reports whether the active generation's node pool has no
// room for another node.
func (t *LRTable[N, NP, E]) IsArenaFull() bool {
	return t.active().Nodes.IsFull()
}

// FlipTables swaps active and previous, then resets the new active
// generation (empties its map and rewinds both its pools).
func (t *LRTable[N, NP, E]) FlipTables() {
	newActive := 1 - t.activeIdx
	t.gens[newActive].reset()
	t.activeIdx = newActive
}

// Lock/Unlock implement the flip_lock: held briefly at the top of every
// descent, and for the whole of FlipTables.
func (t *LRTable[N, NP, E]) Lock()   { t.flipMu.Lock() }
func (t *LRTable[N, NP, E]) Unlock() { t.flipMu.Unlock() }
