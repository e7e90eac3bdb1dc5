package mcts

import (
	"sync/atomic"
	"time"

	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/kestrelchess/puctcore/arena"
	"github.com/kestrelchess/puctcore/eval"
	"github.com/kestrelchess/puctcore/mathutil"
	"github.com/kestrelchess/puctcore/nnue"
	"github.com/kestrelchess/puctcore/position"
)

// MaxPlayoutLength bounds a single playout's path, matching spec.md §4.7.
const MaxPlayoutLength = 256

// rootEdgeCapacity bounds the root-only arena's edge pool; no chess
// position has more than 218 legal moves.
const rootEdgeCapacity = 256

// Config holds the search's tunables (spec.md §6).
type Config struct {
	Cpuct            float32
	CvisitsSelection float32

	// RootNoiseAlpha/RootNoiseEpsilon control the Dirichlet exploration
	// boost mixed into the root's policy priors once at tree construction
	// (spec.md §4.6: "a policy noise / exploration boost may be
	// applied"). Set RootNoiseEpsilon to 0 to disable.
	RootNoiseAlpha   float64
	RootNoiseEpsilon float64
}

// DefaultConfig mirrors commonly used AlphaZero-style defaults.
func DefaultConfig() Config {
	return Config{
		Cpuct:            2.0,
		CvisitsSelection: 0.0,
		RootNoiseAlpha:   0.3,
		RootNoiseEpsilon: 0.25,
	}
}

// Tree is SearchTree from spec.md §4.7: a root state/node pinned in a
// dedicated never-flipped arena, a shared two-generation transposition
// table, and the atomic counters every playout updates.
type Tree struct {
	cfg Config

	rootState *position.State
	rootNode  *Node

	// The root node's own arena: never flipped, sized for exactly one
	// node and its edges.
	rootNodePool *arena.Pool[Node]
	rootEdgePool *arena.Pool[Edge]

	table     *arena.LRTable[Node, *Node, Edge]
	evaluator *eval.Evaluator

	numNodes  atomic.Int64
	playouts  atomic.Int64
	maxDepth  atomic.Int64
	tbHits    atomic.Int64
	nextInfo  atomic.Int64 // monotonic "latest second recorded" watermark
	startTime time.Time
}

// New builds the tree per spec.md §4.7's initialization: allocate the
// root-only table, build the root node, warm-start its edges from the
// shared table's previous generation, then refresh the root policy.
func New(state *position.State, cfg Config, evaluator *eval.Evaluator, table *arena.LRTable[Node, *Node, Edge]) *Tree {
	t := &Tree{
		cfg:          cfg,
		rootState:    state.Clone(),
		rootNodePool: arena.NewPool[Node](1),
		rootEdgePool: arena.NewPool[Edge](rootEdgeCapacity),
		table:        table,
		evaluator:    evaluator,
		startTime:    time.Now(),
	}

	root, _, err := t.rootNodePool.Alloc()
	if err != nil {
		panic("mcts: root arena allocation failed at startup")
	}
	*root = t.createNode(t.rootState.Clone(), t.rootEdgePool.AllocN)
	t.rootNode = root

	// Warm-start edge statistics from the shared table's previous
	// generation, positionally matched by move order.
	t.warmStartFromTable(t.rootState, root)

	t.refreshRootPolicy()
	return t
}

func (t *Tree) warmStartFromTable(st *position.State, node *Node) {
	hash := st.Hash()
	existing, _, ok := t.table.Lookup(hash)
	if !ok {
		return
	}
	n := len(existing.Edges)
	if len(node.Edges) < n {
		n = len(node.Edges)
	}
	for i := 0; i < n; i++ {
		if visits := existing.Edges[i].Visits(); visits > 0 {
			node.Edges[i].visits.Store(visits)
			node.Edges[i].sumEvaluations.Store(existing.Edges[i].SumEvaluations())
		}
	}
}

// refreshRootPolicy is the only authorized mutation of Policy after node
// creation (spec.md §4.7 step 4): each edge's average reward (or -SCALE
// when unvisited) is normalized to [-1,1], softmaxed, and written back as
// the edge's policy. Root exploration noise, when configured, is then
// mixed in.
func (t *Tree) refreshRootPolicy() {
	edges := t.rootNode.Edges
	if len(edges) == 0 {
		return
	}

	values := make([]float32, len(edges))
	for i := range edges {
		values[i] = edges[i].AverageValue(-1.0)
	}
	mathutil.Softmax(values)
	for i := range edges {
		edges[i].Policy = values[i]
	}

	t.mixRootNoise()
}

func (t *Tree) mixRootNoise() {
	if t.cfg.RootNoiseEpsilon <= 0 {
		return
	}
	edges := t.rootNode.Edges
	alpha := make([]float64, len(edges))
	for i := range alpha {
		alpha[i] = t.cfg.RootNoiseAlpha
	}
	dist := distmv.NewDirichlet(alpha, distrand.NewSource(uint64(time.Now().UnixNano())))
	noise := dist.Rand(nil)

	eps := float32(t.cfg.RootNoiseEpsilon)
	for i := range edges {
		edges[i].Policy = (1-eps)*edges[i].Policy + eps*float32(noise[i])
	}
}

// createNode is create_node from spec.md §4.7.
func (t *Tree) createNode(st *position.State, alloc func(n int) ([]Edge, uint32, error)) Node {
	moves := st.AvailableMoves()
	flag := t.evaluator.EvaluateStateFlag(st, moves)
	policy := t.evaluator.EvaluatePolicy(st, moves)

	if flag.IsTablebase() {
		t.tbHits.Add(1)
	}

	edges, _, err := alloc(len(moves))
	if err != nil {
		panic(err) // root allocation only; mid-search creation goes through descend (table.AllocActiveEdges + createNodeInto), which handles Full separately
	}
	for i := range edges {
		edges[i] = Edge{Move: moves[i], Policy: policy[i]}
	}

	return Node{Edges: edges, Flag: flag}
}

// playoutPathEntry is one step of a playout's descent.
type playoutPathEntry struct {
	edge *Edge
}

// Playout runs one MCTS simulation from the root. It returns false when
// the caller should stop searching (time management said "after end"),
// true otherwise — including the "arena was full, flip happened, please
// retry" case from spec.md §4.7.
func (t *Tree) Playout(shouldStop func(playouts int64) bool) bool {
	state := t.rootState.Clone()
	node := t.rootNode
	path := make([]playoutPathEntry, 0, MaxPlayoutLength)

	for {
		t.table.Lock()
		t.table.Unlock()

		if node.IsTerminal() {
			break
		}
		if len(node.Edges) == 0 {
			break
		}
		if node.IsTablebase() && state.HalfmoveCounter() == 0 {
			break
		}
		if len(path) >= MaxPlayoutLength {
			break
		}

		idx := ChooseChild(node.Edges, t.cfg.Cpuct, len(path) == 0)
		choice := &node.Edges[idx]
		choice.Down()
		path = append(path, playoutPathEntry{edge: choice})
		state.MakeMove(choice.Move)

		// First traversal of this edge: evaluate the leaf directly and
		// stop, rather than allocating a node for a position that may
		// never be visited again. Only a second-or-later traversal pays
		// for a real node via descend (spec.md §4.7).
		if choice.Visits() == 1 {
			node = UnexpandedNode
			break
		}

		next, abort := t.descend(state, choice)
		if abort {
			return true
		}
		node = next
	}

	evaln := t.leafValue(node, state)
	t.backup(path, evaln)

	depth := int64(len(path) - 1)
	if depth < 0 {
		depth = 0
	}
	t.numNodes.Add(depth)
	for {
		old := t.maxDepth.Load()
		if depth <= old || t.maxDepth.CompareAndSwap(old, depth) {
			break
		}
	}
	playouts := t.playouts.Add(1)

	return !t.reportIfDue(playouts, shouldStop)
}

func (t *Tree) leafValue(node *Node, state *position.State) int64 {
	var evaln int64
	switch node.Flag {
	case eval.TerminalWin, eval.TablebaseWin:
		evaln = int64(nnue.Scale)
	case eval.TerminalLoss, eval.TablebaseLoss:
		evaln = -int64(nnue.Scale)
	case eval.TerminalDraw, eval.TablebaseDraw:
		evaln = 0
	default:
		evaln = t.evaluator.EvaluateState(state)
	}

	if !position.FoldWB(state.SideToMove(), false, true) {
		// side to move after all moves applied is white: negate. evaln is
		// white-relative here (EvaluateState and node flags both are), so
		// this leaves it from the perspective of the side that made the
		// last move, where backup starts alternating.
		evaln = -evaln
	}
	return evaln
}

func (t *Tree) backup(path []playoutPathEntry, evaln int64) {
	for i := len(path) - 1; i >= 0; i-- {
		path[i].edge.Up(evaln)
		evaln = -evaln
	}
}

// descend is descend(state, choice) from spec.md §4.7.
func (t *Tree) descend(state *position.State, choice *Edge) (node *Node, abort bool) {
	if state.IsRepetition() || state.DrawnByFiftyMoveRule() || state.IsInsufficientMaterial() {
		return DrawNode, false
	}

	if h, ok := choice.Child(); ok {
		return t.table.Get(h), false
	}

	hash := state.Hash()
	if existing, handle, ok := t.table.Lookup(hash); ok {
		if choice.CompareAndSwapChild(handle) {
			return existing, false
		}
		h, _ := choice.Child()
		return t.table.Get(h), false
	}

	moves := state.AvailableMoves()
	edges, err := t.table.AllocActiveEdges(len(moves))
	if err != nil {
		return nil, t.handleArenaFull()
	}

	created := t.createNodeInto(state, moves, edges)
	t.warmStartFromTable(state, &created)

	nodeSlot, handle, err := t.table.AllocActiveNode()
	if err != nil {
		return nil, t.handleArenaFull()
	}
	*nodeSlot = created

	if !choice.CompareAndSwapChild(handle) {
		h, _ := choice.Child()
		return t.table.Get(h), false
	}

	winner, existed := t.table.Insert(hash, handle)
	if existed {
		choice.child.Store(winner.Pack())
		return t.table.Get(winner), false
	}
	return nodeSlot, false
}

func (t *Tree) createNodeInto(st *position.State, moves []position.Move, edges []Edge) Node {
	flag := t.evaluator.EvaluateStateFlag(st, moves)
	pol := t.evaluator.EvaluatePolicy(st, moves)

	if flag.IsTablebase() {
		t.tbHits.Add(1)
	}

	for i := range edges {
		edges[i] = Edge{Move: moves[i], Policy: pol[i]}
	}
	return Node{Edges: edges, Flag: flag}
}

func (t *Tree) handleArenaFull() bool {
	t.table.Lock()
	if t.table.IsArenaFull() {
		t.table.FlipTables()
		for i := range t.rootNode.Edges {
			t.rootNode.Edges[i].ClearChild()
		}
	}
	t.table.Unlock()
	return true
}

// reportIfDue implements the reporting cadence: shouldStop is consulted
// every 128 playouts, and every 65536 playouts the elapsed-seconds
// watermark is advanced across threads. It prints no info line itself,
// neither on stop nor when the watermark advances.
func (t *Tree) reportIfDue(playouts int64, shouldStop func(int64) bool) bool {
	if playouts%128 != 0 {
		return false
	}
	if shouldStop != nil && shouldStop(playouts) {
		return true
	}
	if playouts%65536 != 0 {
		return false
	}
	elapsed := int64(time.Since(t.startTime).Seconds())
	for {
		old := t.nextInfo.Load()
		if elapsed <= old {
			return false
		}
		if t.nextInfo.CompareAndSwap(old, elapsed) {
			return false
		}
	}
}

// PrincipalVariation walks the root's best-child chain until a null
// child or maxLen is reached.
func (t *Tree) PrincipalVariation(maxLen int) []position.Move {
	var pv []position.Move
	node := t.rootNode
	for len(pv) < maxLen {
		if len(node.Edges) == 0 {
			break
		}
		idx := ChoosePrincipalChild(node.Edges, t.cfg.CvisitsSelection)
		edge := &node.Edges[idx]
		pv = append(pv, edge.Move)

		h, ok := edge.Child()
		if !ok {
			break
		}
		node = t.table.Get(h)
	}
	return pv
}

// Stats snapshots the tree's atomic counters for info-line reporting.
type Stats struct {
	NumNodes int64
	Playouts int64
	MaxDepth int64
	TBHits   int64
}

func (t *Tree) Stats() Stats {
	return Stats{
		NumNodes: t.numNodes.Load(),
		Playouts: t.playouts.Load(),
		MaxDepth: t.maxDepth.Load(),
		TBHits:   t.tbHits.Load(),
	}
}

// RootNode exposes the root for reporting/debugging (e.g. cmd/visualize).
func (t *Tree) RootNode() *Node { return t.rootNode }

// RootState exposes the root position.
func (t *Tree) RootState() *position.State { return t.rootState }
