// Package puctcore glues the search core (package mcts) to a long-lived
// transposition table and a worker pool, the way agogo.go wires MCTS to
// an Agent in the teacher repo.
package puctcore

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/kestrelchess/puctcore/arena"
	"github.com/kestrelchess/puctcore/eval"
	"github.com/kestrelchess/puctcore/mcts"
	"github.com/kestrelchess/puctcore/position"
)

// Options holds the engine's tunables (spec.md §6).
type Options struct {
	Cpuct            float32
	CvisitsSelection float32
	RootNoiseAlpha   float64
	RootNoiseEpsilon float64

	// NumWorkers is the number of goroutines driving Tree.Playout
	// concurrently. Defaults to runtime.GOMAXPROCS(0), matching both
	// example engines.
	NumWorkers int

	// ArenaNodeCapacity/ArenaEdgeCapacity size each of the shared
	// table's two generations.
	ArenaNodeCapacity int
	ArenaEdgeCapacity int
}

// DefaultOptions mirrors mcts.DefaultConfig plus a GOMAXPROCS-sized
// worker pool and a modest arena budget.
func DefaultOptions() Options {
	cfg := mcts.DefaultConfig()
	return Options{
		Cpuct:             cfg.Cpuct,
		CvisitsSelection:  cfg.CvisitsSelection,
		RootNoiseAlpha:    cfg.RootNoiseAlpha,
		RootNoiseEpsilon:  cfg.RootNoiseEpsilon,
		NumWorkers:        runtime.GOMAXPROCS(0),
		ArenaNodeCapacity: 1 << 20,
		ArenaEdgeCapacity: 1 << 22,
	}
}

func (o Options) treeConfig() mcts.Config {
	return mcts.Config{
		Cpuct:            o.Cpuct,
		CvisitsSelection: o.CvisitsSelection,
		RootNoiseAlpha:   o.RootNoiseAlpha,
		RootNoiseEpsilon: o.RootNoiseEpsilon,
	}
}

// Info is one snapshot of search progress, handed to the caller's info
// callback (spec.md §6's "one UCI-style info line").
type Info struct {
	Playouts int64
	NumNodes int64
	MaxDepth int64
	TBHits   int64
	Elapsed  time.Duration
	ScoreCP  string
	PV       []position.Move
}

// Engine owns the shared transposition table across a game and drives
// searches over it. It is not safe for concurrent Search calls against
// the same Engine; sequential moves of one game only.
type Engine struct {
	evaluator *eval.Evaluator
	table     *arena.LRTable[mcts.Node, *mcts.Node, mcts.Edge]
	opts      Options

	buf    bytes.Buffer
	logger *log.Logger
}

// New builds an Engine with its own shared two-generation table, sized
// per opts.
func New(evaluator *eval.Evaluator, opts Options) *Engine {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = runtime.GOMAXPROCS(0)
	}
	e := &Engine{
		evaluator: evaluator,
		table:     arena.NewLRTable[mcts.Node, *mcts.Node, mcts.Edge](opts.ArenaNodeCapacity, opts.ArenaEdgeCapacity),
		opts:      opts,
	}
	e.logger = log.New(&e.buf, "", log.Ltime)
	return e
}

// Log drains and returns everything printed to the engine's internal
// logger since the last call, the teacher's log.New(&buf, ...) pattern
// (arena.go) used so info-line emission is swappable/testable without
// capturing stdout.
func (e *Engine) Log() string {
	s := e.buf.String()
	e.buf.Reset()
	return s
}

// Search runs playouts against state for up to moveTime (or until ctx
// is cancelled, whichever comes first), fanning out opts.NumWorkers
// goroutines over Tree.Playout, and returns the best move found.
// infoFn, if non-nil, is called once with a final snapshot after the
// workers have stopped; no snapshots are delivered while the search runs.
func (e *Engine) Search(ctx context.Context, state *position.State, moveTime time.Duration, infoFn func(Info)) (position.Move, error) {
	e.table.FlipTables()

	tree := mcts.New(state, e.opts.treeConfig(), e.evaluator, e.table)
	start := time.Now()

	searchCtx, cancel := context.WithTimeout(ctx, moveTime)
	defer cancel()

	var stopped atomic.Bool
	shouldStop := func(int64) bool {
		select {
		case <-searchCtx.Done():
			stopped.Store(true)
			return true
		default:
			return false
		}
	}

	var wg sync.WaitGroup
	wg.Add(e.opts.NumWorkers)
	for i := 0; i < e.opts.NumWorkers; i++ {
		go func() {
			defer wg.Done()
			for !stopped.Load() {
				if !tree.Playout(shouldStop) {
					return
				}
			}
		}()
	}

	<-searchCtx.Done()
	wg.Wait()

	stats := tree.Stats()
	pv := tree.PrincipalVariation(1)
	if infoFn != nil {
		infoFn(Info{
			Playouts: stats.Playouts,
			NumNodes: stats.NumNodes,
			MaxDepth: stats.MaxDepth,
			TBHits:   stats.TBHits,
			Elapsed:  time.Since(start),
			ScoreCP:  eval.CentipawnString(rootScore(tree)),
			PV:       tree.PrincipalVariation(5),
		})
	}
	e.logger.Printf("playouts=%d nodes=%d max_depth=%d tb_hits=%d elapsed=%s",
		stats.Playouts, stats.NumNodes, stats.MaxDepth, stats.TBHits, time.Since(start))

	if len(pv) == 0 {
		return nil, fmt.Errorf("puctcore: no legal moves from the given position")
	}
	return pv[0], nil
}

// rootScore reports the root's best edge's raw average evaluation, in
// fixed-point units of nnue.Scale, for info-line display.
func rootScore(tree *mcts.Tree) int64 {
	edges := tree.RootNode().Edges
	if len(edges) == 0 {
		return 0
	}
	best := mcts.ChoosePrincipalChild(edges, 0)
	return int64(edges[best].AverageRaw(0))
}

// Close tears down any closable resources the engine owns (currently
// the tablebase prober, if it implements io.Closer), aggregating every
// teardown error via multierror rather than stopping at the first one
// — grounded on the teacher's Agent.Close.
func (e *Engine) Close() error {
	var errs error
	if closer, ok := e.evaluator.Tablebase.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}
