// Command bench drives a fixed-node search from a FEN and prints the
// resulting statistics and principal variation. It is a smoke-test and
// profiling tool, not a UCI frontend.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/kestrelchess/puctcore/arena"
	"github.com/kestrelchess/puctcore/eval"
	"github.com/kestrelchess/puctcore/mcts"
	"github.com/kestrelchess/puctcore/nnue"
	"github.com/kestrelchess/puctcore/policy"
	"github.com/kestrelchess/puctcore/position"
)

func main() {
	fen := flag.String("fen", "", "FEN to search from (default: starting position)")
	playouts := flag.Int("playouts", 10000, "fixed number of playouts to run")
	weightsDir := flag.String("weights", "weights", "directory holding the NNUE weight files")
	policyPath := flag.String("policy", "weights/policy_weights.bin", "path to the policy network weight file")
	nodeCap := flag.Int("nodes", 1<<20, "transposition table node capacity per generation")
	edgeCap := flag.Int("edges", 1<<22, "transposition table edge capacity per generation")
	flag.Parse()

	var st *position.State
	var err error
	if *fen == "" {
		st = position.New()
	} else {
		st, err = position.FromFEN(*fen)
		if err != nil {
			log.Fatalf("bench: parsing FEN: %v", err)
		}
	}

	weights, err := nnue.LoadWeights(*weightsDir)
	if err != nil {
		log.Fatalf("bench: loading NNUE weights: %v", err)
	}
	pol, err := policy.Load(*policyPath)
	if err != nil {
		log.Fatalf("bench: loading policy weights: %v", err)
	}
	evaluator := eval.New(weights, pol)

	table := arena.NewLRTable[mcts.Node, *mcts.Node, mcts.Edge](*nodeCap, *edgeCap)
	tree := mcts.New(st, mcts.DefaultConfig(), evaluator, table)

	for i := 0; i < *playouts; i++ {
		if !tree.Playout(nil) {
			break
		}
	}

	stats := tree.Stats()
	pv := tree.PrincipalVariation(10)
	fmt.Printf("playouts=%d nodes=%d max_depth=%d tb_hits=%d\n",
		stats.Playouts, stats.NumNodes, stats.MaxDepth, stats.TBHits)
	fmt.Print("pv:")
	for _, m := range pv {
		fmt.Printf(" %v", m)
	}
	fmt.Println()
}
