package eval

import (
	"testing"

	"github.com/kestrelchess/puctcore/nnue"
	"github.com/kestrelchess/puctcore/policy"
	"github.com/kestrelchess/puctcore/position"
)

func zeroEvaluator() *Evaluator {
	w := &nnue.Weights{
		FeatureWeights: make([]int16, nnue.InputFeatures*nnue.L1),
		FeatureBias:    make([]int16, nnue.L1),
		OutputWeights:  make([]int16, 2*nnue.L1),
		OutputBias:     0,
	}
	rows := make([][]float32, policy.Slots)
	for i := range rows {
		rows[i] = make([]float32, position.FeatureCount)
	}
	return New(w, &policy.Net{Weights: rows})
}

func TestEvaluateStateZeroWeightsIsZero(t *testing.T) {
	e := zeroEvaluator()
	st := position.New()
	if got := e.EvaluateState(st); got != 0 {
		t.Fatalf("zero-weight network should score 0, got %d", got)
	}
}

func TestEvaluateStateFlagStandardAtStart(t *testing.T) {
	e := zeroEvaluator()
	st := position.New()
	moves := st.AvailableMoves()
	if flag := e.EvaluateStateFlag(st, moves); flag != Standard {
		t.Fatalf("expected Standard at the starting position, got %v", flag)
	}
}

func TestEvaluateStateFlagFoolsMate(t *testing.T) {
	e := zeroEvaluator()
	// Fool's mate: 1. f3 e5 2. g4 Qh4#, white to move and checkmated.
	st, err := position.FromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}

	moves := st.AvailableMoves()
	if len(moves) != 0 {
		t.Fatalf("expected checkmate to have no legal moves, got %d", len(moves))
	}

	flag := e.EvaluateStateFlag(st, moves)
	if flag != TerminalLoss {
		t.Fatalf("expected TerminalLoss for the checkmated side, got %v", flag)
	}
}
