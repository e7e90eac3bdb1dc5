package policy

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/kestrelchess/puctcore/position"
)

func zeroNet() *Net {
	rows := make([][]float32, Slots)
	for i := range rows {
		rows[i] = make([]float32, position.FeatureCount)
	}
	return &Net{Weights: rows}
}

func TestForwardEmptyMoves(t *testing.T) {
	st := position.New()
	out := Forward(zeroNet(), st, nil)
	if len(out) != 0 {
		t.Fatalf("expected empty distribution for no legal moves")
	}
}

func TestForwardZeroNetIsUniform(t *testing.T) {
	st := position.New()
	moves := st.AvailableMoves()

	out := Forward(zeroNet(), st, moves)
	if len(out) != len(moves) {
		t.Fatalf("expected one probability per legal move, got %d for %d moves", len(out), len(moves))
	}

	want := float32(1) / float32(len(moves))
	for _, p := range out {
		if math32.Abs(p-want) > 1e-5 {
			t.Fatalf("expected uniform distribution %v, got %v", want, p)
		}
	}
}

func TestForwardSumsToOne(t *testing.T) {
	st := position.New()
	moves := st.AvailableMoves()
	net := zeroNet()
	// bias the e2e4 slot (pawn to e4: 28*6+0) on the white-pawn-e2 feature
	// (index 12), both active at the start, so the distribution is
	// non-uniform.
	net.Weights[28*6][12] = 5

	out := Forward(net, st, moves)
	var sum float32
	for _, p := range out {
		sum += p
	}
	if math32.Abs(sum-1) > 1e-5 {
		t.Fatalf("policy distribution summed to %v, want ~1", sum)
	}
}
