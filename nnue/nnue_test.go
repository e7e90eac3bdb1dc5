package nnue

import "testing"

func constWeights(featureW, outputW, bias, outBias int16) *Weights {
	fw := make([]int16, InputFeatures*L1)
	for i := range fw {
		fw[i] = featureW
	}
	ow := make([]int16, 2*L1)
	for i := range ow {
		ow[i] = outputW
	}
	fb := make([]int16, L1)
	for i := range fb {
		fb[i] = bias
	}
	return &Weights{
		FeatureWeights: fw,
		FeatureBias:    fb,
		OutputWeights:  ow,
		OutputBias:     outBias,
	}
}

func TestForwardNoPiecesUsesBiasOnly(t *testing.T) {
	w := constWeights(0, 1, 10, 0)
	acc := ComputeFull(w, nil)

	for _, v := range acc.White {
		if v != 10 {
			t.Fatalf("expected accumulator initialized to bias 10, got %d", v)
		}
	}

	got := acc.Forward(w, 0)
	// screlu(10) = 100, summed over L1 units for both perspectives (each
	// weighted by 1), divided by QA, plus bias 0, scaled, divided by QAB.
	want := int32((int64(100*L1*2) / QA) * Scale / QAB)
	if got != want {
		t.Fatalf("forward() = %d, want %d", got, want)
	}
}

func TestMirrorSymmetryPreservesSideToMoveScore(t *testing.T) {
	w := constWeights(3, 5, 2, 7)

	start := []Piece{
		{Square: 0, Role: 3, Colour: 0},  // white rook a1
		{Square: 4, Role: 5, Colour: 0},  // white king e1
		{Square: 60, Role: 5, Colour: 1}, // black king e8
		{Square: 56, Role: 3, Colour: 1}, // black rook a8
		{Square: 12, Role: 0, Colour: 0}, // white pawn e2
		{Square: 52, Role: 0, Colour: 1}, // black pawn e7
	}

	mirrored := make([]Piece, len(start))
	for i, p := range start {
		mirrored[i] = Piece{
			Square: mirrorVertical(p.Square),
			Role:   p.Role,
			Colour: 1 - p.Colour,
		}
	}

	accStart := ComputeFull(w, start)
	accMirror := ComputeFull(w, mirrored)

	got := accStart.Forward(w, 0)
	mirroredScore := accMirror.Forward(w, 1)

	if got != mirroredScore {
		t.Fatalf("mirroring the board should reproduce the same side-to-move-perspective score: %d vs %d", got, mirroredScore)
	}
}

func TestMirrorVerticalInvolution(t *testing.T) {
	for sq := 0; sq < 64; sq++ {
		if mirrorVertical(mirrorVertical(sq)) != sq {
			t.Fatalf("mirror_vertical is not an involution at square %d", sq)
		}
	}
}
