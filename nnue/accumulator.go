package nnue

// Accumulator holds the two perspective vectors (white, black), each
// initialized to feature_bias and then accreted with one row of
// feature_weights per occupied square. It is rebuilt from scratch for
// every leaf evaluation; there is no incremental update path.
type Accumulator struct {
	White [L1]int16
	Black [L1]int16
}

// mirrorVertical flips a square's rank, per spec.md §4.2's black_idx
// formula.
func mirrorVertical(sq int) int {
	file := sq % 8
	rank := sq / 8
	return (7-rank)*8 + file
}

// ComputeFull rebuilds the accumulator from scratch for the given piece
// list, a slice of (square, role, colour) triples with role in [0,6) and
// colour 0 for white / 1 for black.
func ComputeFull(w *Weights, pieces []Piece) *Accumulator {
	acc := &Accumulator{}
	copy(acc.White[:], w.FeatureBias)
	copy(acc.Black[:], w.FeatureBias)

	for _, p := range pieces {
		whiteIdx, blackIdx := whiteBlackIndex(p.Square, p.Role, p.Colour)
		addRow(acc.White[:], w.FeatureWeights, whiteIdx)
		addRow(acc.Black[:], w.FeatureWeights, blackIdx)
	}
	return acc
}

func whiteBlackIndex(sq, role, colour int) (int, int) {
	whiteIdx := colour*384 + role*64 + sq
	blackIdx := (1-colour)*384 + role*64 + mirrorVertical(sq)
	return whiteIdx, blackIdx
}

func addRow(dst []int16, weights []int16, idx int) {
	base := idx * L1
	row := weights[base : base+L1]
	for i := range dst {
		dst[i] += row[i]
	}
}

// Piece is a minimal (square, role, colour) triple used to rebuild an
// accumulator without depending on package position's full State.
type Piece struct {
	Square int // 0..63
	Role   int // 0..5, pawn..king
	Colour int // 0 = white, 1 = black
}

func screlu(x int16) int32 {
	v := int32(x)
	if v < clampMin {
		v = clampMin
	}
	if v > clampMax {
		v = clampMax
	}
	return v * v
}

// Forward evaluates the network from the given side to move (0 = white,
// 1 = black), returning a signed centipawn-like score from the
// side-to-move's perspective.
func (acc *Accumulator) Forward(w *Weights, sideToMove int) int32 {
	us, them := &acc.White, &acc.Black
	if sideToMove == 1 {
		us, them = &acc.Black, &acc.White
	}

	var sum int64
	wUs := w.OutputWeights[:L1]
	wThem := w.OutputWeights[L1:]
	for i := 0; i < L1; i++ {
		sum += int64(screlu(us[i])) * int64(wUs[i])
		sum += int64(screlu(them[i])) * int64(wThem[i])
	}

	sum /= QA
	sum += int64(w.OutputBias)
	sum *= Scale
	sum /= QAB
	return int32(sum)
}
