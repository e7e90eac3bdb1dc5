package eval

import (
	"strconv"

	"github.com/chewxy/math32"

	"github.com/kestrelchess/puctcore/nnue"
	"github.com/kestrelchess/puctcore/policy"
	"github.com/kestrelchess/puctcore/position"
	"github.com/kestrelchess/puctcore/tablebase"
)

// Evaluator composes the NNUE value network, the policy network, and a
// tablebase oracle into the operations SearchTree.create_node consumes.
type Evaluator struct {
	Weights   *nnue.Weights
	Policy    *policy.Net
	Tablebase tablebase.Prober
}

// New returns an evaluator with the given weights and a no-op tablebase.
func New(weights *nnue.Weights, pol *policy.Net) *Evaluator {
	return &Evaluator{Weights: weights, Policy: pol, Tablebase: tablebase.NoopProber{}}
}

// EvaluateState returns the NNUE value in fixed-point units of
// nnue.Scale, from the side-to-move's perspective, then negated iff the
// side to move is black — so the returned value is always in white's
// convention.
func (e *Evaluator) EvaluateState(st *position.State) int64 {
	pieces := st.Pieces()
	nnuePieces := make([]nnue.Piece, len(pieces))
	for i, p := range pieces {
		nnuePieces[i] = nnue.Piece{Square: p.Square, Role: p.Role, Colour: p.Colour}
	}

	acc := nnue.ComputeFull(e.Weights, nnuePieces)

	sideToMove := 0
	if isBlack(st) {
		sideToMove = 1
	}

	value := int64(acc.Forward(e.Weights, sideToMove))
	if sideToMove == 1 {
		value = -value
	}
	return value
}

func isBlack(st *position.State) bool {
	return position.FoldWB(st.SideToMove(), false, true)
}

// EvaluateStateFlag classifies the position per spec.md §4.4: an empty
// move list means a terminal position (loss if the mover is in check,
// else a draw by stalemate); otherwise the tablebase oracle may classify
// it; otherwise it's a Standard position. The result is always flipped
// into white's perspective.
func (e *Evaluator) EvaluateStateFlag(st *position.State, legalMoves []position.Move) Flag {
	var flag Flag
	switch {
	case len(legalMoves) == 0:
		if st.IsCheck() {
			flag = TerminalLoss
		} else {
			flag = TerminalDraw
		}
	default:
		if wdl, ok := e.Tablebase.Probe(st); ok {
			switch wdl {
			case tablebase.Win:
				flag = TablebaseWin
			case tablebase.Loss:
				flag = TablebaseLoss
			default:
				flag = TablebaseDraw
			}
		} else {
			flag = Standard
		}
	}

	if isBlack(st) {
		return flag.Flip()
	}
	return flag
}

// EvaluatePolicy returns the move-probability distribution over
// legalMoves.
func (e *Evaluator) EvaluatePolicy(st *position.State, legalMoves []position.Move) []float32 {
	return policy.Forward(e.Policy, st, legalMoves)
}

// CentipawnString renders a fixed-point value (units of nnue.Scale) as a
// human-readable "cp N" string for info-line reporting.
func CentipawnString(value int64) string {
	cp := math32.Round(float32(value) / float32(nnue.Scale) * 100)
	return "cp " + strconv.FormatInt(int64(cp), 10)
}
