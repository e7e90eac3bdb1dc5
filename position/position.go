// Package position adapts github.com/notnil/chess to the narrow State
// contract the search core consumes. Move generation, legality, and board
// mechanics all live inside notnil/chess; this package only bookkeeps what
// the search needs on top of it (feature indices, repetition tracking,
// policy-index mapping) and is treated as an external black box by every
// other package in this module.
package position

import (
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// FeatureCount is the size of the flat piece-placement feature vector
// consumed by the policy network (see package policy) and shared with the
// classical feature sweep the NNUE accumulator also walks.
const FeatureCount = 384 * 2 // 64 squares * 6 roles * 2 colours

// Move is the opaque move token the search tree stores on edges.
type Move = *chess.Move

// State wraps a notnil/chess game and adds the bookkeeping the MCTS search
// needs: a halfmove clock (derived from FEN, since notnil/chess does not
// expose it directly) and a repetition-count used only to short-circuit
// playouts into the draw sentinel, not to adjudicate actual game results.
type State struct {
	game     *chess.Game
	halfmove int
	hashes   map[[16]byte]int
}

// New returns the state for the standard starting position.
func New() *State {
	g := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	s := &State{game: g, hashes: map[[16]byte]int{}}
	s.hashes[g.Position().Hash()] = 1
	return s
}

// FromFEN returns the state for the given FEN string.
func FromFEN(fen string) (*State, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, err
	}
	g := chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))
	s := &State{game: g, halfmove: parseHalfmoveClock(fen), hashes: map[[16]byte]int{}}
	s.hashes[g.Position().Hash()] = 1
	return s
}

func parseHalfmoveClock(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 5 {
		return 0
	}
	n, err := strconv.Atoi(fields[4])
	if err != nil {
		return 0
	}
	return n
}

// Clone deep-copies the state so a playout can mutate it freely.
func (s *State) Clone() *State {
	hashes := make(map[[16]byte]int, len(s.hashes))
	for k, v := range s.hashes {
		hashes[k] = v
	}
	return &State{
		game:     s.game.Clone(),
		halfmove: s.halfmove,
		hashes:   hashes,
	}
}

// AvailableMoves returns the ordered list of legal moves from this state.
func (s *State) AvailableMoves() []Move {
	return s.game.ValidMoves()
}

// MakeMove mutates the state by applying m, maintaining the halfmove clock
// and the repetition hash history.
func (s *State) MakeMove(m Move) {
	board := s.game.Position().Board()
	mover := board.Piece(m.S1())
	isPawnOrCapture := mover.Type() == chess.Pawn || m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)

	if err := s.game.Move(m); err != nil {
		panic(err)
	}

	if isPawnOrCapture {
		s.halfmove = 0
	} else {
		s.halfmove++
	}

	h := s.game.Position().Hash()
	s.hashes[h]++
}

// SideToMove returns the colour to move.
func (s *State) SideToMove() chess.Color {
	return s.game.Position().Turn()
}

// FoldWB returns a if white is to move, else b. Mirrors the spec's
// `fold_wb` perspective-selection helper.
func FoldWB[T any](c chess.Color, a, b T) T {
	if c == chess.White {
		return a
	}
	return b
}

// Hash returns the Zobrist-style position key, including castling rights,
// en passant square, and side to move (notnil/chess folds all of these
// into Position.Hash()).
func (s *State) Hash() [16]byte {
	return s.game.Position().Hash()
}

// IsRepetition reports whether the current position has already been seen
// earlier along this playout's path. Used only to short-circuit descent
// into the draw sentinel (spec.md §4.7/§9) — this is deliberately looser
// than the three-fold rule used to adjudicate real games.
func (s *State) IsRepetition() bool {
	return s.hashes[s.game.Position().Hash()] > 1
}

// DrawnByFiftyMoveRule reports whether the 50-move rule has been reached.
func (s *State) DrawnByFiftyMoveRule() bool {
	return s.halfmove >= 100
}

// HalfmoveCounter returns the halfmove clock (moves since the last pawn
// push or capture).
func (s *State) HalfmoveCounter() int {
	return s.halfmove
}

// IsCheck reports whether the side to move is checkmated in this
// position. eval.Evaluator.EvaluateStateFlag only calls this once
// AvailableMoves is already empty, to tell checkmate (TerminalLoss) apart
// from stalemate (TerminalDraw), so that is the only distinction this
// needs to make. It queries the current position directly via
// notnil/chess's own Status, the same way the teacher's Agent.Close
// defers to the library's own end-of-game classification rather than
// inspecting move history — so it is correct for states built via
// FromFEN, which start with no move history at all.
func (s *State) IsCheck() bool {
	return s.game.Position().Status() == chess.Checkmate
}

// IsInsufficientMaterial reports whether neither side has enough material
// to deliver checkmate.
func (s *State) IsInsufficientMaterial() bool {
	for _, m := range s.game.EligibleDraws() {
		if m == chess.InsufficientMaterial {
			return true
		}
	}
	return false
}

// FeaturesMap invokes cb once per occupied square with that piece's active
// feature index in [0, FeatureCount).
func (s *State) FeaturesMap(cb func(idx int)) {
	board := s.game.Position().Board()
	for sq, p := range board.SquareMap() {
		if p == chess.NoPiece {
			continue
		}
		cb(featureIndex(sq, p.Type(), p.Color()))
	}
}

// PieceInfo is a (square, role, colour) triple describing one occupied
// square, with role in [0,6) (pawn..king) and colour 0 for white / 1 for
// black — the shape the NNUE accumulator rebuilds itself from.
type PieceInfo struct {
	Square int
	Role   int
	Colour int
}

// Pieces enumerates every occupied square on the board.
func (s *State) Pieces() []PieceInfo {
	board := s.game.Position().Board()
	sm := board.SquareMap()
	out := make([]PieceInfo, 0, len(sm))
	for sq, p := range sm {
		if p == chess.NoPiece {
			continue
		}
		colour := 0
		if p.Color() == chess.Black {
			colour = 1
		}
		out = append(out, PieceInfo{Square: int(sq), Role: roleIndex(p.Type()), Colour: colour})
	}
	return out
}

func featureIndex(sq chess.Square, role chess.PieceType, colour chess.Color) int {
	const pieceStride = 64
	const colourStride = pieceStride * 6
	r := roleIndex(role)
	c := 0
	if colour == chess.Black {
		c = 1
	}
	return c*colourStride + r*pieceStride + int(sq)
}

func roleIndex(role chess.PieceType) int {
	switch role {
	case chess.Pawn:
		return 0
	case chess.Knight:
		return 1
	case chess.Bishop:
		return 2
	case chess.Rook:
		return 3
	case chess.Queen:
		return 4
	case chess.King:
		return 5
	default:
		return 0
	}
}

// MirrorVertical flips a square's rank: the same mapping package nnue
// applies (with its own copy) to build black-perspective indices.
func MirrorVertical(sq chess.Square) chess.Square {
	file := int(sq) % 8
	rank := int(sq) / 8
	return chess.Square((7-rank)*8 + file)
}

// RoleIndex exposes the piece-role-to-[0,6) mapping used both by the
// feature indexer and by the NNUE accumulator's own indexer.
func RoleIndex(role chess.PieceType) int { return roleIndex(role) }

// MoveToIndex maps a legal move to a policy-network output slot in
// [0, 384). The mapping itself is a utility contract (spec.md §1), and
// implementations are not expected to agree on its exact shape. This one
// keys off the destination square and the moved piece's role only, so it
// is deterministic but not one-to-one: legal moves of the same role to the
// same square (for example the promotions of one pawn) share a slot.
func (s *State) MoveToIndex(m Move) int {
	role := s.game.Position().Board().Piece(m.S1()).Type()
	return int(m.S2())*6 + roleIndex(role)
}

// Our returns the squares occupied by our pieces of the given role, from
// the side-to-move's perspective.
func (s *State) Our(role chess.PieceType) []chess.Square {
	return s.squaresOf(role, s.SideToMove())
}

// Their returns the squares occupied by the opponent's pieces of the given
// role.
func (s *State) Their(role chess.PieceType) []chess.Square {
	return s.squaresOf(role, s.SideToMove().Other())
}

func (s *State) squaresOf(role chess.PieceType, colour chess.Color) []chess.Square {
	board := s.game.Position().Board()
	var out []chess.Square
	for sq, p := range board.SquareMap() {
		if p.Type() == role && p.Color() == colour {
			out = append(out, sq)
		}
	}
	return out
}

// String renders the board for debugging.
func (s *State) String() string {
	return s.game.Position().Board().Draw()
}
