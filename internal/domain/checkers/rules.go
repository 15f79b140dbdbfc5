package checkers

import "fmt"

type Move struct {
	From     Square  `json:"from" bson:"from"`
	To       Square  `json:"to" bson:"to"`
	IsJump   bool    `json:"is_jump" bson:"is_jump"`
	Captured *Square `json:"captured,omitempty" bson:"captured,omitempty"`
}

// Result is the outcome of ApplyMove.
type Result struct {
	Board    Board
	Captured bool
	Promoted bool
}

// Terminal describes whether the side to move has lost.
type Terminal struct {
	Over   bool `json:"over"`
	Winner Side `json:"winner,omitempty"`
}

// scan order for move generation
var directions = [4][2]int{{1, -1}, {1, 1}, {-1, -1}, {-1, 1}}

func directionsFor(p Piece) [][2]int {
	if p.Rank == King {
		return directions[:]
	}
	out := make([][2]int, 0, 2)
	for _, d := range directions {
		if d[0] == p.Side.forward() {
			out = append(out, d)
		}
	}
	return out
}

// LegalMoves returns the simple moves and jumps available to the piece on
// from. Whose turn it is is not checked here.
func LegalMoves(b Board, from Square) ([]Move, error) {
	if !from.OnBoard() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCoordinate, from)
	}
	p := b.At(from)
	if p.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptySquare, from)
	}

	moves := make([]Move, 0, 4)
	for _, d := range directionsFor(p) {
		step := from.Offset(d[0], d[1])
		if !step.OnBoard() {
			continue
		}
		neighbour := b.At(step)
		if neighbour.Empty() {
			moves = append(moves, Move{From: from, To: step})
			continue
		}
		if neighbour.Side == p.Side {
			continue
		}
		landing := step.Offset(d[0], d[1])
		if landing.OnBoard() && b.At(landing).Empty() {
			captured := step
			moves = append(moves, Move{From: from, To: landing, IsJump: true, Captured: &captured})
		}
	}
	return moves, nil
}

// ApplyMove moves the piece and returns the new board; b is not modified.
// Legality is the caller's responsibility: pass only moves produced by
// LegalMoves.
func ApplyMove(b Board, m Move) (Result, error) {
	if !m.From.OnBoard() || !m.To.OnBoard() {
		return Result{}, fmt.Errorf("%w: %s -> %s", ErrInvalidCoordinate, m.From, m.To)
	}
	p := b.At(m.From)
	if p.Empty() {
		return Result{}, fmt.Errorf("%w: %s", ErrEmptySquare, m.From)
	}
	if !b.At(m.To).Empty() {
		return Result{}, fmt.Errorf("%w: %s", ErrOccupied, m.To)
	}

	res := Result{Board: b}
	res.Board.set(m.From, Piece{})
	if m.IsJump && m.Captured != nil {
		if !m.Captured.OnBoard() {
			return Result{}, fmt.Errorf("%w: captured %s", ErrInvalidCoordinate, *m.Captured)
		}
		res.Board.set(*m.Captured, Piece{})
		res.Captured = true
	}
	if p.Rank == Man && m.To.Row == p.Side.crownRow() {
		p.Rank = King
		res.Promoted = true
	}
	res.Board.set(m.To, p)
	return res, nil
}

func HasFurtherJumps(b Board, sq Square) bool {
	moves, err := LegalMoves(b, sq)
	if err != nil {
		return false
	}
	return containsJump(moves)
}

// TerminalState reports a loss for side when it has no pieces left or none
// of its pieces can move.
func TerminalState(b Board, side Side) Terminal {
	for _, sq := range b.Squares(side) {
		moves, err := LegalMoves(b, sq)
		if err == nil && len(moves) > 0 {
			return Terminal{}
		}
	}
	return Terminal{Over: true, Winner: side.Opponent()}
}

func containsJump(moves []Move) bool {
	for _, m := range moves {
		if m.IsJump {
			return true
		}
	}
	return false
}

func jumpsOnly(moves []Move) []Move {
	out := moves[:0:0]
	for _, m := range moves {
		if m.IsJump {
			out = append(out, m)
		}
	}
	return out
}
