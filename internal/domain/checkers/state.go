package checkers

import "fmt"

// Rules holds the variant options. The zero value plays with optional jumps.
type Rules struct {
	MandatoryCapture bool
}

// State is the turn-level position: whose move it is and, during a chain
// capture, the square of the piece that has to keep jumping.
type State struct {
	Board Board   `json:"board" bson:"board"`
	Turn  Side    `json:"turn" bson:"turn"`
	Chain *Square `json:"chain,omitempty" bson:"chain,omitempty"`
}

func NewState() State {
	return State{Board: NewBoard(), Turn: Light}
}

// Step reports what a single Advance did.
type Step struct {
	Move           Move
	Captured       bool
	Promoted       bool
	ChainContinues bool
	Terminal       Terminal
}

// MovesFor returns the moves the side to move may play from sq. A square
// that does not hold a piece of st.Turn yields no moves.
func (r Rules) MovesFor(st State, sq Square) ([]Move, error) {
	moves, err := LegalMoves(st.Board, sq)
	if err != nil {
		return nil, err
	}
	if st.Board.At(sq).Side != st.Turn {
		return nil, nil
	}
	if st.Chain != nil {
		if *st.Chain != sq {
			return nil, nil
		}
		return jumpsOnly(moves), nil
	}
	if r.MandatoryCapture && r.sideCanJump(st.Board, st.Turn) {
		return jumpsOnly(moves), nil
	}
	return moves, nil
}

// Moves lists every move available to the side to move.
func (r Rules) Moves(st State) []Move {
	var all []Move
	for _, sq := range st.Board.Squares(st.Turn) {
		moves, err := r.MovesFor(st, sq)
		if err != nil {
			continue
		}
		all = append(all, moves...)
	}
	return all
}

func (r Rules) sideCanJump(b Board, side Side) bool {
	for _, sq := range b.Squares(side) {
		if HasFurtherJumps(b, sq) {
			return true
		}
	}
	return false
}

// Advance plays from->to for the side to move. After a jump that leaves
// further jumps for the same piece the turn is kept and Chain is set;
// otherwise the turn passes and the terminal state of the new side to move
// is evaluated.
func (r Rules) Advance(st State, from, to Square) (State, Step, error) {
	if !from.OnBoard() || !to.OnBoard() {
		return st, Step{}, fmt.Errorf("%w: %s -> %s", ErrInvalidCoordinate, from, to)
	}
	p := st.Board.At(from)
	if p.Empty() {
		return st, Step{}, fmt.Errorf("%w: %s", ErrEmptySquare, from)
	}
	if p.Side != st.Turn {
		return st, Step{}, fmt.Errorf("%w: %s holds a %s piece, %s to move", ErrWrongSide, from, p.Side, st.Turn)
	}

	moves, err := r.MovesFor(st, from)
	if err != nil {
		return st, Step{}, err
	}
	move, ok := findMove(moves, to)
	if !ok {
		return st, Step{}, fmt.Errorf("%w: %s -> %s", ErrIllegalMove, from, to)
	}

	res, err := ApplyMove(st.Board, move)
	if err != nil {
		return st, Step{}, err
	}

	next := State{Board: res.Board, Turn: st.Turn}
	step := Step{Move: move, Captured: res.Captured, Promoted: res.Promoted}
	if res.Captured && HasFurtherJumps(res.Board, move.To) {
		chain := move.To
		next.Chain = &chain
		step.ChainContinues = true
		return next, step, nil
	}

	next.Turn = st.Turn.Opponent()
	step.Terminal = TerminalState(next.Board, next.Turn)
	return next, step, nil
}

func findMove(moves []Move, to Square) (Move, bool) {
	for _, m := range moves {
		if m.To == to {
			return m, true
		}
	}
	return Move{}, false
}
