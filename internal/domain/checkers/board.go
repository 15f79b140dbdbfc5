package checkers

import (
	"errors"
	"fmt"
)

// Size is the length of a board edge.
const Size = 8

var (
	ErrInvalidCoordinate = errors.New("coordinate is off the board")
	ErrEmptySquare       = errors.New("no piece on square")
	ErrOccupied          = errors.New("destination square is occupied")
	ErrWrongSide         = errors.New("piece does not belong to the side to move")
	ErrIllegalMove       = errors.New("move is not legal")
	ErrInvalidBoard      = errors.New("invalid board encoding")
)

// Side identifies a player's pieces.
type Side string

const (
	NoSide Side = ""
	Light  Side = "light"
	Dark   Side = "dark"
)

func (s Side) Valid() bool {
	return s == Light || s == Dark
}

func (s Side) Opponent() Side {
	switch s {
	case Light:
		return Dark
	case Dark:
		return Light
	}
	return NoSide
}

// Light men advance toward row 7, dark men toward row 0.
func (s Side) forward() int {
	if s == Light {
		return 1
	}
	return -1
}

func (s Side) crownRow() int {
	if s == Light {
		return Size - 1
	}
	return 0
}

type Rank uint8

const (
	Man Rank = iota
	King
)

// Piece is the content of a cell. The zero value is an empty cell.
type Piece struct {
	Side Side
	Rank Rank
}

func (p Piece) Empty() bool {
	return p.Side == NoSide
}

type Square struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

func (s Square) OnBoard() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// Playable reports whether s is one of the 32 dark squares.
func (s Square) Playable() bool {
	return s.OnBoard() && (s.Row+s.Col)%2 == 1
}

func (s Square) Offset(dr, dc int) Square {
	return Square{Row: s.Row + dr, Col: s.Col + dc}
}

func (s Square) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// Number returns the 1..32 notation number of a playable square, counted
// row-major from row 0, or 0 for any other square.
func (s Square) Number() int {
	if !s.Playable() {
		return 0
	}
	return s.Row*(Size/2) + s.Col/2 + 1
}

func SquareFromNumber(n int) (Square, error) {
	if n < 1 || n > Size*Size/2 {
		return Square{}, fmt.Errorf("%w: square %d", ErrInvalidCoordinate, n)
	}
	n--
	row := n / (Size / 2)
	col := (n % (Size / 2)) * 2
	if row%2 == 0 {
		col++
	}
	return Square{Row: row, Col: col}, nil
}

// Board is an 8x8 grid indexed [row][col]. It is a value type: assigning or
// passing a Board copies it.
type Board [Size][Size]Piece

// NewBoard returns the standard starting layout: light men on rows 0-2,
// dark men on rows 5-7.
func NewBoard() Board {
	var b Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			sq := Square{Row: r, Col: c}
			if !sq.Playable() {
				continue
			}
			switch {
			case r < 3:
				b[r][c] = Piece{Side: Light, Rank: Man}
			case r > 4:
				b[r][c] = Piece{Side: Dark, Rank: Man}
			}
		}
	}
	return b
}

// At returns the piece on sq, or an empty piece when sq is off the board.
func (b Board) At(sq Square) Piece {
	if !sq.OnBoard() {
		return Piece{}
	}
	return b[sq.Row][sq.Col]
}

func (b *Board) set(sq Square, p Piece) {
	b[sq.Row][sq.Col] = p
}

// Squares lists the squares occupied by side in row-major order.
func (b Board) Squares(side Side) []Square {
	var out []Square
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c].Side == side {
				out = append(out, Square{Row: r, Col: c})
			}
		}
	}
	return out
}

func (b Board) Count(side Side) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c].Side == side {
				n++
			}
		}
	}
	return n
}
