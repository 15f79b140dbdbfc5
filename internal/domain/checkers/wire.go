package checkers

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Code returns the two-character wire form of p: "", "L", "D", "LK" or "DK".
func (p Piece) Code() string {
	var code string
	switch p.Side {
	case Light:
		code = "L"
	case Dark:
		code = "D"
	default:
		return ""
	}
	if p.Rank == King {
		code += "K"
	}
	return code
}

// ParsePiece decodes a wire cell. "W" and "B" are accepted as aliases for
// light and dark, matching the older browser clients.
func ParsePiece(code string) (Piece, error) {
	if code == "" {
		return Piece{}, nil
	}
	var p Piece
	switch code[0] {
	case 'L', 'W':
		p.Side = Light
	case 'D', 'B':
		p.Side = Dark
	default:
		return Piece{}, fmt.Errorf("%w: cell %q", ErrInvalidBoard, code)
	}
	switch code[1:] {
	case "":
		p.Rank = Man
	case "K":
		p.Rank = King
	default:
		return Piece{}, fmt.Errorf("%w: cell %q", ErrInvalidBoard, code)
	}
	return p, nil
}

func (b Board) Rows() [][]string {
	rows := make([][]string, Size)
	for r := 0; r < Size; r++ {
		rows[r] = make([]string, Size)
		for c := 0; c < Size; c++ {
			rows[r][c] = b[r][c].Code()
		}
	}
	return rows
}

// ParseBoard decodes the row-major wire format. Pieces on non-playable
// cells are rejected.
func ParseBoard(rows [][]string) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("%w: want %d rows, got %d", ErrInvalidBoard, Size, len(rows))
	}
	for r, row := range rows {
		if len(row) != Size {
			return b, fmt.Errorf("%w: row %d has %d cells", ErrInvalidBoard, r, len(row))
		}
		for c, cell := range row {
			p, err := ParsePiece(cell)
			if err != nil {
				return b, err
			}
			sq := Square{Row: r, Col: c}
			if !p.Empty() && !sq.Playable() {
				return b, fmt.Errorf("%w: piece on non-playable cell %s", ErrInvalidBoard, sq)
			}
			b.set(sq, p)
		}
	}
	return b, nil
}

func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Rows())
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	decoded, err := ParseBoard(rows)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

func (b Board) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(b.Rows())
}

func (b *Board) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var rows [][]string
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&rows); err != nil {
		return err
	}
	decoded, err := ParseBoard(rows)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
