package pdn

import (
	"strconv"
	"strings"
)

// Game is one PDN record: header tags followed by the half-moves.
type Game struct {
	Tags   []Tag
	Moves  []Move
	Result string
}

// Tag is a header pair, written as [Name "Value"].
type Tag struct {
	Name  string
	Value string
}

// Move is a half-move given as the path of square numbers it visits.
// Captures are joined with "x", quiet moves with "-".
type Move struct {
	Path    []int
	Capture bool
}

// Black moves first and starts on squares 1-12.
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultUnknown   = "*"
)

func (m Move) String() string {
	sep := "-"
	if m.Capture {
		sep = "x"
	}
	parts := make([]string, len(m.Path))
	for i, n := range m.Path {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, sep)
}

// Tag values may not contain quotes or backslashes.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
