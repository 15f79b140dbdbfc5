package match

import (
	"fmt"
	"time"

	"checkers_exe/internal/domain/checkers"
	"checkers_exe/internal/statuses"
)

// Finish reasons recorded on a finished match.
const (
	ReasonNoMoves  = "no_moves"
	ReasonResigned = "resigned"
)

type Player struct {
	Identity string        `json:"identity" bson:"identity"`
	Side     checkers.Side `json:"side" bson:"side"`
	JoinedAt time.Time     `json:"joined_at" bson:"joined_at"`
}

// MoveRecord is one applied step. A chain capture produces one record per
// jump, all with the same side.
type MoveRecord struct {
	Ply            int              `json:"ply" bson:"ply"`
	Side           checkers.Side    `json:"side" bson:"side"`
	By             string           `json:"by" bson:"by"`
	From           checkers.Square  `json:"from" bson:"from"`
	To             checkers.Square  `json:"to" bson:"to"`
	Captured       *checkers.Square `json:"captured,omitempty" bson:"captured,omitempty"`
	Promoted       bool             `json:"promoted" bson:"promoted"`
	ChainContinues bool             `json:"chain_continues" bson:"chain_continues"`
	At             time.Time        `json:"at" bson:"at"`
}

type Match struct {
	ID           string               `json:"id" bson:"_id"`
	Code         string               `json:"code" bson:"code"` // короткий код для подключения
	Players      []Player             `json:"players" bson:"players"`
	Board        checkers.Board       `json:"board" bson:"board"`
	Turn         checkers.Side        `json:"turn" bson:"turn"`
	Chain        *checkers.Square     `json:"chain,omitempty" bson:"chain,omitempty"`
	Status       statuses.MatchStatus `json:"status" bson:"status"`
	Winner       checkers.Side        `json:"winner,omitempty" bson:"winner,omitempty"`
	FinishReason string               `json:"finish_reason,omitempty" bson:"finish_reason,omitempty"`
	Moves        []MoveRecord         `json:"moves" bson:"moves"`
	Version      int64                `json:"version" bson:"version"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at" bson:"updated_at"`
	FinishedAt   *time.Time           `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}

// Clone returns a deep copy; Board is an array and copies by value.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	c.Players = append([]Player(nil), m.Players...)
	c.Moves = make([]MoveRecord, len(m.Moves))
	for i, rec := range m.Moves {
		if rec.Captured != nil {
			sq := *rec.Captured
			rec.Captured = &sq
		}
		c.Moves[i] = rec
	}
	if m.Chain != nil {
		sq := *m.Chain
		c.Chain = &sq
	}
	if m.FinishedAt != nil {
		t := *m.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// State returns the engine view of the position.
func (m *Match) State() checkers.State {
	st := checkers.State{Board: m.Board, Turn: m.Turn}
	if m.Chain != nil {
		sq := *m.Chain
		st.Chain = &sq
	}
	return st
}

func (m *Match) SetState(st checkers.State) {
	m.Board = st.Board
	m.Turn = st.Turn
	m.Chain = st.Chain
}

// SideOf returns the side played by identity.
func (m *Match) SideOf(identity string) (checkers.Side, bool) {
	for _, p := range m.Players {
		if p.Identity == identity {
			return p.Side, true
		}
	}
	return checkers.NoSide, false
}

// PlayerOf returns the identity playing side, or "" if the seat is empty.
func (m *Match) PlayerOf(side checkers.Side) string {
	for _, p := range m.Players {
		if p.Side == side {
			return p.Identity
		}
	}
	return ""
}

// Validate rejects documents whose status or sides are not ones this
// package writes.
func (m *Match) Validate() error {
	if !m.Status.Valid() {
		return fmt.Errorf("match %s: unknown status %q", m.ID, m.Status)
	}
	if !m.Turn.Valid() {
		return fmt.Errorf("match %s: unknown turn %q", m.ID, m.Turn)
	}
	if len(m.Players) > 2 {
		return fmt.Errorf("match %s: %d players", m.ID, len(m.Players))
	}
	for _, p := range m.Players {
		if !p.Side.Valid() {
			return fmt.Errorf("match %s: player %s has side %q", m.ID, p.Identity, p.Side)
		}
	}
	return nil
}

func (m *Match) Plies() int {
	return len(m.Moves)
}
