package match

import (
	"checkers_exe/internal/domain/checkers"
	"checkers_exe/internal/statuses"
)

type CreateMatchRequest struct {
	Creator string `json:"creator"`
}

type CreateMatchResponse struct {
	MatchID string               `json:"match_id"`
	Code    string               `json:"code"`
	Board   checkers.Board       `json:"board"`
	Turn    checkers.Side        `json:"turn"`
	Status  statuses.MatchStatus `json:"status"`
}

type JoinMatchRequest struct {
	Joiner string `json:"joiner"`
}

type JoinMatchResponse struct {
	MatchID string   `json:"match_id"`
	Players []Player `json:"players"`
}

type SubmitMoveRequest struct {
	From checkers.Square `json:"from"`
	To   checkers.Square `json:"to"`
	By   string          `json:"by"`
}

type ResignRequest struct {
	By string `json:"by"`
}

type LegalMovesResponse struct {
	Moves []checkers.Move `json:"moves"`
}

type ListResponse struct {
	Matches []*Match `json:"matches"`
}
