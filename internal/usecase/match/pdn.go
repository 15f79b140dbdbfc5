package match

import (
	"fmt"
	"strings"

	"checkers_exe/internal/domain/checkers"
	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/domain/pdn"
	"checkers_exe/internal/statuses"
)

// American checkers in the PDN GameType registry.
const pdnGameType = "21"

// PreparePDN builds the notation record of m. Light starts on squares 1-12
// and moves first, which is the PDN Black seat. The jumps of one chain
// capture are merged into a single half-move.
func PreparePDN(m *match.Match) pdn.Game {
	date := m.CreatedAt
	g := pdn.Game{
		Tags: []pdn.Tag{
			{Name: "Event", Value: "Checkers match " + m.Code},
			{Name: "Date", Value: fmt.Sprintf("%04d.%02d.%02d", date.Year(), int(date.Month()), date.Day())},
			{Name: "Black", Value: pdn.Sanitize(m.PlayerOf(checkers.Light))},
			{Name: "White", Value: pdn.Sanitize(m.PlayerOf(checkers.Dark))},
			{Name: "GameType", Value: pdnGameType},
		},
		Result: pdnResult(m),
	}
	if m.FinishReason != "" {
		g.Tags = append(g.Tags, pdn.Tag{Name: "Termination", Value: m.FinishReason})
	}
	g.Tags = append(g.Tags, pdn.Tag{Name: "Result", Value: g.Result})

	var current *pdn.Move
	for _, rec := range m.Moves {
		if current == nil {
			current = &pdn.Move{Path: []int{rec.From.Number()}, Capture: rec.Captured != nil}
		}
		current.Path = append(current.Path, rec.To.Number())
		if !rec.ChainContinues {
			g.Moves = append(g.Moves, *current)
			current = nil
		}
	}
	// chain still in progress
	if current != nil {
		g.Moves = append(g.Moves, *current)
	}
	return g
}

func pdnResult(m *match.Match) string {
	if m.Status != statuses.Finished {
		return pdn.ResultUnknown
	}
	switch m.Winner {
	case checkers.Light:
		return pdn.ResultBlackWins
	case checkers.Dark:
		return pdn.ResultWhiteWins
	}
	return pdn.ResultUnknown
}

func SerializePDN(g pdn.Game) string {
	var b strings.Builder
	for _, tag := range g.Tags {
		b.WriteString(fmt.Sprintf("[%s \"%s\"]\n", tag.Name, tag.Value))
	}
	b.WriteString("\n")

	for i := 0; i < len(g.Moves); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, g.Moves[i]))
		if i+1 < len(g.Moves) {
			b.WriteString(" ")
			b.WriteString(g.Moves[i+1].String())
		}
		b.WriteString(" ")
	}
	b.WriteString(g.Result)
	b.WriteString("\n")
	return b.String()
}
