package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"checkers_exe/internal/client"
	"checkers_exe/internal/domain/checkers"
	"checkers_exe/internal/domain/match"
)

func newWatchCmd(envFile *string) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "watch <match-id>",
		Short: "Follow a match by polling the server and print every new position.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*envFile, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			poller := client.NewPoller(client.New(server), cfg.PollInterval(), log)
			for m := range poller.Poll(cmd.Context(), args[0]) {
				printMatch(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "base URL of the checkers server")
	return cmd
}

func printMatch(w io.Writer, m *match.Match) {
	fmt.Fprintf(w, "match %s v%d %s, %s to move\n", m.Code, m.Version, m.Status, m.Turn)
	fmt.Fprint(w, renderBoard(m.Board))
	if m.Winner != checkers.NoSide {
		fmt.Fprintf(w, "winner: %s (%s)\n", m.Winner, m.FinishReason)
	}
}

func renderBoard(b checkers.Board) string {
	var sb strings.Builder
	sb.WriteString("  0 1 2 3 4 5 6 7\n")
	for r, row := range b.Rows() {
		fmt.Fprintf(&sb, "%d", r)
		for c, code := range row {
			cell := "."
			switch {
			case code != "":
				cell = pieceGlyph(code)
			case !(checkers.Square{Row: r, Col: c}).Playable():
				cell = " "
			}
			sb.WriteString(" " + cell)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func pieceGlyph(code string) string {
	switch code {
	case "L":
		return "l"
	case "LK":
		return "L"
	case "D":
		return "d"
	case "DK":
		return "D"
	}
	return "?"
}
