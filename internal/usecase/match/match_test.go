package match

import (
	"context"
	stdErrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"checkers_exe/internal/common"
	"checkers_exe/internal/domain/checkers"
	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/errors"
	repo "checkers_exe/internal/repository"
	"checkers_exe/internal/statuses"
)

func sq(row, col int) checkers.Square { return checkers.Square{Row: row, Col: col} }

func newTestUseCase(t *testing.T, opts ...Option) (*MatchUseCase, *repo.MemoryMatchStore) {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := repo.NewMemoryMatchStore(log)
	return NewMatchUseCase(store, NewHub(log), checkers.Rules{}, log, opts...), store
}

func startedMatch(t *testing.T, uc *MatchUseCase) *match.Match {
	t.Helper()
	ctx := context.Background()
	m, err := uc.CreateMatch(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	m, err = uc.JoinMatch(ctx, m.Code, "bob")
	if err != nil {
		t.Fatalf("JoinMatch: %v", err)
	}
	return m
}

// setBoard replaces the position of a stored match, bypassing the rules.
func setBoard(t *testing.T, store *repo.MemoryMatchStore, id string, pieces map[checkers.Square]checkers.Piece) {
	t.Helper()
	rows := make([][]string, checkers.Size)
	for r := range rows {
		rows[r] = make([]string, checkers.Size)
	}
	for s, p := range pieces {
		rows[s.Row][s.Col] = p.Code()
	}
	b, err := checkers.ParseBoard(rows)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	if _, err := store.Update(context.Background(), id, func(m *match.Match) error {
		m.Board = b
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func TestCreateMatch(t *testing.T) {
	uc, _ := newTestUseCase(t)
	m, err := uc.CreateMatch(context.Background(), "alice")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	if m.ID == "" || !common.ValidCode(m.Code) {
		t.Fatalf("bad id/code: %q %q", m.ID, m.Code)
	}
	if m.Status != statuses.WaitingForOpponent || m.Turn != checkers.Light || m.Board != checkers.NewBoard() {
		t.Fatalf("unexpected initial state %+v", m)
	}
	if len(m.Players) != 1 || m.Players[0].Identity != "alice" || m.Players[0].Side != checkers.Light {
		t.Fatalf("players = %+v", m.Players)
	}

	if _, err := uc.CreateMatch(context.Background(), "  "); !stdErrors.Is(err, errors.ErrInvalidIdentity) {
		t.Fatalf("blank creator err = %v", err)
	}
}

func sequence(codes ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return code, nil
	}
}

func TestCreateMatchRetriesCodeCollision(t *testing.T) {
	uc, _ := newTestUseCase(t, WithCodeGenerator(sequence("AAAAAA", "AAAAAA", "BBBBBB")))
	ctx := context.Background()

	first, err := uc.CreateMatch(ctx, "alice")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := uc.CreateMatch(ctx, "carol")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Code != "AAAAAA" || second.Code != "BBBBBB" {
		t.Fatalf("codes = %s, %s", first.Code, second.Code)
	}

	if _, err := uc.CreateMatch(ctx, "dave"); !stdErrors.Is(err, errors.ErrCodeAllocation) {
		t.Fatalf("exhausted codes err = %v, want ErrCodeAllocation", err)
	}
}

func TestCreateMatchRetriesCodeCollisionRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zap.NewNop().Sugar()
	store := repo.NewRedisMatchStore(log, rdb)
	uc := NewMatchUseCase(store, repo.NewRedisNotifier(log, rdb), checkers.Rules{}, log,
		WithCodeGenerator(sequence("AAAAAA", "AAAAAA", "CCCCCC")))
	ctx := context.Background()

	if _, err := uc.CreateMatch(ctx, "alice"); err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := uc.CreateMatch(ctx, "bob")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Code != "CCCCCC" {
		t.Fatalf("second code = %s", second.Code)
	}

	joined, err := uc.JoinMatch(ctx, "cccccc", "erin")
	if err != nil {
		t.Fatalf("JoinMatch: %v", err)
	}
	moved, err := uc.SubmitMove(ctx, joined.ID, sq(2, 1), sq(3, 2), "bob")
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if moved.Version != 2 || moved.Turn != checkers.Dark {
		t.Fatalf("moved = v%d turn %s", moved.Version, moved.Turn)
	}
}

func TestJoinMatch(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateMatch(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	joined, err := uc.JoinMatch(ctx, strings.ToLower(created.Code), "bob")
	if err != nil {
		t.Fatalf("JoinMatch: %v", err)
	}
	if joined.Status != statuses.InProgress || len(joined.Players) != 2 {
		t.Fatalf("joined = %+v", joined)
	}
	if side, _ := joined.SideOf("bob"); side != checkers.Dark {
		t.Fatalf("bob plays %s", side)
	}

	again, err := uc.JoinMatch(ctx, created.Code, "bob")
	if err != nil {
		t.Fatalf("re-join: %v", err)
	}
	if len(again.Players) != 2 || again.Version != joined.Version {
		t.Fatalf("re-join changed match: players=%d version=%d", len(again.Players), again.Version)
	}
	if _, err := uc.JoinMatch(ctx, created.Code, "alice"); err != nil {
		t.Fatalf("creator re-join: %v", err)
	}

	if _, err := uc.JoinMatch(ctx, created.Code, "carol"); !stdErrors.Is(err, errors.ErrMatchFull) {
		t.Fatalf("third player err = %v, want ErrMatchFull", err)
	}
	if _, err := uc.JoinMatch(ctx, "NOPE00", "carol"); !stdErrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("unknown code err = %v, want ErrNotFound", err)
	}
	if _, err := uc.JoinMatch(ctx, created.Code, ""); !stdErrors.Is(err, errors.ErrInvalidIdentity) {
		t.Fatalf("blank joiner err = %v", err)
	}
}

func TestSubmitMoveEmptySourceLeavesBoard(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	m := startedMatch(t, uc)

	_, err := uc.SubmitMove(ctx, m.ID, sq(3, 2), sq(4, 3), "alice")
	if !stdErrors.Is(err, errors.ErrNoPieceAtSource) {
		t.Fatalf("err = %v, want ErrNoPieceAtSource", err)
	}

	stored, err := uc.GetMatch(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if stored.Board != m.Board || stored.Version != m.Version || len(stored.Moves) != 0 {
		t.Fatalf("stored match changed: version %d -> %d", m.Version, stored.Version)
	}
}

func TestSubmitMoveErrors(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	m := startedMatch(t, uc)
	waiting, err := uc.CreateMatch(ctx, "zoe")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		from    checkers.Square
		to      checkers.Square
		by      string
		wantErr error
	}{
		{name: "unknown match", id: "missing", from: sq(2, 1), to: sq(3, 2), by: "alice", wantErr: errors.ErrNotFound},
		{name: "off board", id: m.ID, from: sq(2, 1), to: sq(8, 0), by: "alice", wantErr: errors.ErrInvalidCoordinate},
		{name: "not started", id: waiting.ID, from: sq(2, 1), to: sq(3, 2), by: "zoe", wantErr: errors.ErrMatchNotActive},
		{name: "empty source", id: m.ID, from: sq(4, 1), to: sq(5, 2), by: "alice", wantErr: errors.ErrNoPieceAtSource},
		{name: "stranger", id: m.ID, from: sq(2, 1), to: sq(3, 2), by: "mallory", wantErr: errors.ErrNotParticipant},
		{name: "dark player moves light piece", id: m.ID, from: sq(2, 1), to: sq(3, 2), by: "bob", wantErr: errors.ErrWrongTurn},
		{name: "light player moves dark piece", id: m.ID, from: sq(5, 0), to: sq(4, 1), by: "alice", wantErr: errors.ErrWrongTurn},
		{name: "two squares without capture", id: m.ID, from: sq(2, 1), to: sq(4, 3), by: "alice", wantErr: errors.ErrIllegalMove},
		{name: "backwards", id: m.ID, from: sq(2, 1), to: sq(1, 0), by: "alice", wantErr: errors.ErrIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.SubmitMove(ctx, tt.id, tt.from, tt.to, tt.by)
			if !stdErrors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	stored, err := uc.GetMatch(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if stored.Version != m.Version {
		t.Fatalf("rejected moves changed version %d -> %d", m.Version, stored.Version)
	}
}

func TestSubmitMoveAlternatesTurns(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	m := startedMatch(t, uc)

	m, err := uc.SubmitMove(ctx, m.ID, sq(2, 1), sq(3, 2), "alice")
	if err != nil {
		t.Fatalf("light move: %v", err)
	}
	if m.Turn != checkers.Dark || m.Version != 2 || len(m.Moves) != 1 {
		t.Fatalf("after light: turn %s version %d moves %d", m.Turn, m.Version, len(m.Moves))
	}
	rec := m.Moves[0]
	if rec.Ply != 1 || rec.Side != checkers.Light || rec.By != "alice" || rec.From != sq(2, 1) || rec.To != sq(3, 2) {
		t.Fatalf("record = %+v", rec)
	}

	if _, err := uc.SubmitMove(ctx, m.ID, sq(2, 3), sq(3, 4), "alice"); !stdErrors.Is(err, errors.ErrWrongTurn) {
		t.Fatalf("second light move err = %v, want ErrWrongTurn", err)
	}

	m, err = uc.SubmitMove(ctx, m.ID, sq(5, 0), sq(4, 1), "bob")
	if err != nil {
		t.Fatalf("dark move: %v", err)
	}
	if m.Turn != checkers.Light || m.Version != 3 {
		t.Fatalf("after dark: turn %s version %d", m.Turn, m.Version)
	}

	text, err := uc.ExportPDN(ctx, m.ID)
	if err != nil {
		t.Fatalf("ExportPDN: %v", err)
	}
	if !strings.Contains(text, "1. 9-14 21-17 *") {
		t.Fatalf("pdn missing moves:\n%s", text)
	}
	if !strings.Contains(text, `[Black "alice"]`) || !strings.Contains(text, `[White "bob"]`) {
		t.Fatalf("pdn missing players:\n%s", text)
	}
}

type recordingArchive struct {
	mu    sync.Mutex
	saved []*match.Match
	pdn   []string
}

func (a *recordingArchive) SaveResult(ctx context.Context, m *match.Match, pdnText string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, m)
	a.pdn = append(a.pdn, pdnText)
	return nil
}

func TestSubmitMoveChainCaptureToFinish(t *testing.T) {
	archive := &recordingArchive{}
	uc, store := newTestUseCase(t, WithArchive(archive))
	ctx := context.Background()
	m := startedMatch(t, uc)

	lightMan := checkers.Piece{Side: checkers.Light, Rank: checkers.Man}
	darkMan := checkers.Piece{Side: checkers.Dark, Rank: checkers.Man}
	setBoard(t, store, m.ID, map[checkers.Square]checkers.Piece{
		sq(2, 1): lightMan, sq(0, 1): lightMan,
		sq(3, 2): darkMan, sq(5, 4): darkMan,
	})

	m, err := uc.SubmitMove(ctx, m.ID, sq(2, 1), sq(4, 3), "alice")
	if err != nil {
		t.Fatalf("first jump: %v", err)
	}
	if m.Turn != checkers.Light || m.Chain == nil || *m.Chain != sq(4, 3) {
		t.Fatalf("chain not kept: turn %s chain %v", m.Turn, m.Chain)
	}
	if !m.Moves[0].ChainContinues || m.Moves[0].Captured == nil || *m.Moves[0].Captured != sq(3, 2) {
		t.Fatalf("record = %+v", m.Moves[0])
	}

	if _, err := uc.SubmitMove(ctx, m.ID, sq(5, 4), sq(4, 5), "bob"); !stdErrors.Is(err, errors.ErrWrongTurn) {
		t.Fatalf("opponent mid-chain err = %v, want ErrWrongTurn", err)
	}
	if _, err := uc.SubmitMove(ctx, m.ID, sq(0, 1), sq(1, 2), "alice"); !stdErrors.Is(err, errors.ErrIllegalMove) {
		t.Fatalf("other piece mid-chain err = %v, want ErrIllegalMove", err)
	}

	m, err = uc.SubmitMove(ctx, m.ID, sq(4, 3), sq(6, 5), "alice")
	if err != nil {
		t.Fatalf("second jump: %v", err)
	}
	if m.Status != statuses.Finished || m.Winner != checkers.Light || m.FinishReason != match.ReasonNoMoves {
		t.Fatalf("status %s winner %s reason %s", m.Status, m.Winner, m.FinishReason)
	}
	if m.FinishedAt == nil {
		t.Fatal("FinishedAt not set")
	}

	if _, err := uc.SubmitMove(ctx, m.ID, sq(0, 1), sq(1, 2), "alice"); !stdErrors.Is(err, errors.ErrMatchNotActive) {
		t.Fatalf("move after finish err = %v, want ErrMatchNotActive", err)
	}

	if len(archive.saved) != 1 || archive.saved[0].ID != m.ID {
		t.Fatalf("archive saved %d matches", len(archive.saved))
	}
	if !strings.Contains(archive.pdn[0], "1. 9x18x27 0-1") {
		t.Fatalf("archived pdn:\n%s", archive.pdn[0])
	}
}

func TestResign(t *testing.T) {
	archive := &recordingArchive{}
	uc, _ := newTestUseCase(t, WithArchive(archive))
	ctx := context.Background()
	m := startedMatch(t, uc)

	if _, err := uc.Resign(ctx, m.ID, "mallory"); !stdErrors.Is(err, errors.ErrNotParticipant) {
		t.Fatalf("stranger resign err = %v", err)
	}

	m, err := uc.Resign(ctx, m.ID, "alice")
	if err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if m.Status != statuses.Finished || m.Winner != checkers.Dark || m.FinishReason != match.ReasonResigned {
		t.Fatalf("status %s winner %s reason %s", m.Status, m.Winner, m.FinishReason)
	}
	if _, err := uc.Resign(ctx, m.ID, "bob"); !stdErrors.Is(err, errors.ErrMatchNotActive) {
		t.Fatalf("second resign err = %v", err)
	}
	if _, err := uc.SubmitMove(ctx, m.ID, sq(2, 1), sq(3, 2), "alice"); !stdErrors.Is(err, errors.ErrMatchNotActive) {
		t.Fatalf("move after resign err = %v", err)
	}
	if len(archive.saved) != 1 {
		t.Fatalf("archive saved %d matches", len(archive.saved))
	}

	waiting, err := uc.CreateMatch(ctx, "zoe")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	if _, err := uc.Resign(ctx, waiting.ID, "zoe"); !stdErrors.Is(err, errors.ErrMatchNotActive) {
		t.Fatalf("resign before start err = %v", err)
	}
}

func TestConcurrentSubmitSameTurn(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	m := startedMatch(t, uc)

	moves := [][2]checkers.Square{
		{sq(2, 1), sq(3, 2)},
		{sq(2, 3), sq(3, 4)},
		{sq(2, 5), sq(3, 6)},
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(moves))
	for _, mv := range moves {
		wg.Add(1)
		go func(from, to checkers.Square) {
			defer wg.Done()
			_, err := uc.SubmitMove(ctx, m.ID, from, to, "alice")
			errs <- err
		}(mv[0], mv[1])
	}
	wg.Wait()
	close(errs)

	applied := 0
	for err := range errs {
		switch {
		case err == nil:
			applied++
		case stdErrors.Is(err, errors.ErrWrongTurn):
		default:
			t.Fatalf("unexpected err %v", err)
		}
	}
	if applied != 1 {
		t.Fatalf("applied %d moves, want exactly 1", applied)
	}
	stored, err := uc.GetMatch(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if len(stored.Moves) != 1 || stored.Turn != checkers.Dark {
		t.Fatalf("moves %d turn %s", len(stored.Moves), stored.Turn)
	}
}

func TestLegalMoves(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	m := startedMatch(t, uc)

	moves, err := uc.LegalMoves(ctx, m.ID, sq(2, 1))
	if err != nil {
		t.Fatalf("LegalMoves: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("got %d moves, want 2", len(moves))
	}

	moves, err = uc.LegalMoves(ctx, m.ID, sq(5, 0))
	if err != nil {
		t.Fatalf("LegalMoves(dark): %v", err)
	}
	if len(moves) != 0 {
		t.Fatalf("dark piece on light's turn has %d moves", len(moves))
	}

	if _, err := uc.LegalMoves(ctx, m.ID, sq(3, 2)); !stdErrors.Is(err, errors.ErrNoPieceAtSource) {
		t.Fatalf("empty square err = %v", err)
	}
	if _, err := uc.LegalMoves(ctx, m.ID, sq(9, 9)); !stdErrors.Is(err, errors.ErrInvalidCoordinate) {
		t.Fatalf("off board err = %v", err)
	}
	if _, err := uc.LegalMoves(ctx, "missing", sq(2, 1)); !stdErrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("missing match err = %v", err)
	}
}

func TestGetMatchByCodeRejectsMalformed(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	created, err := uc.CreateMatch(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	got, err := uc.GetMatchByCode(ctx, " "+strings.ToLower(created.Code)+" ")
	if err != nil || got.ID != created.ID {
		t.Fatalf("GetMatchByCode = %v, %v", got, err)
	}
	for _, code := range []string{"", "AB-123", "ABC12", "ABCDEFG"} {
		if _, err := uc.GetMatchByCode(ctx, code); !stdErrors.Is(err, errors.ErrNotFound) {
			t.Fatalf("GetMatchByCode(%q) err = %v, want ErrNotFound", code, err)
		}
		if _, err := uc.JoinMatch(ctx, code, "bob"); !stdErrors.Is(err, errors.ErrNotFound) {
			t.Fatalf("JoinMatch(%q) err = %v, want ErrNotFound", code, err)
		}
	}
}

func TestTurnMoves(t *testing.T) {
	uc, store := newTestUseCase(t)
	ctx := context.Background()

	waiting, err := uc.CreateMatch(ctx, "carol")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	moves, err := uc.TurnMoves(ctx, waiting.ID)
	if err != nil || moves == nil || len(moves) != 0 {
		t.Fatalf("waiting match moves = %v, %v; want empty", moves, err)
	}

	m := startedMatch(t, uc)
	moves, err = uc.TurnMoves(ctx, m.ID)
	if err != nil {
		t.Fatalf("TurnMoves: %v", err)
	}
	if len(moves) != 7 {
		t.Fatalf("opening moves = %d, want 7", len(moves))
	}

	setBoard(t, store, m.ID, map[checkers.Square]checkers.Piece{
		sq(2, 1): {Side: checkers.Light, Rank: checkers.Man},
		sq(3, 2): {Side: checkers.Dark, Rank: checkers.Man},
		sq(6, 7): {Side: checkers.Dark, Rank: checkers.Man},
	})
	moves, err = uc.TurnMoves(ctx, m.ID)
	if err != nil {
		t.Fatalf("TurnMoves: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("moves = %+v, want simple move and jump", moves)
	}

	if _, err := uc.TurnMoves(ctx, "missing"); !stdErrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("missing match err = %v", err)
	}
}

func TestMandatoryCaptureRules(t *testing.T) {
	log := zap.NewNop().Sugar()
	store := repo.NewMemoryMatchStore(log)
	uc := NewMatchUseCase(store, NewHub(log), checkers.Rules{MandatoryCapture: true}, log)
	ctx := context.Background()
	m := startedMatch(t, uc)

	setBoard(t, store, m.ID, map[checkers.Square]checkers.Piece{
		sq(2, 1): {Side: checkers.Light, Rank: checkers.Man},
		sq(2, 5): {Side: checkers.Light, Rank: checkers.Man},
		sq(3, 2): {Side: checkers.Dark, Rank: checkers.Man},
	})
	if _, err := uc.SubmitMove(ctx, m.ID, sq(2, 5), sq(3, 6), "alice"); !stdErrors.Is(err, errors.ErrIllegalMove) {
		t.Fatalf("simple move with capture available err = %v", err)
	}
	if _, err := uc.SubmitMove(ctx, m.ID, sq(2, 1), sq(4, 3), "alice"); err != nil {
		t.Fatalf("capture: %v", err)
	}
}

func TestListOpenMatches(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	uc, _ := newTestUseCase(t, WithPageLimit(2), WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))
	ctx := context.Background()

	var created []*match.Match
	for _, who := range []string{"a", "b", "c"} {
		m, err := uc.CreateMatch(ctx, who)
		if err != nil {
			t.Fatalf("CreateMatch: %v", err)
		}
		created = append(created, m)
	}
	if _, err := uc.JoinMatch(ctx, created[2].Code, "d"); err != nil {
		t.Fatalf("JoinMatch: %v", err)
	}

	open, err := uc.ListOpenMatches(ctx, 0)
	if err != nil {
		t.Fatalf("ListOpenMatches: %v", err)
	}
	if len(open) != 2 || open[0].ID != created[1].ID || open[1].ID != created[0].ID {
		t.Fatalf("open = %d matches", len(open))
	}

	one, err := uc.ListOpenMatches(ctx, 1)
	if err != nil {
		t.Fatalf("ListOpenMatches: %v", err)
	}
	if len(one) != 1 {
		t.Fatalf("limit 1 returned %d", len(one))
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := startedMatch(t, uc)

	updates, stop, err := uc.Subscribe(ctx, m.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stop()

	if _, err := uc.SubmitMove(ctx, m.ID, sq(2, 1), sq(3, 2), "alice"); err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	select {
	case got := <-updates:
		if got.Version != 2 || got.Turn != checkers.Dark {
			t.Fatalf("update v%d turn %s", got.Version, got.Turn)
		}
	case <-time.After(time.Second):
		t.Fatal("no update")
	}

	if _, _, err := uc.Subscribe(ctx, "missing"); !stdErrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("missing match err = %v", err)
	}
}
