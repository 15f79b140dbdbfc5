package match

import (
	"context"
	stdErrors "errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkers_exe/internal/common"
	"checkers_exe/internal/domain/checkers"
	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/errors"
	"checkers_exe/internal/statuses"
)

const (
	maxCodeAttempts  = 8
	defaultPageLimit = 20
	lockStripes      = 64
)

// MatchStore persists matches. Update must apply fn to a copy of the stored
// match and commit it atomically with Version incremented, leaving the stored
// match untouched when fn returns an error.
type MatchStore interface {
	Create(ctx context.Context, m *match.Match) error
	GetByID(ctx context.Context, id string) (*match.Match, error)
	GetByCode(ctx context.Context, code string) (*match.Match, error)
	Update(ctx context.Context, id string, fn func(*match.Match) error) (*match.Match, error)
	ListByStatus(ctx context.Context, status statuses.MatchStatus, limit int) ([]*match.Match, error)
}

type Notifier interface {
	Publish(ctx context.Context, m *match.Match) error
	Subscribe(ctx context.Context, id string) (<-chan *match.Match, func(), error)
}

type ResultArchive interface {
	SaveResult(ctx context.Context, m *match.Match, pdnText string) error
}

type MatchUseCase struct {
	store     MatchStore
	notifier  Notifier
	archive   ResultArchive
	rules     checkers.Rules
	log       *zap.SugaredLogger
	pageLimit int
	now       func() time.Time
	newCode   func() (string, error)
	locks     [lockStripes]sync.Mutex
}

type Option func(*MatchUseCase)

func WithArchive(archive ResultArchive) Option {
	return func(uc *MatchUseCase) { uc.archive = archive }
}

func WithPageLimit(limit int) Option {
	return func(uc *MatchUseCase) {
		if limit > 0 {
			uc.pageLimit = limit
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *MatchUseCase) { uc.now = now }
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(uc *MatchUseCase) { uc.newCode = gen }
}

func NewMatchUseCase(store MatchStore, notifier Notifier, rules checkers.Rules, log *zap.SugaredLogger, opts ...Option) *MatchUseCase {
	uc := &MatchUseCase{
		store:     store,
		notifier:  notifier,
		rules:     rules,
		log:       log,
		pageLimit: defaultPageLimit,
		now:       func() time.Time { return time.Now().UTC() },
		newCode:   common.MatchCode,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// errNoChange aborts an Update without writing.
var errNoChange = stdErrors.New("no change")

func (uc *MatchUseCase) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &uc.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// storeFailure makes exhausted CAS retries look like any other retryable
// store error to callers.
func storeFailure(err error) error {
	if stdErrors.Is(err, errors.ErrConflict) {
		return fmt.Errorf("%w: %w", errors.ErrStoreFailure, err)
	}
	return err
}

func (uc *MatchUseCase) CreateMatch(ctx context.Context, creator string) (*match.Match, error) {
	creator = strings.TrimSpace(creator)
	if creator == "" {
		return nil, errors.ErrInvalidIdentity
	}

	now := uc.now()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := uc.newCode()
		if err != nil {
			return nil, fmt.Errorf("%w: generate code: %v", errors.ErrStoreFailure, err)
		}
		m := &match.Match{
			ID:        uuid.New().String(),
			Code:      code,
			Players:   []match.Player{{Identity: creator, Side: checkers.Light, JoinedAt: now}},
			Board:     checkers.NewBoard(),
			Turn:      checkers.Light,
			Status:    statuses.WaitingForOpponent,
			Moves:     []match.MoveRecord{},
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = uc.store.Create(ctx, m)
		if stdErrors.Is(err, errors.ErrCodeTaken) {
			uc.log.Debugw("match code collision", "code", code, "attempt", attempt+1)
			continue
		}
		if err != nil {
			uc.log.Errorw("failed to create match", "creator", creator, "error", err)
			return nil, err
		}

		uc.log.Infow("match created", "match_id", m.ID, "code", m.Code, "creator", creator)
		return m, nil
	}
	return nil, errors.ErrCodeAllocation
}

// JoinMatch seats joiner as Dark. Joining a match one already plays in
// returns the match unchanged.
func (uc *MatchUseCase) JoinMatch(ctx context.Context, code, joiner string) (*match.Match, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	joiner = strings.TrimSpace(joiner)
	if joiner == "" {
		return nil, errors.ErrInvalidIdentity
	}

	existing, err := uc.GetMatchByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	unlock := uc.lock(existing.ID)
	defer unlock()

	updated, err := uc.store.Update(ctx, existing.ID, func(m *match.Match) error {
		if _, ok := m.SideOf(joiner); ok {
			return errNoChange
		}
		if len(m.Players) >= 2 {
			return fmt.Errorf("%w: %s", errors.ErrMatchFull, m.Code)
		}
		now := uc.now()
		m.Players = append(m.Players, match.Player{Identity: joiner, Side: checkers.Dark, JoinedAt: now})
		m.Status = statuses.InProgress
		m.UpdatedAt = now
		return nil
	})
	if stdErrors.Is(err, errNoChange) {
		return uc.store.GetByID(ctx, existing.ID)
	}
	if err != nil {
		return nil, storeFailure(err)
	}

	uc.log.Infow("player joined match", "match_id", updated.ID, "code", updated.Code, "joiner", joiner)
	uc.publish(ctx, updated)
	return updated, nil
}

func (uc *MatchUseCase) GetMatch(ctx context.Context, id string) (*match.Match, error) {
	return uc.store.GetByID(ctx, id)
}

// GetMatchByCode looks a match up by its share code, case-insensitively.
// Strings that cannot be a code are not found without a store round trip.
func (uc *MatchUseCase) GetMatchByCode(ctx context.Context, code string) (*match.Match, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !common.ValidCode(code) {
		return nil, fmt.Errorf("%w: code %q", errors.ErrNotFound, code)
	}
	return uc.store.GetByCode(ctx, code)
}

// SubmitMove validates and applies one step for player by. Validation runs
// against the freshly loaded match inside the store update, so a rejected
// move never changes what is stored.
func (uc *MatchUseCase) SubmitMove(ctx context.Context, id string, from, to checkers.Square, by string) (*match.Match, error) {
	unlock := uc.lock(id)
	defer unlock()

	var step checkers.Step
	updated, err := uc.store.Update(ctx, id, func(m *match.Match) error {
		if !from.OnBoard() || !to.OnBoard() {
			return fmt.Errorf("%w: %s -> %s", errors.ErrInvalidCoordinate, from, to)
		}
		if m.Status != statuses.InProgress {
			return fmt.Errorf("%w: status %s", errors.ErrMatchNotActive, m.Status)
		}
		piece := m.Board.At(from)
		if piece.Empty() {
			return fmt.Errorf("%w: %s", errors.ErrNoPieceAtSource, from)
		}
		side, ok := m.SideOf(by)
		if !ok {
			return fmt.Errorf("%w: %q", errors.ErrNotParticipant, by)
		}
		if piece.Side != m.Turn || side != m.Turn {
			return fmt.Errorf("%w: %s to move", errors.ErrWrongTurn, m.Turn)
		}

		next, s, err := uc.rules.Advance(m.State(), from, to)
		if err != nil {
			return engineError(err)
		}
		step = s

		now := uc.now()
		m.Moves = append(m.Moves, match.MoveRecord{
			Ply:            len(m.Moves) + 1,
			Side:           m.Turn,
			By:             by,
			From:           from,
			To:             to,
			Captured:       s.Move.Captured,
			Promoted:       s.Promoted,
			ChainContinues: s.ChainContinues,
			At:             now,
		})
		m.SetState(next)
		m.UpdatedAt = now
		if s.Terminal.Over {
			m.Status = statuses.Finished
			m.Winner = s.Terminal.Winner
			m.FinishReason = match.ReasonNoMoves
			m.FinishedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, storeFailure(err)
	}

	uc.log.Infow("move applied",
		"match_id", id, "by", by, "from", from.String(), "to", to.String(),
		"captured", step.Captured, "promoted", step.Promoted, "chain", step.ChainContinues,
		"version", updated.Version)
	uc.publish(ctx, updated)
	if updated.Status == statuses.Finished {
		uc.log.Infow("match finished", "match_id", id, "winner", updated.Winner, "reason", updated.FinishReason)
		uc.archiveResult(ctx, updated)
	}
	return updated, nil
}

func engineError(err error) error {
	switch {
	case stdErrors.Is(err, checkers.ErrInvalidCoordinate):
		return fmt.Errorf("%w: %v", errors.ErrInvalidCoordinate, err)
	case stdErrors.Is(err, checkers.ErrEmptySquare):
		return fmt.Errorf("%w: %v", errors.ErrNoPieceAtSource, err)
	case stdErrors.Is(err, checkers.ErrWrongSide):
		return fmt.Errorf("%w: %v", errors.ErrWrongTurn, err)
	default:
		return fmt.Errorf("%w: %v", errors.ErrIllegalMove, err)
	}
}

// Resign concedes an in-progress match; the opponent wins.
func (uc *MatchUseCase) Resign(ctx context.Context, id, by string) (*match.Match, error) {
	unlock := uc.lock(id)
	defer unlock()

	updated, err := uc.store.Update(ctx, id, func(m *match.Match) error {
		if m.Status != statuses.InProgress {
			return fmt.Errorf("%w: status %s", errors.ErrMatchNotActive, m.Status)
		}
		side, ok := m.SideOf(by)
		if !ok {
			return fmt.Errorf("%w: %q", errors.ErrNotParticipant, by)
		}
		now := uc.now()
		m.Status = statuses.Finished
		m.Winner = side.Opponent()
		m.FinishReason = match.ReasonResigned
		m.Chain = nil
		m.UpdatedAt = now
		m.FinishedAt = &now
		return nil
	})
	if err != nil {
		return nil, storeFailure(err)
	}

	uc.log.Infow("player resigned", "match_id", id, "by", by, "winner", updated.Winner)
	uc.publish(ctx, updated)
	uc.archiveResult(ctx, updated)
	return updated, nil
}

// LegalMoves returns what the side to move may play from sq. Outside an
// in-progress match there are none.
func (uc *MatchUseCase) LegalMoves(ctx context.Context, id string, sq checkers.Square) ([]checkers.Move, error) {
	m, err := uc.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sq.OnBoard() {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidCoordinate, sq)
	}
	if m.Status != statuses.InProgress {
		return []checkers.Move{}, nil
	}
	moves, err := uc.rules.MovesFor(m.State(), sq)
	if err != nil {
		return nil, engineError(err)
	}
	if moves == nil {
		moves = []checkers.Move{}
	}
	return moves, nil
}

// TurnMoves lists every move the side to move may play, honouring an
// unfinished chain and mandatory capture.
func (uc *MatchUseCase) TurnMoves(ctx context.Context, id string) ([]checkers.Move, error) {
	m, err := uc.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	moves := []checkers.Move{}
	if m.Status != statuses.InProgress {
		return moves, nil
	}
	return append(moves, uc.rules.Moves(m.State())...), nil
}

// ListOpenMatches returns matches waiting for an opponent, newest first.
func (uc *MatchUseCase) ListOpenMatches(ctx context.Context, limit int) ([]*match.Match, error) {
	if limit <= 0 || limit > uc.pageLimit {
		limit = uc.pageLimit
	}
	matches, err := uc.store.ListByStatus(ctx, statuses.WaitingForOpponent, limit)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []*match.Match{}
	}
	return matches, nil
}

func (uc *MatchUseCase) ExportPDN(ctx context.Context, id string) (string, error) {
	m, err := uc.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return SerializePDN(PreparePDN(m)), nil
}

// Subscribe streams every new version of match id until cancel is called or
// ctx ends.
func (uc *MatchUseCase) Subscribe(ctx context.Context, id string) (<-chan *match.Match, func(), error) {
	if _, err := uc.store.GetByID(ctx, id); err != nil {
		return nil, nil, err
	}
	if uc.notifier == nil {
		return nil, nil, fmt.Errorf("%w: no update notifier configured", errors.ErrStoreFailure)
	}
	return uc.notifier.Subscribe(ctx, id)
}

func (uc *MatchUseCase) publish(ctx context.Context, m *match.Match) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Publish(ctx, m); err != nil {
		uc.log.Warnw("failed to publish match update", "match_id", m.ID, "error", err)
	}
}

func (uc *MatchUseCase) archiveResult(ctx context.Context, m *match.Match) {
	if uc.archive == nil {
		return
	}
	if err := uc.archive.SaveResult(ctx, m, SerializePDN(PreparePDN(m))); err != nil {
		uc.log.Errorw("failed to archive match result", "match_id", m.ID, "error", err)
	}
}
