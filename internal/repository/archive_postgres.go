package repo

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"checkers_exe/internal/domain/checkers"
	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/errors"
	"checkers_exe/internal/statuses"
)

const resultsSchema = `CREATE TABLE IF NOT EXISTS checkers_results (
    match_id     TEXT PRIMARY KEY,
    code         TEXT NOT NULL,
    light_id     TEXT NOT NULL,
    dark_id      TEXT NOT NULL,
    winner       TEXT NOT NULL,
    reason       TEXT NOT NULL,
    plies        INTEGER NOT NULL,
    pdn          TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL,
    finished_at  TIMESTAMPTZ NOT NULL
)`

// PostgresArchive keeps finished matches in Postgres for history queries.
type PostgresArchive struct {
	log *zap.SugaredLogger
	db  *sql.DB
}

func NewPostgresArchive(log *zap.SugaredLogger, db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		log: log,
		db:  db,
	}
}

func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if _, err := a.db.ExecContext(ctx, resultsSchema); err != nil {
		return fmt.Errorf("%w: create results table: %v", errors.ErrStoreFailure, err)
	}
	return nil
}

// SaveResult upserts a finished match. Matches that are not finished are
// ignored.
func (a *PostgresArchive) SaveResult(ctx context.Context, m *match.Match, pdnText string) error {
	if a == nil || a.db == nil || m == nil || m.Status != statuses.Finished {
		return nil
	}
	finishedAt := m.UpdatedAt
	if m.FinishedAt != nil {
		finishedAt = *m.FinishedAt
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	q := `INSERT INTO checkers_results (
        match_id, code, light_id, dark_id, winner, reason, plies, pdn, created_at, finished_at
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
      ) ON CONFLICT (match_id) DO UPDATE SET
        winner=EXCLUDED.winner,
        reason=EXCLUDED.reason,
        plies=EXCLUDED.plies,
        pdn=EXCLUDED.pdn,
        finished_at=EXCLUDED.finished_at`

	_, err := a.db.ExecContext(ctx, q,
		m.ID, m.Code,
		m.PlayerOf(checkers.Light), m.PlayerOf(checkers.Dark),
		string(m.Winner), m.FinishReason, m.Plies(), pdnText,
		m.CreatedAt, finishedAt,
	)
	if err != nil {
		a.log.Errorw("failed to archive match", "match_id", m.ID, "error", err)
		return fmt.Errorf("%w: archive: %v", errors.ErrStoreFailure, err)
	}
	return nil
}
