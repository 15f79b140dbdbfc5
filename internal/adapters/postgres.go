package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"checkers_exe/internal/bootstrap"
)

// AdapterPostgres holds the optional results database.
type AdapterPostgres struct {
	DB  *sql.DB
	cfg *bootstrap.Config
	log *zap.SugaredLogger
}

func NewAdapterPostgres(cfg *bootstrap.Config, log *zap.SugaredLogger) *AdapterPostgres {
	return &AdapterPostgres{
		cfg: cfg,
		log: log,
	}
}

// Enabled reports whether DATABASE_URL is configured.
func (a *AdapterPostgres) Enabled() bool {
	return strings.TrimSpace(a.cfg.DatabaseUrl) != ""
}

func (a *AdapterPostgres) Init(ctx context.Context) error {
	if !a.Enabled() {
		return fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", a.cfg.DatabaseUrl)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return fmt.Errorf("connect to Postgres: %w", err)
	}

	a.DB = db
	a.log.Info("connected to Postgres")
	return nil
}

func (a *AdapterPostgres) Close(ctx context.Context) error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
