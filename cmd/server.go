package main

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"checkers_exe/internal/adapters"
	"checkers_exe/internal/bootstrap"
	matchDelivery "checkers_exe/internal/delivery/match"
	"checkers_exe/internal/domain/checkers"
	ownMiddleware "checkers_exe/internal/middleware"
	repo "checkers_exe/internal/repository"
	matchUseCase "checkers_exe/internal/usecase/match"
)

const shutdownTimeout = 10 * time.Second

type storage struct {
	store    matchUseCase.MatchStore
	notifier matchUseCase.Notifier
	archive  matchUseCase.ResultArchive
	closers  []func(context.Context) error
}

func (s *storage) close(ctx context.Context, log *zap.SugaredLogger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Warnw("failed to close adapter", "error", err)
		}
	}
}

func initStorage(ctx context.Context, cfg *bootstrap.Config, log *zap.SugaredLogger) (*storage, error) {
	s := &storage{}

	switch cfg.StoreBackend {
	case bootstrap.BackendMongo:
		mongoAdapter := adapters.NewAdapterMongo(cfg, log)
		if err := mongoAdapter.Init(ctx); err != nil {
			return nil, err
		}
		s.closers = append(s.closers, mongoAdapter.Close)
		store := repo.NewMongoMatchStore(log, mongoAdapter.Database)
		if err := store.EnsureIndexes(ctx); err != nil {
			s.close(ctx, log)
			return nil, err
		}
		s.store = store
		s.notifier = matchUseCase.NewHub(log)
	case bootstrap.BackendRedis:
		redisAdapter := adapters.NewAdapterRedis(cfg, log)
		if err := redisAdapter.Init(ctx); err != nil {
			return nil, err
		}
		s.closers = append(s.closers, redisAdapter.Close)
		s.store = repo.NewRedisMatchStore(log, redisAdapter.GetClient())
		s.notifier = repo.NewRedisNotifier(log, redisAdapter.GetClient())
	default:
		s.store = repo.NewMemoryMatchStore(log)
		s.notifier = matchUseCase.NewHub(log)
	}

	pgAdapter := adapters.NewAdapterPostgres(cfg, log)
	if pgAdapter.Enabled() {
		if err := pgAdapter.Init(ctx); err != nil {
			s.close(ctx, log)
			return nil, err
		}
		s.closers = append(s.closers, pgAdapter.Close)
		archive := repo.NewPostgresArchive(log, pgAdapter.DB)
		if err := archive.EnsureSchema(ctx); err != nil {
			s.close(ctx, log)
			return nil, err
		}
		s.archive = archive
	}

	log.Infow("storage initialized", "backend", cfg.StoreBackend, "archive", s.archive != nil)
	return s, nil
}

func newRouter(cfg *bootstrap.Config, log *zap.SugaredLogger, uc *matchUseCase.MatchUseCase) *chi.Mux {
	r := chi.NewRouter()
	if cfg.IsLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	matchDelivery.NewMatchHandler(*cfg, log, uc).Routes(r)
	return r
}

func serve(ctx context.Context, cfg *bootstrap.Config, log *zap.SugaredLogger) error {
	st, err := initStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer st.close(context.Background(), log)

	opts := []matchUseCase.Option{matchUseCase.WithPageLimit(cfg.PageLimitMatches)}
	if st.archive != nil {
		opts = append(opts, matchUseCase.WithArchive(st.archive))
	}
	uc := matchUseCase.NewMatchUseCase(st.store, st.notifier, checkers.Rules{MandatoryCapture: cfg.MandatoryCapture}, log, opts...)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg, log, uc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server is running on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
