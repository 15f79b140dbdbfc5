package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/errors"
	"checkers_exe/internal/statuses"
)

// MemoryMatchStore keeps matches in process memory. Used for local runs and
// tests; everything is lost on restart.
type MemoryMatchStore struct {
	log    *zap.SugaredLogger
	mu     sync.RWMutex
	byID   map[string]*match.Match
	byCode map[string]string
}

func NewMemoryMatchStore(log *zap.SugaredLogger) *MemoryMatchStore {
	return &MemoryMatchStore{
		log:    log,
		byID:   make(map[string]*match.Match),
		byCode: make(map[string]string),
	}
}

func (s *MemoryMatchStore) Create(ctx context.Context, m *match.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byCode[m.Code]; taken {
		return fmt.Errorf("%w: %s", errors.ErrCodeTaken, m.Code)
	}
	if _, exists := s.byID[m.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", errors.ErrStoreFailure, m.ID)
	}
	s.byID[m.ID] = m.Clone()
	s.byCode[m.Code] = m.ID
	return nil
}

func (s *MemoryMatchStore) GetByID(ctx context.Context, id string) (*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", errors.ErrNotFound, id)
	}
	return m.Clone(), nil
}

func (s *MemoryMatchStore) GetByCode(ctx context.Context, code string) (*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: code %s", errors.ErrNotFound, code)
	}
	return s.byID[id].Clone(), nil
}

// Update runs fn on a copy under the store lock and commits it with the
// version bumped. The stored match is untouched when fn fails.
func (s *MemoryMatchStore) Update(ctx context.Context, id string, fn func(*match.Match) error) (*match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", errors.ErrNotFound, id)
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Version = current.Version + 1
	s.byID[id] = next
	return next.Clone(), nil
}

func (s *MemoryMatchStore) ListByStatus(ctx context.Context, status statuses.MatchStatus, limit int) ([]*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*match.Match
	for _, m := range s.byID {
		if m.Status == status {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
