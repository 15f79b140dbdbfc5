package repo

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/errors"
	"checkers_exe/internal/statuses"
)

type RedisMatchStore struct {
	log     *zap.SugaredLogger
	redis   *redis.Client
	timeout time.Duration
}

func NewRedisMatchStore(log *zap.SugaredLogger, redis *redis.Client) *RedisMatchStore {
	return &RedisMatchStore{
		log:     log,
		redis:   redis,
		timeout: storeTimeout,
	}
}

func keyMatch(id string) string {
	return "checkers:match:" + id
}

func keyCode(code string) string {
	return "checkers:code:" + code
}

// one sorted set per status, scored by creation time
func keyStatus(status statuses.MatchStatus) string {
	return "checkers:status:" + string(status)
}

func statusScore(m *match.Match) float64 {
	return float64(m.CreatedAt.UnixNano())
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", errors.ErrStoreFailure, op, err)
}

func decodeMatch(raw []byte) (*match.Match, error) {
	var m match.Match
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create claims the code with SETNX first so two matches can never share it.
func (s *RedisMatchStore) Create(ctx context.Context, m *match.Match) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.redis.SetNX(ctx, keyCode(m.Code), m.ID, 0).Result()
	if err != nil {
		return storeErr("claim code", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrCodeTaken, m.Code)
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return storeErr("encode", err)
	}
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyMatch(m.ID), raw, 0)
		pipe.ZAdd(ctx, keyStatus(m.Status), redis.Z{Score: statusScore(m), Member: m.ID})
		return nil
	})
	if err != nil {
		_ = s.redis.Del(ctx, keyCode(m.Code)).Err()
		s.log.Errorw("failed to store match", "match_id", m.ID, "error", err)
		return storeErr("store", err)
	}
	return nil
}

func (s *RedisMatchStore) GetByID(ctx context.Context, id string) (*match.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.redis.Get(ctx, keyMatch(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: id %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return nil, storeErr("get", err)
	}
	m, err := decodeMatch(raw)
	if err != nil {
		return nil, storeErr("decode", err)
	}
	return m, nil
}

func (s *RedisMatchStore) GetByCode(ctx context.Context, code string) (*match.Match, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	id, err := s.redis.Get(lookupCtx, keyCode(code)).Result()
	cancel()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: code %s", errors.ErrNotFound, code)
	}
	if err != nil {
		return nil, storeErr("get code", err)
	}
	return s.GetByID(ctx, id)
}

// Update runs fn inside WATCH on the match key; EXEC fails if another
// writer got there first, in which case the whole read-modify-write repeats.
func (s *RedisMatchStore) Update(ctx context.Context, id string, fn func(*match.Match) error) (*match.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := keyMatch(id)
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var (
			updated *match.Match
			fnErr   error
		)
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if err == redis.Nil {
				fnErr = fmt.Errorf("%w: id %s", errors.ErrNotFound, id)
				return nil
			}
			if err != nil {
				return err
			}
			current, err := decodeMatch(raw)
			if err != nil {
				return err
			}

			next := current.Clone()
			if fnErr = fn(next); fnErr != nil {
				return nil
			}
			next.Version = current.Version + 1
			encoded, err := json.Marshal(next)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, 0)
				if next.Status != current.Status {
					pipe.ZRem(ctx, keyStatus(current.Status), id)
					pipe.ZAdd(ctx, keyStatus(next.Status), redis.Z{Score: statusScore(next), Member: id})
				}
				return nil
			})
			if err == nil {
				updated = next
			}
			return err
		}, key)

		if fnErr != nil {
			return nil, fnErr
		}
		if stdErrors.Is(err, redis.TxFailedErr) {
			s.log.Debugw("match version conflict, retrying", "match_id", id, "attempt", attempt+1)
			continue
		}
		if err != nil {
			s.log.Errorw("failed to update match", "match_id", id, "error", err)
			return nil, storeErr("update", err)
		}
		return updated, nil
	}
	return nil, fmt.Errorf("%w: match %s", errors.ErrConflict, id)
}

func (s *RedisMatchStore) ListByStatus(ctx context.Context, status statuses.MatchStatus, limit int) ([]*match.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.redis.ZRevRange(ctx, keyStatus(status), 0, stop).Result()
	if err != nil {
		return nil, storeErr("list", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyMatch(id)
	}
	raws, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storeErr("mget", err)
	}

	out := make([]*match.Match, 0, len(raws))
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		m, err := decodeMatch([]byte(str))
		if err != nil {
			s.log.Warnw("skipping undecodable match", "error", err)
			continue
		}
		if m.Status == status {
			out = append(out, m)
		}
	}
	return out, nil
}
