package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/errors"
)

// watcher channel capacity; slow watchers miss updates and re-poll
const subscriberBuffer = 8

// RedisNotifier fans match updates out across server instances over Redis
// pub/sub.
type RedisNotifier struct {
	log   *zap.SugaredLogger
	redis *redis.Client
}

func NewRedisNotifier(log *zap.SugaredLogger, redis *redis.Client) *RedisNotifier {
	return &RedisNotifier{
		log:   log,
		redis: redis,
	}
}

func keyUpdates(id string) string {
	return "checkers:updates:" + id
}

func (n *RedisNotifier) Publish(ctx context.Context, m *match.Match) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := n.redis.Publish(ctx, keyUpdates(m.ID), raw).Err(); err != nil {
		return fmt.Errorf("%w: publish: %v", errors.ErrStoreFailure, err)
	}
	return nil
}

// Subscribe returns a channel of updates for match id. The channel is closed
// after the returned cancel func is called or ctx is done.
func (n *RedisNotifier) Subscribe(ctx context.Context, id string) (<-chan *match.Match, func(), error) {
	ps := n.redis.Subscribe(ctx, keyUpdates(id))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("%w: subscribe: %v", errors.ErrStoreFailure, err)
	}

	out := make(chan *match.Match, subscriberBuffer)
	var once sync.Once
	stop := func() { once.Do(func() { _ = ps.Close() }) }

	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var m match.Match
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					n.log.Warnw("dropping undecodable match update", "match_id", id, "error", err)
					continue
				}
				select {
				case out <- &m:
				default:
					n.log.Debugw("watcher behind, dropping update", "match_id", id, "version", m.Version)
				}
			}
		}
	}()

	return out, stop, nil
}
