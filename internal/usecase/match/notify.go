package match

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"checkers_exe/internal/domain/match"
)

const subscriberBuffer = 8

// Hub fans match updates out to watchers inside this process. Watchers that
// fall behind lose updates rather than block the writer.
type Hub struct {
	log  *zap.SugaredLogger
	mu   sync.Mutex
	subs map[string]map[chan *match.Match]struct{}
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[string]map[chan *match.Match]struct{}),
	}
}

func (h *Hub) Publish(ctx context.Context, m *match.Match) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[m.ID] {
		select {
		case ch <- m.Clone():
		default:
			h.log.Debugw("watcher behind, dropping update", "match_id", m.ID, "version", m.Version)
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, id string) (<-chan *match.Match, func(), error) {
	ch := make(chan *match.Match, subscriberBuffer)

	h.mu.Lock()
	if h.subs[id] == nil {
		h.subs[id] = make(map[chan *match.Match]struct{})
	}
	h.subs[id][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[id], ch)
			if len(h.subs[id]) == 0 {
				delete(h.subs, id)
			}
			close(ch)
			close(done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel, nil
}

// Watchers reports how many subscribers match id has.
func (h *Hub) Watchers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[id])
}
