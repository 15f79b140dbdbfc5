package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/statuses"
)

const DefaultPollInterval = 2 * time.Second

// Poller follows a match by polling GET /matches/{id}.
type Poller struct {
	client   *Client
	interval time.Duration
	log      *zap.SugaredLogger
}

func NewPoller(client *Client, interval time.Duration, log *zap.SugaredLogger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{client: client, interval: interval, log: log}
}

// Poll emits the match every time its version changes. Failed polls are
// logged and retried on the next tick. The channel is closed after a
// finished match has been emitted or when ctx ends.
func (p *Poller) Poll(ctx context.Context, id string) <-chan *match.Match {
	out := make(chan *match.Match, 1)
	go func() {
		defer close(out)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		var last *match.Match
		for {
			m, err := p.client.Get(ctx, id)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return
				}
				p.log.Warnw("poll failed", "match_id", id, "error", err)
			case last == nil || m.Version != last.Version:
				last = m
				select {
				case out <- m:
				case <-ctx.Done():
					return
				}
				if m.Status == statuses.Finished {
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}
