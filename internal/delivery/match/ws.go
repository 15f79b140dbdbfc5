package match

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/statuses"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWatch upgrades to a websocket and pushes the match after every
// accepted change, starting with the current state. The socket is closed
// once a finished match has been sent. The subscription lives on the
// request context, so a client gone before the upgrade ends it too.
func (h *MatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe, err := h.matchUC.Subscribe(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer unsubscribe()

	current, err := h.matchUC.GetMatch(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade failed", "match_id", id, "error", err)
		return
	}
	defer conn.Close()

	go h.readPump(conn, cancel)

	if done := h.push(conn, current); done {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	version := current.Version
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-updates:
			if !ok {
				return
			}
			if m.Version <= version {
				continue
			}
			version = m.Version
			if done := h.push(conn, m); done {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Debugw("websocket ping failed", "match_id", id, "error", err)
				return
			}
		}
	}
}

// push writes m and reports whether the stream should end.
func (h *MatchHandler) push(conn *websocket.Conn, m *match.Match) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(m); err != nil {
		h.log.Debugw("websocket write failed", "match_id", m.ID, "error", err)
		return true
	}
	if m.Status != statuses.Finished {
		return false
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match finished"),
		time.Now().Add(writeWait))
	return true
}

// readPump discards client frames and cancels the stream on disconnect.
func (h *MatchHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
