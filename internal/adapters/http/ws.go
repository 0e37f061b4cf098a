package httpadapter

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"svw.info/alchemy/internal/domain"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsMessage is a command from the client.
type wsMessage struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// wsEvent is sent to the client: a snapshot, an outcome or an error.
type wsEvent struct {
	Type     string           `json:"type"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	Outcome  *domain.Outcome  `json:"outcome,omitempty"`
	Fit      *domain.Fit      `json:"fit,omitempty"`
	Hint     *domain.Hint     `json:"hint,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// wsConn serializes writes from the reader and the snapshot pump.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) SendJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// handleWS streams snapshots of ?session=<id> and accepts commands on the same
// connection. Decay ticks reach the client through the stream.
func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	snap, err := h.UC.Snapshot(r.Context(), id)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	updates, cancel, err := h.UC.Subscribe(id)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	c := &wsConn{conn: conn}
	h.Logger.Debug("websocket connected", zap.String("session", id))
	defer h.Logger.Debug("websocket disconnected", zap.String("session", id))

	if err := c.SendJSON(wsEvent{Type: "snapshot", Snapshot: &snap}); err != nil {
		return
	}

	ctx, stop := context.WithCancel(r.Context())
	defer stop()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-updates:
				if !ok {
					_ = c.SendJSON(wsEvent{Type: "closed"})
					_ = conn.Close()
					return
				}
				if err := c.SendJSON(wsEvent{Type: "snapshot", Snapshot: &s}); err != nil {
					return
				}
			}
		}
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if ev, ok := h.wsCommand(ctx, id, msg); ok {
			if err := c.SendJSON(ev); err != nil {
				break
			}
		}
	}
	stop()
	wg.Wait()
}

// wsCommand runs one client command. Successful snapshot-changing commands
// answer through the subscription, so only errors, fits, hints and outcomes
// are returned here.
func (h *Handler) wsCommand(ctx context.Context, id string, msg wsMessage) (wsEvent, bool) {
	pos := domain.Pos{Row: msg.Row, Col: msg.Col}
	var err error
	switch msg.Type {
	case "rotate":
		_, err = h.UC.Rotate(ctx, id)
	case "place":
		_, err = h.UC.Place(ctx, id, pos)
	case "catalyst":
		_, err = h.UC.ActivateCatalyst(ctx, id, pos)
	case "fit":
		fit, ferr := h.UC.Fit(ctx, id, pos)
		if ferr == nil {
			return wsEvent{Type: "fit", Fit: &fit}, true
		}
		err = ferr
	case "hint":
		hh, found, herr := h.UC.Hint(ctx, id)
		if herr == nil {
			if !found {
				return wsEvent{Type: "hint", Message: "no placement available"}, true
			}
			return wsEvent{Type: "hint", Hint: &hh}, true
		}
		err = herr
	case "abort":
		out, aerr := h.UC.Abort(ctx, id)
		if out.State.Terminal() {
			return wsEvent{Type: "outcome", Outcome: &out}, true
		}
		err = aerr
	default:
		return wsEvent{Type: "error", Message: "unknown command " + msg.Type}, true
	}
	if err != nil {
		return wsEvent{Type: "error", Message: err.Error()}, true
	}
	if out, done, _ := h.UC.Outcome(ctx, id); done {
		return wsEvent{Type: "outcome", Outcome: &out}, true
	}
	return wsEvent{}, false
}
