package view

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/kds-visual/internal/render"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	// loadTimeout bounds the tree fetch of a websocket session.
	loadTimeout = 30 * time.Second
	writeWait   = 10 * time.Second
)

// clientMessage is the incoming WebSocket message format.
type clientMessage struct {
	Type   string  `json:"type"` // resize, resize_now, select, zoom_in, zoom_out, zoom_by, pan, reset, retry
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Target string  `json:"target,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
}

// serverMessage is the outgoing WebSocket message format.
type serverMessage struct {
	Type     string    `json:"type"` // "snapshot" or "error"
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// wsConn serializes writes and drops snapshots older than the last one sent.
type wsConn struct {
	conn *websocket.Conn

	mu      sync.Mutex
	lastGen uint64
	sent    bool
}

func (c *wsConn) sendSnapshot(s Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent && s.Generation < c.lastGen {
		return nil
	}
	c.sent = true
	c.lastGen = s.Generation
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(serverMessage{Type: "snapshot", Snapshot: &s})
}

func (c *wsConn) sendError(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(serverMessage{Type: "error", Error: msg})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.opts.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	opts := h.opts
	opts.Document = r.URL.Query().Get("doc")
	sess := NewSession(h.cache, opts)
	defer sess.Close()

	out := &wsConn{conn: conn}
	unsubscribe := sess.Subscribe(func(s Snapshot) {
		if err := out.sendSnapshot(s); err != nil {
			h.opts.Logger.Debug("websocket write failed", "session", sess.ID, "error", err)
		}
	})
	defer unsubscribe()

	if t := r.URL.Query().Get("target"); t != "" {
		sess.SetTarget(t)
	}
	// The request context ends with the handler's timeout, not the
	// connection, so loads get their own deadline.
	load := func(retry bool) {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if retry {
			sess.Retry(ctx)
		} else {
			sess.Load(ctx)
		}
	}
	load(false)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.opts.Logger.Warn("websocket read failed", "session", sess.ID, "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			out.sendError("invalid message format")
			continue
		}

		switch msg.Type {
		case "resize":
			sess.Resize(msg.Width, msg.Height)
		case "resize_now":
			sess.ResizeNow(msg.Width, msg.Height)
		case "select":
			sess.SetTarget(msg.Target)
		case "retry":
			load(true)
		case "zoom_in", "zoom_out", "zoom_by", "pan", "reset":
			action := render.Action{Kind: render.ActionKind(msg.Type), Factor: msg.Factor, DX: msg.DX, DY: msg.DY}
			if _, err := sess.Apply(action); err != nil {
				out.sendError(err.Error())
			}
		default:
			out.sendError("unknown message type: " + msg.Type)
		}
	}
}
