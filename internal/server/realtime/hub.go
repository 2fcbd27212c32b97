package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Frame is the envelope of every server to client message.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub owns the live websocket connections and their presence registry.
type Hub struct {
	logger     logging.Logger
	registry   *Registry
	upgrader   websocket.Upgrader
	sendBuffer int

	mu     sync.RWMutex
	conns  map[string]*conn
	closed bool
}

// NewHub builds a hub. allowedOrigins limits browser origins that may open a
// socket; requests without an Origin header are always accepted and "*"
// accepts everything.
func NewHub(l logging.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		logger:     l.With("module", "realtime"),
		registry:   NewRegistry(),
		sendBuffer: defaultSendBuffer,
		conns:      make(map[string]*conn),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// Serve upgrades the request and blocks until the connection ends.
// The upgrader has already replied to the client when an error is returned.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := newConn(uuid.NewString(), userID, ws, h.sendBuffer)
	if !h.add(c) {
		_ = ws.Close()
		return nil
	}

	ctx := r.Context()
	h.logger.Info(ctx, "socket connected", "user_id", userID, "conn_id", c.id)
	h.broadcastOnline(ctx)

	go c.writePump()
	c.readPump()

	h.remove(c)
	h.logger.Info(ctx, "socket disconnected", "user_id", userID, "conn_id", c.id)
	h.broadcastOnline(ctx)
	return nil
}

// Dispatch queues event for userID's live connection. It returns false when
// the user is offline or the connection could not take the frame. Nothing is
// kept for later delivery.
func (h *Hub) Dispatch(userID, event string, payload any) bool {
	connID, ok := h.registry.Lookup(userID)
	if !ok {
		return false
	}

	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	frame, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		h.logger.Error(context.Background(), "encode frame", "event", event, "error", err)
		return false
	}
	return c.enqueue(frame)
}

// Close disconnects every connection and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

func (h *Hub) add(c *conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[c.id] = c
	h.registry.Register(c.userID, c.id)
	return true
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	delete(h.conns, c.id)
	h.mu.Unlock()
	h.registry.Unregister(c.userID, c.id)
}

func (h *Hub) broadcastOnline(ctx context.Context) {
	frame, err := json.Marshal(Frame{Event: common.EventGetOnlineUsers, Data: h.registry.Online()})
	if err != nil {
		h.logger.Error(ctx, "encode online users", "error", err)
		return
	}

	h.mu.RLock()
	conns := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.enqueue(frame)
	}
}
