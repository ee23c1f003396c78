package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second
	// sendBuffer is how many frames may queue for one connection before
	// it is dropped as too slow.
	sendBuffer = 64
)

// client is one websocket connection. Only its writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks the open websocket connections of each user. A user may have
// several tabs open; every one of them receives each frame.
type Hub struct {
	mutex       sync.RWMutex
	connections map[string]map[*client]struct{}
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		connections: make(map[string]map[*client]struct{}),
		log:         log.Named("hub"),
	}
}

func (h *Hub) register(userID string, conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.connections[userID] == nil {
		h.connections[userID] = make(map[*client]struct{})
	}
	h.connections[userID][c] = struct{}{}
	return c
}

// unregister removes c and closes its queue, which stops its writePump.
func (h *Hub) unregister(userID string, c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	conns, ok := h.connections[userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; ok {
		close(c.send)
		delete(conns, c)
	}
	if len(conns) == 0 {
		delete(h.connections, userID)
	}
}

// Send queues f for every connection of userID and returns how many
// accepted it. It never waits on the network: a connection whose queue is
// full is dropped.
func (h *Hub) Send(userID string, f Frame) int {
	msg, err := json.Marshal(f)
	if err != nil {
		h.log.Error("encode frame", zap.Error(err))
		return 0
	}

	var slow []*client
	sent := 0
	h.mutex.RLock()
	for c := range h.connections[userID] {
		select {
		case c.send <- msg:
			sent++
		default:
			slow = append(slow, c)
		}
	}
	h.mutex.RUnlock()

	for _, c := range slow {
		h.log.Debug("dropping slow connection", zap.String("user_id", userID))
		h.unregister(userID, c)
	}
	return sent
}

// writePump owns all writes to c.conn: queued frames and keepalive pings.
// It closes the connection when the queue is closed or a write fails.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) Toast(_ context.Context, userID string, level Level, message string) {
	h.Send(userID, ToastFrame(level, message))
}

func (h *Hub) Invalidate(_ context.Context, userID string, keys ...string) {
	h.Send(userID, InvalidateFrame(keys...))
}

func (h *Hub) IsOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.connections[userID]) > 0
}

// Connections returns the number of open connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.connections[userID])
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.connections)
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for userID, conns := range h.connections {
		for c := range conns {
			close(c.send)
		}
		delete(h.connections, userID)
	}
}
