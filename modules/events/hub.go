package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub - per-user WebSocket fan-out. Connections are keyed by the verified
// identity's subject, so an event published for one user can never reach
// another user's sockets. Delivery is best-effort: slow or dead connections
// are dropped, never waited on.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[string]*connection
}

type connection struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		users: make(map[string]map[string]*connection),
	}
}

// Register - attach a connection for a user and start its pumps
func (h *Hub) Register(userID string, ws *websocket.Conn) {
	c := &connection{
		id:   uuid.NewString(),
		conn: ws,
		send: make(chan []byte, 16),
	}

	h.mu.Lock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]*connection)
	}
	h.users[userID][c.id] = c
	count := len(h.users[userID])
	h.mu.Unlock()

	log.Printf("👤 [Events] User %s connected (connections: %d)", userID, count)

	go c.writePump()
	go c.readPump(h, userID)
}

func (h *Hub) unregister(userID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, exists := h.users[userID]
	if !exists {
		return
	}
	if c, ok := conns[connID]; ok {
		close(c.send)
		delete(conns, connID)
	}
	if len(conns) == 0 {
		delete(h.users, userID)
	}
	log.Printf("👋 [Events] User %s connection closed (remaining: %d)", userID, len(conns))
}

// Publish - deliver an event to every live connection of one user.
// Safe on a nil hub so callers can treat push as strictly optional.
func (h *Hub) Publish(userID string, event interface{}) {
	if h == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ [Events] Failed to marshal event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.users[userID]
	for id, c := range conns {
		select {
		case c.send <- payload:
		default:
			// Back-pressured connection: drop it rather than block the publisher
			close(c.send)
			delete(conns, id)
		}
	}
}

// ConnectionCount - live connections for one user
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func (c *connection) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("⚠️ [Events] WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump - inbound messages are discarded; reading only detects closure
func (c *connection) readPump(h *Hub, userID string) {
	defer func() {
		h.unregister(userID, c.id)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ [Events] WebSocket error: %v", err)
			}
			return
		}
	}
}
