package handlers

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/arnold/blueprint-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Event types sent over WebSocket
const (
	EventSaving     = "saving"
	EventSaved      = "saved"
	EventSaveFailed = "save_failed"
	EventNotice     = "notice"
)

// WSEvent is the JSON message sent to connected clients
type WSEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	SavedAt   int64  `json:"savedAt,omitempty"`
	Level     string `json:"level,omitempty"`
	Message   string `json:"message,omitempty"`
}

// messageWriter is the part of a websocket connection the hub writes to.
type messageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// connection serializes writes to one websocket
type connection struct {
	mu   sync.Mutex
	conn messageWriter
}

func (c *connection) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub manages WebSocket connections per wizard session
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*connection]bool // sessionID -> set of connections
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*connection]bool)}
}

// Global hub instance
var WS = NewHub()

func (h *Hub) register(sessionID string, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[*connection]bool)
	}
	h.rooms[sessionID][conn] = true
	log.Printf("WS register: session %s (total: %d)", sessionID, len(h.rooms[sessionID]))
}

func (h *Hub) unregister(sessionID string, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[sessionID]; ok {
		delete(conns, conn)
		log.Printf("WS unregister: session %s (remaining: %d)", sessionID, len(conns))
		if len(conns) == 0 {
			delete(h.rooms, sessionID)
		}
	}
}

// Broadcast sends an event to every connection watching a session
func (h *Hub) Broadcast(sessionID string, event WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.rooms[sessionID]
	if !ok {
		return
	}

	event.SessionID = sessionID
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("WS broadcast marshal error: %v", err)
		return
	}

	for c := range conns {
		if err := c.write(msg); err != nil {
			log.Printf("WS write error: %v", err)
		}
	}
}

// WebSocketUpgrade rejects plain HTTP requests on the websocket routes. It
// runs after middleware.Session.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if middleware.GetSessionID(c) == "" {
			return fiber.ErrBadRequest
		}
		return c.Next()
	}
}

// HandleWebSocket streams autosave status for one session
func HandleWebSocket(c *websocket.Conn) {
	sessionID, ok := c.Locals("sessionId").(string)
	if !ok || sessionID == "" {
		c.Close()
		return
	}

	conn := &connection{conn: c}
	WS.register(sessionID, conn)
	defer WS.unregister(sessionID, conn)

	// Keep connection alive; clients only send pings
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
