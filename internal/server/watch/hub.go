// Package watch streams live session updates to recruiter dashboards over
// WebSocket. One room per session; every state change the handlers make is
// broadcast to the room's watchers as a typed event.
package watch

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one update pushed to dashboard watchers.
type Event struct {
	Type      string `json:"type"` // "transcript" | "code" | "warning" | "phase" | "ended"
	SessionID string `json:"session_id"`
	Payload   any    `json:"payload,omitempty"`
}

type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
	hook func(Event)
}

func NewClient(conn *websocket.Conn) *Client { return &Client{conn: conn} }

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(Event)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(event)
		return
	}
	if c.conn == nil {
		return
	}
	_ = c.conn.WriteJSON(event)
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Hub manages the watcher rooms for all live sessions.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(sessionID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[sessionID] = room
	}
	room[client] = struct{}{}
}

func (h *Hub) Unregister(sessionID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[sessionID]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, sessionID)
	}
}

// Broadcast fans an event out to every watcher of the session.
func (h *Hub) Broadcast(sessionID string, event Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[sessionID]))
	for c := range h.rooms[sessionID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(event)
	}
}

// CloseSession disconnects every watcher of a session, used when the
// session ends or is swept.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	room := h.rooms[sessionID]
	delete(h.rooms, sessionID)
	h.mu.Unlock()

	for c := range room {
		c.Close()
	}
}

// WatcherCount reports how many dashboards are attached to a session.
func (h *Hub) WatcherCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}
