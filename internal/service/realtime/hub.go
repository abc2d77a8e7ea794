package realtime

import (
	"log"
	"sort"
	"sync"
)

// Event names understood by connected clients.
const (
	EventNewMessage  = "newMessage"
	EventMoodUpdate  = "moodUpdate"
	EventOnlineUsers = "getOnlineUsers"
)

// Envelope is the wire shape of every outgoing websocket event.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Conn is the connection surface the hub needs; *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Hub keeps the in-memory user id -> connection registry and fans events out
// to connected clients. One live connection per user; registering a new one
// replaces (and closes) a stale predecessor.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

type client struct {
	conn Conn
	// Serializes writes; gorilla connections allow one concurrent writer.
	mu sync.Mutex
}

func (c *client) send(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(env)
}

// NewHub creates an empty connection registry.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// Register binds a connection to a user id and broadcasts the updated online
// set to every connection.
func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	if old, ok := h.clients[userID]; ok {
		_ = old.conn.Close()
	}
	h.clients[userID] = &client{conn: conn}
	h.mu.Unlock()

	h.broadcastOnline()
}

// Unregister removes the binding if conn is still the user's live connection,
// then broadcasts the updated online set.
func (h *Hub) Unregister(userID string, conn Conn) {
	h.mu.Lock()
	current, ok := h.clients[userID]
	if ok && current.conn == conn {
		delete(h.clients, userID)
	} else {
		ok = false
	}
	h.mu.Unlock()

	if ok {
		h.broadcastOnline()
	}
}

// EmitToUser sends a targeted event; a no-op when the user is offline.
func (h *Hub) EmitToUser(userID, event string, data any) {
	h.mu.RLock()
	target, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := target.send(Envelope{Event: event, Data: data}); err != nil {
		log.Printf("[realtime] emit %s to %s failed: %v", event, userID, err)
	}
}

// Online returns the sorted ids of currently connected users.
func (h *Hub) Online() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) broadcastOnline() {
	ids := h.Online()
	env := Envelope{Event: EventOnlineUsers, Data: ids}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(env); err != nil {
			log.Printf("[realtime] online broadcast failed: %v", err)
		}
	}
}
