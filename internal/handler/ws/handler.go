package ws

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/bubble/backend/internal/model/user"
	"github.com/zhouzirui/bubble/backend/internal/service/realtime"
)

// Handler upgrades presence connections and binds them to the hub.
type Handler struct {
	hub      *realtime.Hub
	users    user.Store
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(hub *realtime.Hub, users user.Store) *Handler {
	return &Handler{
		hub:   hub,
		users: users,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleConnect)
}

// handleConnect authenticates via the token query parameter (browsers cannot
// set headers on websocket dials), registers the connection for presence, and
// keeps reading until the peer goes away.
func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token is required", http.StatusUnauthorized)
		return
	}

	u, err := h.users.FindByToken(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for %s: %v", u.ID, err)
		return
	}

	log.Printf("[ws] user connected: %s", u.ID)
	h.hub.Register(u.ID, conn)
	defer func() {
		h.hub.Unregister(u.ID, conn)
		conn.Close()
		log.Printf("[ws] user disconnected: %s", u.ID)
	}()

	// Presence connections are emit-only; drain inbound frames until close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] connection closed unexpectedly for %s: %v", u.ID, err)
			}
			return
		}
	}
}
