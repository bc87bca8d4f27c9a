// Package realtime pushes events to connected members over WebSocket.
//
// Every connection joins the room of the member it authenticated as, so a
// member with several tabs open receives each event on all of them.
package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mmynk/paysplit/internal/metrics"
	"github.com/mmynk/paysplit/internal/middleware"
)

// Event types pushed to clients.
const (
	EventGroupUpdated  = "group:updated"
	EventRefreshGroups = "refresh:groups"
	EventNotification  = "notification"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Event is a single message on the wire.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Publisher delivers events to a member's room.
type Publisher interface {
	Publish(memberID string, event Event)
}

// PublishAll sends event to each of memberIDs through p.
func PublishAll(p Publisher, memberIDs []string, event Event) {
	for _, id := range memberIDs {
		p.Publish(id, event)
	}
}

type client struct {
	memberID string
	conn     *websocket.Conn
	send     chan Event
}

// Hub tracks open connections by member.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub creates a hub accepting upgrades from allowedOrigin ("*" allows any).
func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		rooms: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return allowedOrigin == "*" || r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// Publish queues event for every connection of memberID.
// Slow connections whose buffer is full miss the event.
func (h *Hub) Publish(memberID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[memberID] {
		select {
		case c.send <- event:
		default:
			slog.Warn("Dropping realtime event for slow client",
				"member_id", memberID,
				"type", event.Type,
			)
		}
	}
}


// Connections returns how many connections memberID has open.
func (h *Hub) Connections(memberID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[memberID])
}

// ServeHTTP upgrades the request and joins the caller's room.
// It must run behind middleware.RequireAuthHTTP.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "member_id", id.UserID, "error", err)
		return
	}

	c := &client{memberID: id.UserID, conn: conn, send: make(chan Event, sendBuffer)}
	h.register(c)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	room, ok := h.rooms[c.memberID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[c.memberID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()

	metrics.WebsocketConnections.Inc()
	slog.Debug("Realtime client joined", "member_id", c.memberID)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	room := h.rooms[c.memberID]
	if _, ok := room[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.memberID)
	}
	close(c.send)
	h.mu.Unlock()

	metrics.WebsocketConnections.Dec()
	slog.Debug("Realtime client left", "member_id", c.memberID)
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var clients []*client
	for _, room := range h.rooms {
		for c := range room {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
	}
}
