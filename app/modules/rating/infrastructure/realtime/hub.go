// Package ratingrealtime pushes match status changes to websocket clients.
// Each match has a room; a client joins the room of the match it watches.
package ratingrealtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Message is one status update as sent to clients.
type Message struct {
	Type    string          `json:"type"`
	MatchID uuid.UUID       `json:"match_id"`
	Payload json.RawMessage `json:"payload"`
}

// Hub tracks the clients watching each match.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[uuid.UUID]map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a hub. Upgrades are accepted from allowedOrigins; with none
// configured only same-origin requests are accepted.
func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		rooms:  make(map[uuid.UUID]map[*client]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if len(allowedOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		}
	}
	return h
}

// ServeHTTP upgrades the request and joins the room of the {matchID} route
// parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		http.Error(w, "invalid matchID", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed",
			attr.MatchID(matchID),
			attr.Error(err),
		)
		return
	}

	c := &client{hub: h, conn: conn, room: matchID, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

// Broadcast sends an update to everyone watching matchID and returns the
// number of clients it was queued for. A client whose buffer is full is
// disconnected.
func (h *Hub) Broadcast(matchID uuid.UUID, msgType string, payload json.RawMessage) int {
	b, err := json.Marshal(Message{Type: msgType, MatchID: matchID, Payload: payload})
	if err != nil {
		h.logger.Error("Failed to marshal realtime message", attr.Error(err))
		return 0
	}

	var slow []*client
	sent := 0

	h.mu.RLock()
	for c := range h.rooms[matchID] {
		select {
		case c.send <- b:
			sent++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow websocket client", attr.MatchID(matchID))
		h.unregister(c)
	}
	return sent
}

// RoomSize returns the number of clients watching matchID.
func (h *Hub) RoomSize(matchID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for c := range room {
			close(c.send)
		}
		delete(h.rooms, id)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	room, ok := h.rooms[c.room]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[c.room] = room
	}
	room[c] = struct{}{}
	n := len(room)
	h.mu.Unlock()

	h.logger.Debug("Websocket client joined",
		attr.MatchID(c.room),
		attr.Int("room_size", n),
	)
}

// unregister removes c and closes its send channel. It is safe to call more
// than once.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.room)
	}
}
