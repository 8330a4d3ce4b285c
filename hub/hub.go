// Package hub fans events out to the connections subscribed to a room, or to
// every attached connection.
package hub

import (
	"log/slog"
	"sync"

	"github.com/maxswackygames-dev/nexus-chat/domain"
)

type room struct {
	clients map[string]domain.Connection
}

type client struct {
	conn  domain.Connection
	rooms map[domain.RoomKey]struct{}
}

// Hub is an in-process domain.Router. Delivery is best effort: a failed send
// drops the event for that connection only.
type Hub struct {
	rooms   map[domain.RoomKey]*room
	clients map[string]*client
	mu      sync.RWMutex
}

var _ domain.Router = (*Hub)(nil)

func New() *Hub {
	return &Hub{
		rooms:   make(map[domain.RoomKey]*room),
		clients: make(map[string]*client),
	}
}

func (h *Hub) Attach(conn domain.Connection) {
	h.mu.Lock()
	if _, exists := h.clients[conn.ID()]; !exists {
		h.clients[conn.ID()] = &client{conn: conn, rooms: make(map[domain.RoomKey]struct{})}
	}
	count := len(h.clients)
	h.mu.Unlock()

	slog.Info("client attached", "clientId", conn.ID(), "clients", count)
}

// Detach removes conn from the hub and from every room it joined.
func (h *Hub) Detach(conn domain.Connection) {
	h.mu.Lock()
	c, exists := h.clients[conn.ID()]
	if !exists {
		h.mu.Unlock()
		return
	}
	for key := range c.rooms {
		h.removeFromRoom(key, conn.ID())
	}
	delete(h.clients, conn.ID())
	count := len(h.clients)
	h.mu.Unlock()

	slog.Info("client detached", "clientId", conn.ID(), "clients", count)
}

// Join subscribes conn to key. A connection that was never attached is
// attached on the fly.
func (h *Hub) Join(conn domain.Connection, key domain.RoomKey) {
	h.mu.Lock()
	c, exists := h.clients[conn.ID()]
	if !exists {
		c = &client{conn: conn, rooms: make(map[domain.RoomKey]struct{})}
		h.clients[conn.ID()] = c
	}
	r, exists := h.rooms[key]
	if !exists {
		r = &room{clients: make(map[string]domain.Connection)}
		h.rooms[key] = r
	}
	r.clients[conn.ID()] = conn
	c.rooms[key] = struct{}{}
	count := len(r.clients)
	h.mu.Unlock()

	slog.Debug("client joined room", "room", key, "clientId", conn.ID(), "members", count)
}

func (h *Hub) Leave(conn domain.Connection, key domain.RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, exists := h.clients[conn.ID()]
	if !exists {
		return
	}
	if _, member := c.rooms[key]; !member {
		return
	}
	delete(c.rooms, key)
	h.removeFromRoom(key, conn.ID())

	slog.Debug("client left room", "room", key, "clientId", conn.ID())
}

// removeFromRoom must be called with h.mu held.
func (h *Hub) removeFromRoom(key domain.RoomKey, id string) {
	r, exists := h.rooms[key]
	if !exists {
		return
	}
	delete(r.clients, id)
	if len(r.clients) == 0 {
		delete(h.rooms, key)
		slog.Debug("room removed", "room", key)
	}
}

// Broadcast delivers event to every member of key. An empty or unknown room
// is not an error.
func (h *Hub) Broadcast(key domain.RoomKey, event string, payload any) error {
	data, err := domain.Encode(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	r, exists := h.rooms[key]
	if !exists {
		return nil
	}
	for _, conn := range r.clients {
		send(conn, event, data)
	}
	return nil
}

// BroadcastGlobal delivers event to every attached connection.
func (h *Hub) BroadcastGlobal(event string, payload any) error {
	data, err := domain.Encode(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		send(c.conn, event, data)
	}
	return nil
}

func send(conn domain.Connection, event string, data []byte) {
	if err := conn.Send(data); err != nil {
		slog.Debug("event dropped", "clientId", conn.ID(), "event", event, "error", err)
	}
}

func (h *Hub) Members(key domain.RoomKey) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, exists := h.rooms[key]; exists {
		return len(r.clients)
	}
	return 0
}

func (h *Hub) Stats() (rooms, clients int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms), len(h.clients)
}
