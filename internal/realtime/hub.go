package realtime

import (
	"encoding/json"
	"sync"
)

// Event is the payload pushed to websocket clients after a mutation.
type Event struct {
	Type       string `json:"type"`
	Resource   string `json:"resource"`
	ResourceID uint   `json:"resourceId"`
	ActorID    uint   `json:"actorId"`
}

// Client represents a single websocket client connection.
// The actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[Client]struct{}
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uint]map[Client]struct{}),
	}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

// Unregister removes a client; if the user has no more clients, cleans up the map.
func (h *Hub) Unregister(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, userID)
		}
	}
}

// Broadcast sends a raw message to all clients of a user.
func (h *Hub) Broadcast(userID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		if ok := c.Send(message); !ok {
			// client write failed; the handler cleans it up on its side
		}
	}
}

// Publish marshals an event and broadcasts it to every listed user.
func (h *Hub) Publish(evt Event, userIDs ...uint) {
	message, err := json.Marshal(evt)
	if err != nil {
		return
	}
	for _, id := range userIDs {
		h.Broadcast(id, message)
	}
}
