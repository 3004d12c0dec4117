package realtime

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// PresenceDirectory tracks which users currently hold a live socket and
// delivers payloads to them. Implementations decide whether presence is
// process-local or shared across instances.
type PresenceDirectory interface {
	Register(userID uint, conn *websocket.Conn)
	// Remove drops the user's registration only if conn is still the
	// registered connection. A handler cleaning up after its socket was
	// replaced by a reconnect must not evict the replacement.
	Remove(userID uint, conn *websocket.Conn)
	IsOnline(userID uint) bool
	// Deliver pushes the payload to the user's socket. It reports whether
	// the payload reached a live connection; callers fall back to email
	// when it did not.
	Deliver(userID uint, payload interface{}) bool
}

// Hub is the in-process presence directory. One connection per user; a
// new socket for the same user replaces the old one.
type Hub struct {
	mu    sync.RWMutex
	conns map[uint]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uint]*websocket.Conn)}
}

func (h *Hub) Register(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.conns[userID]; ok && old != conn {
		old.Close()
	}
	h.conns[userID] = conn
	log.Printf("User %d connected, %d online", userID, len(h.conns))
}

func (h *Hub) Remove(userID uint, conn *websocket.Conn) {
	h.remove(userID, conn)
}

// remove reports whether the registration was actually dropped. A nil conn
// removes unconditionally; otherwise only a matching conn is evicted.
func (h *Hub) remove(userID uint, conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	current, ok := h.conns[userID]
	if !ok {
		return false
	}
	if conn != nil && current != conn {
		return false
	}
	current.Close()
	delete(h.conns, userID)
	log.Printf("User %d disconnected, %d online", userID, len(h.conns))
	return true
}

func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}

func (h *Hub) Deliver(userID uint, payload interface{}) bool {
	h.mu.RLock()
	conn, ok := h.conns[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if err := conn.WriteJSON(payload); err != nil {
		log.Printf("Socket write to user %d failed: %v", userID, err)
		h.remove(userID, conn)
		return false
	}
	return true
}

// DeliverRaw writes pre-encoded JSON, used when forwarding payloads that
// arrived over the pub/sub bridge.
func (h *Hub) DeliverRaw(userID uint, data []byte) bool {
	h.mu.RLock()
	conn, ok := h.conns[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("Socket write to user %d failed: %v", userID, err)
		h.remove(userID, conn)
		return false
	}
	return true
}
