package websocket

import (
	"encoding/json"
	"sync"

	"github.com/beratoz/vampireville/internal/logger"
	"github.com/beratoz/vampireville/internal/monitor"
)

// Hub fans state changes out to the observers of each session.
type Hub struct {
	// Connected clients grouped by session code.
	sessions map[string]map[*Client]bool

	broadcast  chan *broadcastMessage
	register   chan *Client
	unregister chan *Client

	metrics *monitor.Metrics

	mu sync.RWMutex
}

type broadcastMessage struct {
	sessionCode string
	envelope    *Envelope
}

// NewHub creates a hub. Pass monitor.Nop() when metrics are disabled.
func NewHub(metrics *monitor.Metrics) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *broadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		metrics:    metrics,
	}
}

// Run processes register, unregister and broadcast requests. Call it
// once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.sessions[client.SessionCode] == nil {
				h.sessions[client.SessionCode] = make(map[*Client]bool)
			}
			h.sessions[client.SessionCode][client] = true
			total := len(h.sessions[client.SessionCode])
			h.mu.Unlock()
			h.metrics.ConnectedClients.Inc()
			logger.Log.Infow("observer connected", "session", client.SessionCode, "role", client.Role, "observers", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.sessions[client.SessionCode]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					client.closeSend()
					h.metrics.ConnectedClients.Dec()
					if len(clients) == 0 {
						delete(h.sessions, client.SessionCode)
					}
				}
			}
			h.mu.Unlock()
			logger.Log.Infow("observer disconnected", "session", client.SessionCode)

		case msg := <-h.broadcast:
			h.mu.Lock()
			clients := h.sessions[msg.sessionCode]
			for client := range clients {
				select {
				case client.send <- msg.envelope:
				default:
					// Slow consumer; drop it rather than block the hub.
					client.closeSend()
					delete(clients, client)
					h.metrics.ConnectedClients.Dec()
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastChange pushes a single key update to every observer of the
// session. Safe to call from any goroutine.
func (h *Hub) BroadcastChange(sessionCode, key string, value json.RawMessage) {
	h.broadcast <- &broadcastMessage{
		sessionCode: sessionCode,
		envelope:    changeEnvelope(key, value),
	}
}

// BroadcastState pushes a full snapshot to every observer of the session.
func (h *Hub) BroadcastState(sessionCode string, state map[string]json.RawMessage) {
	h.broadcast <- &broadcastMessage{
		sessionCode: sessionCode,
		envelope:    stateEnvelope(state),
	}
}

// ClientCount returns the number of observers attached to a session.
func (h *Hub) ClientCount(sessionCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionCode])
}
