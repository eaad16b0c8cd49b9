package ws

import (
	"encoding/json"
	"sync"

	"github.com/playmatatu/duel/internal/game"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Hub maintains the set of connected clients and delivers game events to
// them. Sends never block: a client whose buffer is full misses the event.
type Hub struct {
	clients map[game.ConnID]*Client
	mu      sync.RWMutex
	log     zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[game.ConnID]*Client),
		log:     log.With().Str("component", "ws").Logger(),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

// unregister removes c and closes its send channel, which stops its write
// pump. It is safe to call more than once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ToMatch sends ev to every member of a match that is still connected.
func (h *Hub) ToMatch(matchID game.MatchID, members []game.ConnID, ev game.Event) {
	data, ok := h.encode(ev)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range members {
		if c, exists := h.clients[id]; exists {
			h.deliver(c, data, ev.Type)
		}
	}
}

// ToConn sends ev to a single client.
func (h *Hub) ToConn(id game.ConnID, ev game.Event) {
	data, ok := h.encode(ev)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, exists := h.clients[id]; exists {
		h.deliver(c, data, ev.Type)
	} else {
		h.log.Debug().Str("conn_id", string(id)).Str("type", string(ev.Type)).Msg("no client for event")
	}
}

// Broadcast sends ev to every connected client.
func (h *Hub) Broadcast(ev game.Event) {
	data, ok := h.encode(ev)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		h.deliver(c, data, ev.Type)
	}
}

func (h *Hub) encode(ev game.Event) ([]byte, bool) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(ev.Type)).Msg("marshal event")
		return nil, false
	}
	return data, true
}

// deliver must be called with mu held.
func (h *Hub) deliver(c *Client, data []byte, t game.EventType) {
	select {
	case c.send <- data:
	default:
		h.log.Warn().Str("conn_id", string(c.id)).Str("type", string(t)).Msg("send buffer full, dropping event")
	}
}
