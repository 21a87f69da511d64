package services

import (
	"sync"

	"github.com/bellapacxx/academy-backend/metrics"
	"github.com/bellapacxx/academy-backend/utils/logger"
)

// LiveHub fans game state out to the spectators of each game.
type LiveHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{} // game id -> clients
}

func NewLiveHub() *LiveHub {
	return &LiveHub{clients: make(map[uint]map[*Client]struct{})}
}

// -------------------- Client management --------------------
func (h *LiveHub) addClient(c *Client) {
	h.mu.Lock()
	room, ok := h.clients[c.gameID]
	if !ok {
		room = make(map[*Client]struct{})
		h.clients[c.gameID] = room
	}
	room[c] = struct{}{}
	total := len(room)
	h.mu.Unlock()

	metrics.LiveClients.Inc()
	logger.Infof("[Live %d] client joined (total=%d)", c.gameID, total)
}

func (h *LiveHub) removeClient(c *Client) {
	h.mu.Lock()
	room, ok := h.clients[c.gameID]
	if ok {
		if _, present := room[c]; present {
			delete(room, c)
			metrics.LiveClients.Dec()
		}
		if len(room) == 0 {
			delete(h.clients, c.gameID)
		}
	}
	h.mu.Unlock()

	c.Close()
}

// ClientCount returns the number of spectators of a game.
func (h *LiveHub) ClientCount(gameID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[gameID])
}

// -------------------- Broadcast --------------------

// Broadcast queues msg for every spectator of the game. Clients whose
// queue is full miss the message.
func (h *LiveHub) Broadcast(gameID uint, msg []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients[gameID]))
	for c := range h.clients[gameID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(msg) {
			logger.Infof("[Live %d] dropping msg to client", gameID)
		}
	}
}
