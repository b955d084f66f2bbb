package websocket

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
)

// Hub fans accepted transitions out to every socket of the game's session.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "hub"),
		clients: make(map[string]map[*client]struct{}),
	}
}

// Publish sends the game state to all sockets of the session the game belongs to.
func (that *Hub) Publish(game entity.Game) {
	log := that.logger.With("method", "Publish")

	that.mu.RLock()
	targets := make([]*client, 0, len(that.clients[game.ID]))
	for c := range that.clients[game.ID] {
		targets = append(targets, c)
	}
	that.mu.RUnlock()

	for _, c := range targets {
		if err := c.sendState(game); err != nil {
			log.Info("failed to push state", "error", err)
		}
	}
}

// connections returns the number of open sockets of the session.
func (that *Hub) connections(sessionID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients[sessionID])
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	set, ok := that.clients[c.sessionID]
	if !ok {
		set = make(map[*client]struct{})
		that.clients[c.sessionID] = set
	}
	set[c] = struct{}{}
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	set := that.clients[c.sessionID]
	delete(set, c)
	if len(set) == 0 {
		delete(that.clients, c.sessionID)
	}
}
