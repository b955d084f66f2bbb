package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-local/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
)

type memoryEntry struct {
	game      entity.Game
	expiresAt time.Time
}

type memoryGame struct {
	mu        sync.RWMutex
	games     map[string]memoryEntry
	ttl       time.Duration
	nowFunc   func() time.Time
	nextSweep time.Time
}

// NewMemoryGameRepository keeps games in process memory with the same ttl semantics
// as the redis repository. Expired games are dropped on access, and writes sweep the
// whole map at most once per ttl.
func NewMemoryGameRepository(ttl time.Duration) GameRepository {
	return &memoryGame{
		games:   make(map[string]memoryEntry),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.nowFunc()
	that.sweep(now)

	entry := memoryEntry{game: *game}
	if that.ttl > 0 {
		entry.expiresAt = now.Add(that.ttl)
	}

	that.games[game.ID] = entry

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.lookup(id)
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	game := entry.game

	return &game, nil
}

func (that *memoryGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.lookup(id); !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.games, id)

	return nil
}

// sweep drops every expired game. It must be called with mu held.
func (that *memoryGame) sweep(now time.Time) {
	if that.ttl <= 0 || now.Before(that.nextSweep) {
		return
	}

	for id, entry := range that.games {
		if !now.Before(entry.expiresAt) {
			delete(that.games, id)
		}
	}

	that.nextSweep = now.Add(that.ttl)
}

// size returns the number of games held, expired ones included until the next sweep.
func (that *memoryGame) size() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.games)
}

// lookup must be called with mu held.
func (that *memoryGame) lookup(id string) (memoryEntry, bool) {
	entry, ok := that.games[id]
	if !ok {
		return memoryEntry{}, false
	}

	if !entry.expiresAt.IsZero() && !that.nowFunc().Before(entry.expiresAt) {
		delete(that.games, id)
		return memoryEntry{}, false
	}

	return entry, true
}
